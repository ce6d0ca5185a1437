package gateway

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var timeType = reflect.TypeOf(time.Time{})

// Validator checks request DTOs against their validate tags. It implements echo.Validator.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func NewValidator() *Validator {
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: time.Now}

	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.v.RegisterValidation("notblank", validators.NotBlank)
	_ = val.v.RegisterValidation("notpast", val.notPast)
	_ = val.v.RegisterValidation("future", val.future)
	return val
}

func (v *Validator) Validate(i interface{}) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s must not be blank", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "notpast":
		return fmt.Sprintf("%s must not be in the past", fe.Field())
	case "future":
		return fmt.Sprintf("%s must be in the future", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// notPast accepts the current second, since wire timestamps carry no fraction.
func (v *Validator) notPast(fl validator.FieldLevel) bool {
	t, ok := fieldTime(fl)
	return ok && !t.Before(v.now().Truncate(time.Second))
}

func (v *Validator) future(fl validator.FieldLevel) bool {
	t, ok := fieldTime(fl)
	return ok && t.After(v.now())
}

func fieldTime(fl validator.FieldLevel) (time.Time, bool) {
	f := fl.Field()
	if !f.IsValid() || !f.Type().ConvertibleTo(timeType) {
		return time.Time{}, false
	}
	return f.Convert(timeType).Interface().(time.Time), true
}
