package dto

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"shareit/internal/models"
)

// TimestampLayout is the wire format of all timestamps. Values carry no zone and are
// read and written in the server's local zone.
const TimestampLayout = models.WireTimeLayout

// Timestamp is a time.Time with the ShareIt wire encoding. RFC 3339 is accepted on input.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

func (ts Timestamp) Time() time.Time {
	return time.Time(ts)
}

func (ts Timestamp) IsZero() bool {
	return time.Time(ts).IsZero()
}

func (ts Timestamp) String() string {
	return time.Time(ts).In(time.Local).Format(TimestampLayout)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(ts.String())), nil
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp must be a string: %s", data)
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*ts = Timestamp(t)
	return nil
}

// ParseTimestamp reads a wire timestamp or an RFC 3339 value.
func ParseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(TimestampLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q, expected %s", raw, TimestampLayout)
	}
	return t, nil
}
