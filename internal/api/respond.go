package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/dto"
	"shareit/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, dto.ErrorResponse{Error: message})
}

// writeServiceError maps a domain error kind to its status code. Unknown errors are logged and hidden.
func writeServiceError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrUnsupportedState):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.InvalidRequestf("request body is required")
		}
		return domain.InvalidRequestf("invalid JSON body: %v", err)
	}
	return nil
}

// callerID reads the trusted identity header.
func callerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(dto.UserIDHeader))
	if raw == "" {
		return 0, domain.InvalidRequestf("%s header is required", dto.UserIDHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.InvalidRequestf("invalid %s header: %s", dto.UserIDHeader, raw)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.InvalidRequestf("invalid id: %s", raw)
	}
	return id, nil
}

// pageParams reads from/size. from is an offset, not a page number.
func pageParams(r *http.Request, defaultSize int) (models.Page, error) {
	q := r.URL.Query()
	from, err := intParam(q.Get("from"), 0)
	if err != nil || from < 0 {
		return models.Page{}, domain.InvalidRequestf("from must be a non-negative integer")
	}
	size, err := intParam(q.Get("size"), defaultSize)
	if err != nil || size <= 0 {
		return models.Page{}, domain.InvalidRequestf("size must be a positive integer")
	}
	return models.Page{Offset: from, Limit: size}, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	return v, nil
}

func stateParam(r *http.Request) string {
	if state := r.URL.Query().Get("state"); state != "" {
		return state
	}
	return "ALL"
}
