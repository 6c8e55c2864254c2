package validation

import (
	"errors"
	"net/http"
)

// Domain errors for validation operations.
var (
	ErrNotFound     = errors.New("validation outcome not found")
	ErrDuplicate    = errors.New("validation outcome already exists")
	ErrEmptyBatch   = errors.New("batch contains no records")
	ErrInvalidBatch = errors.New("invalid validation batch")
)

// MapHTTPStatus maps validation domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrInvalidBatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
