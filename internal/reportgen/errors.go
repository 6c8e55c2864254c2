package reportgen

import (
	"errors"
	"net/http"
)

// Domain errors for report generation operations.
var (
	ErrNotFound     = errors.New("report artifact not found")
	ErrDuplicate    = errors.New("report artifact already exists")
	ErrInvalidBatch = errors.New("invalid report generation batch")
)

// MapHTTPStatus maps report generation domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidBatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
