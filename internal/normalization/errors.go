package normalization

import (
	"errors"
	"net/http"
)

// Domain errors for normalization operations.
var (
	ErrNotFound     = errors.New("canonical record not found")
	ErrDuplicateUTI = errors.New("transaction identifier already exists")
	ErrEmptyBatch   = errors.New("batch contains no records")
	ErrInvalidBatch = errors.New("invalid processing batch")
)

// MapHTTPStatus maps normalization domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateUTI):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrInvalidBatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
