package ingestion

import (
	"errors"
	"net/http"
)

// Domain errors for ingestion operations.
var (
	ErrNotFound     = errors.New("raw record not found")
	ErrDuplicate    = errors.New("raw record already exists")
	ErrEmptyBatch   = errors.New("batch contains no records")
	ErrInvalidBatch = errors.New("invalid ingestion batch")
	ErrInvalidID    = errors.New("invalid record id")
)

// MapHTTPStatus maps ingestion domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrInvalidBatch), errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
