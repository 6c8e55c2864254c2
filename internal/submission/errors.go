package submission

import (
	"errors"
	"net/http"
)

// Domain errors for submission operations.
var (
	ErrNotFound             = errors.New("submission attempt not found")
	ErrReportNotFound       = errors.New("report artifact not found")
	ErrDuplicate            = errors.New("submission attempt already exists")
	ErrSubmissionInProgress = errors.New("submission already in progress for report")
	ErrInvalidRequest       = errors.New("invalid submission request")
)

// MapHTTPStatus maps submission domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
