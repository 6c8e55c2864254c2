package errormgr

import (
	"errors"
	"net/http"
)

// Domain errors for error manager operations.
var (
	ErrNotFound         = errors.New("error entry not found")
	ErrDuplicate        = errors.New("error entry already exists")
	ErrEmptyReport      = errors.New("report contains no entries")
	ErrInvalidReport    = errors.New("invalid error report")
	ErrInvalidID        = errors.New("invalid entry id")
	ErrInvalidStatus    = errors.New("invalid entry status")
	ErrNoReplayPayload  = errors.New("entry has no payload to replay")
	ErrRetryUnsupported = errors.New("retry is not supported for this stage")
)

// MapHTTPStatus maps error manager domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyReport),
		errors.Is(err, ErrInvalidReport),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoReplayPayload), errors.Is(err, ErrRetryUnsupported):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
