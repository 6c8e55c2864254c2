// Package submission transmits generated report artifacts to the swap data
// repository. Each transmission is recorded as an attempt row, and the
// artifact walks a small status machine:
//
//	Generated -> SubmissionInProgress -> Submitted | SubmissionFailed
//
// A failed artifact may be resubmitted; a submitted one is terminal and
// resubmitting it is an idempotent no-op that returns the latest attempt.
package submission

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AttemptStatus is the lifecycle status of one submission attempt.
type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "Pending"
	AttemptSubmitted AttemptStatus = "Submitted"
	AttemptFailed    AttemptStatus = "Failed"
)

// SubmissionAttempt records one transmission of an artifact to the SDR,
// including the opaque acknowledgment payload on success.
type SubmissionAttempt struct {
	ID          uuid.UUID       `json:"id"`
	ReportID    uuid.UUID       `json:"report_id"`
	Status      AttemptStatus   `json:"status"`
	SDRResponse json.RawMessage `json:"sdr_response,omitempty"`
	ErrorDetail string          `json:"error_detail,omitempty"`
	AttemptedAt time.Time       `json:"attempted_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Result reports the outcome of one submit call.
type Result struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	Status       AttemptStatus   `json:"status"`
	SDRResponse  json.RawMessage `json:"sdr_response,omitempty"`
}
