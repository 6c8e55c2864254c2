// Package errormgr is the pipeline's error side channel: every stage files
// its failures here, operators triage them through the list and status
// endpoints, and retryable entries are replayed into the stage that can
// reprocess them.
package errormgr

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// EntryStatus is the triage status of an error entry. Operators may move
// an entry to any status; Retrying is also set by a successful retry
// dispatch.
type EntryStatus string

const (
	EntryOpen          EntryStatus = "Open"
	EntryInvestigating EntryStatus = "Investigating"
	EntryRetrying      EntryStatus = "Retrying"
	EntryResolved      EntryStatus = "Resolved"
	EntryClosed        EntryStatus = "Closed"
)

// ParseEntryStatus converts a string into an EntryStatus.
func ParseEntryStatus(s string) (EntryStatus, error) {
	switch EntryStatus(s) {
	case EntryOpen, EntryInvestigating, EntryRetrying, EntryResolved, EntryClosed:
		return EntryStatus(s), nil
	}
	return "", fmt.Errorf("unknown entry status: %q", s)
}

// ErrorEntry is one filed failure. RawPayload holds the original source
// trade when the reporting stage still had it; retries past ingestion
// replay from it.
type ErrorEntry struct {
	ID          uuid.UUID       `json:"id"`
	SourceStage records.Stage   `json:"source_module"`
	TradeID     string          `json:"trade_id"`
	Messages    []string        `json:"errors"`
	Payload     json.RawMessage `json:"data,omitempty"`
	RawPayload  json.RawMessage `json:"original_source_data,omitempty"`
	Severity    string          `json:"severity"`
	Status      EntryStatus     `json:"status"`
	ReportedAt  time.Time       `json:"reported_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ReportResult reports the outcome of one report_error call.
type ReportResult struct {
	Status     string `json:"status"`
	EntryCount int    `json:"entry_count"`
}

// RetryResult reports the outcome of one retry dispatch.
type RetryResult struct {
	Status      string        `json:"status"`
	SourceStage records.Stage `json:"source_module"`
}
