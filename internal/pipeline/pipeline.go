// Package pipeline defines the client contracts between pipeline stages.
// Every downstream hop is a Forward call behind an interface: stage logic
// never knows whether the other side is a deployed service or an in-process
// fake. Forwarding is never retried automatically; a failed Forward is a
// terminal outcome for the call and is reported to the error manager.
package pipeline

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// Severity labels for reported errors.
const (
	SeverityWarning  = "Warning"
	SeverityError    = "Error"
	SeverityCritical = "Critical"
)

// ErrorReport is one failure funneled into the error manager.
// OriginalPayload carries the raw trade data when the reporting stage still
// has it; retry targeting depends on it for stages past ingestion.
type ErrorReport struct {
	SourceStage     records.Stage   `json:"source_module"`
	TradeID         string          `json:"trade_id"`
	Messages        []string        `json:"errors"`
	Payload         json.RawMessage `json:"data,omitempty"`
	OriginalPayload json.RawMessage `json:"original_source_data,omitempty"`
	Severity        string          `json:"severity"`
}

// Ingestion is the ingestion gateway's entry point, used by the error
// manager to replay a stored raw batch.
type Ingestion interface {
	Forward(ctx context.Context, batch []records.RawTrade) error
}

// Normalization receives raw trades for canonicalization.
type Normalization interface {
	Forward(ctx context.Context, batch []records.RawTrade) error
}

// Validation receives canonical records for rule evaluation.
type Validation interface {
	Forward(ctx context.Context, batch []records.CanonicalRecord) error
}

// ReportGeneration receives validated records for artifact formatting.
type ReportGeneration interface {
	Forward(ctx context.Context, batch []records.CanonicalRecord) error
}

// Submission receives an artifact identifier to transmit to the SDR.
type Submission interface {
	Forward(ctx context.Context, reportID uuid.UUID) error
}

// ErrorSink receives failure reports from any stage.
type ErrorSink interface {
	Report(ctx context.Context, reports []ErrorReport) error
}
