// Package records defines the schemas that cross stage boundaries in the
// swap reporting pipeline: the raw trade shape accepted at ingestion and the
// canonical record produced by normalization, together with the status
// vocabulary shared by every stage.
package records

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for swap dates.
const DateLayout = "2006-01-02"

// RawTrade is the trade payload accepted from external source systems.
// Numeric fields use FlexNumber so sources that quote numbers as strings
// still parse at the boundary; conversion failures surface as normalization
// errors, not rejections.
type RawTrade struct {
	TradeID          string     `json:"trade_id"`
	Action           string     `json:"action"`
	InstrumentType   string     `json:"instrument_type,omitempty"`
	AssetClass       string     `json:"asset_class"`
	EffectiveDate    string     `json:"effective_date"`
	TerminationDate  string     `json:"termination_date"`
	NotionalAmount   FlexNumber `json:"notional_amount"`
	NotionalCurrency string     `json:"notional_currency"`
	PartyALEI        string     `json:"party_a_lei"`
	PartyBLEI        string     `json:"party_b_lei"`
	Price            FlexNumber `json:"price,omitempty"`
	PriceCurrency    string     `json:"price_currency,omitempty"`
}

// RawRecord is a persisted raw trade: the immutable replay source for retries.
type RawRecord struct {
	ID         uuid.UUID       `json:"id"`
	Payload    json.RawMessage `json:"payload"`
	Status     RawStatus       `json:"status"`
	IngestedAt time.Time       `json:"ingested_at"`
}

// RawStatus is the lifecycle status of a persisted raw record.
type RawStatus string

const (
	RawIngested  RawStatus = "Ingested"
	RawForwarded RawStatus = "Forwarded"
	RawFailed    RawStatus = "Failed"
)

// ProcessingStatus reports how normalization of a record went.
type ProcessingStatus string

const (
	Processed           ProcessingStatus = "Processed"
	ProcessedWithErrors ProcessingStatus = "ProcessedWithErrors"
)

// ValidationStatus is the regulatory validation state of a canonical record.
type ValidationStatus string

const (
	ValidationPending ValidationStatus = "Pending"
	ValidationValid   ValidationStatus = "Valid"
	ValidationInvalid ValidationStatus = "Invalid"
	IncludedInReport  ValidationStatus = "IncludedInReport"
)

// CanonicalRecord is the normalized, UTI-keyed representation of a swap trade.
// A record can carry normalization errors and still exist: the audit trail
// requires error-bearing records to be persisted, and validation propagates
// their errors.
type CanonicalRecord struct {
	ID                       uuid.UUID        `json:"id"`
	UTI                      string           `json:"unique_transaction_identifier"`
	ReportingCounterpartyLEI string           `json:"reporting_counterparty_lei"`
	OtherCounterpartyLEI     string           `json:"other_counterparty_lei"`
	ActionType               string           `json:"action_type"`
	AssetClass               string           `json:"asset_class"`
	EffectiveDate            string           `json:"effective_date"`
	TerminationDate          string           `json:"termination_date"`
	NotionalAmount           *float64         `json:"notional_amount"`
	NotionalCurrency         string           `json:"notional_currency"`
	Price                    *float64         `json:"price"`
	PriceCurrency            string           `json:"price_currency"`
	ProcessingErrors         []string         `json:"processing_errors"`
	ProcessingStatus         ProcessingStatus `json:"processing_status"`
	ValidationStatus         ValidationStatus `json:"validation_status"`
	RawRecordID              *uuid.UUID       `json:"raw_record_id,omitempty"`
	ReportID                 *uuid.UUID       `json:"report_id,omitempty"`
	CreatedAt                time.Time        `json:"created_at"`
	UpdatedAt                time.Time        `json:"updated_at"`
}

// ParseDate parses a swap date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
