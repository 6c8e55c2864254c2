// Package validation evaluates canonical records against the regulatory
// rule set. Rules run in a fixed order so a given record always produces
// the same failure list, outcomes are appended to an audit table, and the
// batch is partitioned: valid records move on to report generation, invalid
// ones are filed with the error manager.
package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// Result reports the outcome of one validation call.
type Result struct {
	ValidatedCount int `json:"validated_count"`
	ValidCount     int `json:"valid_count"`
	InvalidCount   int `json:"invalid_count"`
}

// Outcome is one appended validation verdict. Outcomes are never updated;
// revalidating a record appends a new row.
type Outcome struct {
	ID                uuid.UUID               `json:"id"`
	CanonicalRecordID uuid.UUID               `json:"canonical_record_id"`
	UTI               string                  `json:"unique_transaction_identifier"`
	Status            records.ValidationStatus `json:"status"`
	Errors            []string                `json:"errors"`
	ValidatedAt       time.Time               `json:"validated_at"`
}

// evaluate runs the rule set against one record and returns its failures.
// Rule order is fixed; do not reorder without revisiting stored outcomes.
func evaluate(rec records.CanonicalRecord) []string {
	var errs []string

	for _, msg := range rec.ProcessingErrors {
		errs = append(errs, fmt.Sprintf("Processing Error: %s", msg))
	}

	if rec.NotionalAmount == nil || *rec.NotionalAmount <= 0 {
		errs = append(errs, "Notional Amount must be a positive value.")
	}

	effective, effErr := records.ParseDate(rec.EffectiveDate)
	if effErr != nil {
		errs = append(errs, fmt.Sprintf("Effective Date '%s' is missing or invalid format (YYYY-MM-DD).", rec.EffectiveDate))
	}

	termination, termErr := records.ParseDate(rec.TerminationDate)
	if termErr != nil {
		errs = append(errs, fmt.Sprintf("Termination Date '%s' is missing or invalid format (YYYY-MM-DD).", rec.TerminationDate))
	}

	if effErr == nil && termErr == nil && effective.After(termination) {
		errs = append(errs, "Effective Date must be before or equal to Termination Date.")
	}

	if rec.ReportingCounterpartyLEI != "" && !records.ValidLEI(rec.ReportingCounterpartyLEI) {
		errs = append(errs, fmt.Sprintf("Reporting Counterparty LEI '%s' has invalid format.", rec.ReportingCounterpartyLEI))
	}

	if rec.OtherCounterpartyLEI != "" && !records.ValidLEI(rec.OtherCounterpartyLEI) {
		errs = append(errs, fmt.Sprintf("Other Counterparty LEI '%s' has invalid format.", rec.OtherCounterpartyLEI))
	}

	if rec.ActionType == "NEWT" && (rec.ReportingCounterpartyLEI == "" || rec.OtherCounterpartyLEI == "") {
		errs = append(errs, "Both counterparty LEIs are required for action type 'NEWT'.")
	}

	return errs
}

func newOutcome(rec records.CanonicalRecord, errs []string, now time.Time) Outcome {
	status := records.ValidationValid
	if len(errs) > 0 {
		status = records.ValidationInvalid
	}

	return Outcome{
		ID:                uuid.New(),
		CanonicalRecordID: rec.ID,
		UTI:               rec.UTI,
		Status:            status,
		Errors:            errs,
		ValidatedAt:       now,
	}
}
