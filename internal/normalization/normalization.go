// Package normalization canonicalizes raw trades: it assigns a unique
// transaction identifier, standardizes field formats, and persists the
// canonical record before handing the batch to validation. A trade that
// fails conversion is still persisted, with its errors attached, so the
// audit trail and downstream error propagation stay intact.
package normalization

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// Result reports the outcome of one normalization call.
type Result struct {
	ProcessedCount        int `json:"processed_count"`
	ProcessingFailedCount int `json:"processing_failed_count"`
}

// NewUTI derives a unique transaction identifier from the trade id, the
// current time, and a random suffix. The output is uppercase with
// underscores folded to dashes so identifiers stay portable across SDR
// formats.
func NewUTI(tradeID string, now time.Time) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)

	uti := fmt.Sprintf("SWP-%s-%d-%s", tradeID, now.UnixMilli(), hex.EncodeToString(suffix))
	uti = strings.ReplaceAll(uti, "_", "-")
	return strings.ToUpper(uti)
}

// normalize converts one raw trade into a canonical record. Conversion
// failures never abort the record; they accumulate as processing errors.
func normalize(trade records.RawTrade, now time.Time) records.CanonicalRecord {
	var errs []string

	reportingLEI := strings.ToUpper(strings.TrimSpace(trade.PartyALEI))
	otherLEI := strings.ToUpper(strings.TrimSpace(trade.PartyBLEI))

	if reportingLEI != "" && !records.ValidLEI(reportingLEI) {
		errs = append(errs, fmt.Sprintf("Reporting Counterparty LEI '%s' has invalid format.", reportingLEI))
	}
	if otherLEI != "" && !records.ValidLEI(otherLEI) {
		errs = append(errs, fmt.Sprintf("Other Counterparty LEI '%s' has invalid format.", otherLEI))
	}

	notional, ok := trade.NotionalAmount.Float()
	if !ok {
		errs = append(errs, fmt.Sprintf("Notional Amount '%s' is not a valid number.", trade.NotionalAmount))
	}

	price, ok := trade.Price.Float()
	if !ok {
		errs = append(errs, fmt.Sprintf("Price '%s' is not a valid number.", trade.Price))
	}

	status := records.Processed
	if len(errs) > 0 {
		status = records.ProcessedWithErrors
	}

	return records.CanonicalRecord{
		ID:                       uuid.New(),
		UTI:                      NewUTI(trade.TradeID, now),
		ReportingCounterpartyLEI: reportingLEI,
		OtherCounterpartyLEI:     otherLEI,
		ActionType:               strings.ToUpper(strings.TrimSpace(trade.Action)),
		AssetClass:               strings.ToUpper(strings.TrimSpace(trade.AssetClass)),
		EffectiveDate:            strings.TrimSpace(trade.EffectiveDate),
		TerminationDate:          strings.TrimSpace(trade.TerminationDate),
		NotionalAmount:           notional,
		NotionalCurrency:         strings.ToUpper(strings.TrimSpace(trade.NotionalCurrency)),
		Price:                    price,
		PriceCurrency:            strings.ToUpper(strings.TrimSpace(trade.PriceCurrency)),
		ProcessingErrors:         errs,
		ProcessingStatus:         status,
		ValidationStatus:         records.ValidationPending,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}
