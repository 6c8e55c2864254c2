// Package reportgen turns validated canonical records into submittable
// report artifacts. The artifact body is a batch text file (header lines,
// one formatted line per record, trailer); the content lives in blob
// storage and the database row holds the descriptor. An entry that cannot
// be formatted is excluded from the artifact and reported, without failing
// the batch.
package reportgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// ReportStatus is the lifecycle status of a report artifact. Generation
// writes Generated; the submission stage owns the remaining transitions.
type ReportStatus string

const (
	ReportGenerated            ReportStatus = "Generated"
	ReportSubmissionInProgress ReportStatus = "SubmissionInProgress"
	ReportSubmitted            ReportStatus = "Submitted"
	ReportSubmissionFailed     ReportStatus = "SubmissionFailed"
)

// ReportArtifact is the descriptor for one generated report file.
type ReportArtifact struct {
	ID          uuid.UUID    `json:"id"`
	Filename    string       `json:"filename"`
	StorageKey  string       `json:"storage_key"`
	EntryCount  int          `json:"entry_count"`
	Status      ReportStatus `json:"status"`
	GeneratedAt time.Time    `json:"generated_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Result reports the outcome of one generation call.
type Result struct {
	Status         string `json:"status"`
	GeneratedCount int    `json:"generated_count"`
}

const separator = "----------------------------------------------------"

// newFilename derives a batch filename from the generation time and a
// random suffix.
func newFilename(now time.Time) string {
	suffix := make([]byte, 3)
	rand.Read(suffix)
	return fmt.Sprintf("swap_report_batch_%s_%s.txt", now.Format("20060102150405"), hex.EncodeToString(suffix))
}

// formatEntry renders one record as a report line. A record without a
// notional amount cannot be represented in the batch format.
func formatEntry(rec records.CanonicalRecord) (string, error) {
	if rec.NotionalAmount == nil {
		return "", fmt.Errorf("notional amount missing for UTI %s", rec.UTI)
	}

	return fmt.Sprintf(
		"UTI: %s, Action: %s, Asset Class: %s, Notional: %s %s, Effective Date: %s, Reporting LEI: %s",
		rec.UTI, rec.ActionType, rec.AssetClass,
		strconv.FormatFloat(*rec.NotionalAmount, 'f', -1, 64), rec.NotionalCurrency,
		rec.EffectiveDate, rec.ReportingCounterpartyLEI,
	), nil
}

type entryFailure struct {
	record records.CanonicalRecord
	err    error
}

// buildContent formats the batch body and partitions the records into
// included entries and formatting failures.
func buildContent(recs []records.CanonicalRecord, now time.Time) (string, []records.CanonicalRecord, []entryFailure) {
	var (
		included []records.CanonicalRecord
		failures []entryFailure
		lines    []string
	)

	for _, rec := range recs {
		line, err := formatEntry(rec)
		if err != nil {
			failures = append(failures, entryFailure{record: rec, err: err})
			continue
		}
		lines = append(lines, line)
		included = append(included, rec)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Swap Report Batch - Generated at %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "## Number of Entries: %d\n", len(included))
	b.WriteString(separator + "\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	b.WriteString(separator + "\n")

	return b.String(), included, failures
}
