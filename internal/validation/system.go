package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// Store is the persistence contract for validation outcomes.
type Store interface {
	// RecordOutcomes appends the outcomes and updates each canonical
	// record's validation status in one transaction.
	RecordOutcomes(ctx context.Context, outcomes []Outcome) error
	// OutcomesFor returns every appended outcome for one record, oldest
	// first.
	OutcomesFor(ctx context.Context, uti string) ([]Outcome, error)
}

// System is the public contract of the validation stage.
type System interface {
	Handler() *Handler
	Validate(ctx context.Context, batch []records.CanonicalRecord) (*Result, error)
	History(ctx context.Context, uti string) ([]Outcome, error)
}

type service struct {
	store     Store
	forwarder pipeline.ReportGeneration
	errors    pipeline.ErrorSink
	logger    *slog.Logger
	now       func() time.Time
}

// New creates the validation system.
func New(store Store, forwarder pipeline.ReportGeneration, errors pipeline.ErrorSink, logger *slog.Logger) System {
	return &service{
		store:     store,
		forwarder: forwarder,
		errors:    errors,
		logger:    logger.With("system", "validation"),
		now:       time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Validate evaluates every record in the batch, records the outcomes, then
// partitions the batch: valid records forward to report generation, invalid
// ones go to the error manager. The outcome append and the status updates
// commit together before anything leaves this stage.
func (s *service) Validate(ctx context.Context, batch []records.CanonicalRecord) (*Result, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	now := s.now().UTC()
	outcomes := make([]Outcome, 0, len(batch))
	var valid, invalid []records.CanonicalRecord
	failures := make(map[string][]string, len(batch))

	for _, rec := range batch {
		errs := evaluate(rec)
		outcomes = append(outcomes, newOutcome(rec, errs, now))

		if len(errs) == 0 {
			rec.ValidationStatus = records.ValidationValid
			valid = append(valid, rec)
		} else {
			rec.ValidationStatus = records.ValidationInvalid
			invalid = append(invalid, rec)
			failures[rec.UTI] = errs
		}
	}

	if err := s.store.RecordOutcomes(ctx, outcomes); err != nil {
		return nil, fmt.Errorf("record validation outcomes: %w", err)
	}

	s.logger.Info("batch validated", "count", len(batch), "valid", len(valid), "invalid", len(invalid))

	if len(invalid) > 0 {
		s.reportInvalid(ctx, invalid, failures)
	}

	if len(valid) > 0 {
		if err := s.forwarder.Forward(ctx, valid); err != nil {
			s.logger.Error("forward to report generation failed", "count", len(valid), "error", err)
			s.reportForwardFailure(ctx, valid, err)
		}
	}

	return &Result{
		ValidatedCount: len(batch),
		ValidCount:     len(valid),
		InvalidCount:   len(invalid),
	}, nil
}

// History returns every validation pass recorded for one transaction
// identifier, oldest first. Each revalidation appends a row, so the
// slice is the record's full verdict trail.
func (s *service) History(ctx context.Context, uti string) ([]Outcome, error) {
	return s.store.OutcomesFor(ctx, uti)
}

func (s *service) reportInvalid(ctx context.Context, invalid []records.CanonicalRecord, failures map[string][]string) {
	reports := make([]pipeline.ErrorReport, 0, len(invalid))
	for _, rec := range invalid {
		reports = append(reports, pipeline.ErrorReport{
			SourceStage: records.StageValidation,
			TradeID:     rec.UTI,
			Messages:    failures[rec.UTI],
			Payload:     marshalRecord(rec),
			Severity:    pipeline.SeverityError,
		})
	}

	if err := s.errors.Report(ctx, reports); err != nil {
		s.logger.Error("error manager report failed", "error", err, "severity", "critical")
	}
}

func (s *service) reportForwardFailure(ctx context.Context, recs []records.CanonicalRecord, cause error) {
	reports := make([]pipeline.ErrorReport, 0, len(recs))
	for _, rec := range recs {
		reports = append(reports, pipeline.ErrorReport{
			SourceStage: records.StageValidation,
			TradeID:     rec.UTI,
			Messages:    []string{fmt.Sprintf("Failed to forward batch to report generation: %v", cause)},
			Payload:     marshalRecord(rec),
			Severity:    pipeline.SeverityError,
		})
	}

	if err := s.errors.Report(ctx, reports); err != nil {
		s.logger.Error("error manager report failed", "error", err, "severity", "critical")
	}
}

func marshalRecord(rec records.CanonicalRecord) json.RawMessage {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	return data
}
