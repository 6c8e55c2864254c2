package normalization

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// Store is the persistence contract for canonical records.
type Store interface {
	// CreateBatch persists all records in one transaction; a failure writes
	// nothing.
	CreateBatch(ctx context.Context, recs []records.CanonicalRecord) error
	// FindByUTI returns one canonical record by its transaction identifier.
	FindByUTI(ctx context.Context, uti string) (*records.CanonicalRecord, error)
}

// System is the public contract of the normalization stage.
type System interface {
	Handler() *Handler
	Process(ctx context.Context, batch []records.RawTrade) (*Result, error)
	Lookup(ctx context.Context, uti string) (*records.CanonicalRecord, error)
}

type service struct {
	store     Store
	forwarder pipeline.Validation
	errors    pipeline.ErrorSink
	logger    *slog.Logger
	now       func() time.Time
}

// New creates the normalization system.
func New(store Store, forwarder pipeline.Validation, errors pipeline.ErrorSink, logger *slog.Logger) System {
	return &service{
		store:     store,
		forwarder: forwarder,
		errors:    errors,
		logger:    logger.With("system", "normalization"),
		now:       time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Process canonicalizes the batch, persists every record in one transaction,
// reports conversion errors to the error manager, and forwards the whole
// batch to validation. Error-bearing records still flow downstream; their
// processing errors become validation failures there.
func (s *service) Process(ctx context.Context, batch []records.RawTrade) (*Result, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	now := s.now().UTC()
	recs := make([]records.CanonicalRecord, 0, len(batch))
	failed := 0
	for _, trade := range batch {
		rec := normalize(trade, now)
		if rec.ProcessingStatus == records.ProcessedWithErrors {
			failed++
		}
		recs = append(recs, rec)
	}

	if err := s.store.CreateBatch(ctx, recs); err != nil {
		return nil, fmt.Errorf("persist canonical batch: %w", err)
	}

	s.logger.Info("canonical batch persisted", "count", len(recs), "with_errors", failed)

	if failed > 0 {
		s.reportConversionErrors(ctx, batch, recs)
	}

	if err := s.forwarder.Forward(ctx, recs); err != nil {
		s.logger.Error("forward to validation failed", "count", len(recs), "error", err)
		s.reportForwardFailure(ctx, batch, recs, err)
	}

	return &Result{ProcessedCount: len(recs), ProcessingFailedCount: failed}, nil
}

// Lookup returns the canonical record holding the given transaction
// identifier.
func (s *service) Lookup(ctx context.Context, uti string) (*records.CanonicalRecord, error) {
	return s.store.FindByUTI(ctx, uti)
}

func (s *service) reportConversionErrors(ctx context.Context, batch []records.RawTrade, recs []records.CanonicalRecord) {
	var reports []pipeline.ErrorReport
	for i, rec := range recs {
		if rec.ProcessingStatus != records.ProcessedWithErrors {
			continue
		}
		reports = append(reports, pipeline.ErrorReport{
			SourceStage:     records.StageNormalization,
			TradeID:         batch[i].TradeID,
			Messages:        rec.ProcessingErrors,
			Payload:         marshalRecord(rec),
			OriginalPayload: marshalTrade(batch[i]),
			Severity:        pipeline.SeverityError,
		})
	}

	if err := s.errors.Report(ctx, reports); err != nil {
		s.logger.Error("error manager report failed", "error", err, "severity", "critical")
	}
}

func (s *service) reportForwardFailure(ctx context.Context, batch []records.RawTrade, recs []records.CanonicalRecord, cause error) {
	reports := make([]pipeline.ErrorReport, 0, len(recs))
	for i, rec := range recs {
		reports = append(reports, pipeline.ErrorReport{
			SourceStage:     records.StageNormalization,
			TradeID:         batch[i].TradeID,
			Messages:        []string{fmt.Sprintf("Failed to forward batch to validation: %v", cause)},
			Payload:         marshalRecord(rec),
			OriginalPayload: marshalTrade(batch[i]),
			Severity:        pipeline.SeverityError,
		})
	}

	if err := s.errors.Report(ctx, reports); err != nil {
		s.logger.Error("error manager report failed", "error", err, "severity", "critical")
	}
}

func marshalTrade(trade records.RawTrade) json.RawMessage {
	data, err := json.Marshal(trade)
	if err != nil {
		return nil
	}
	return data
}

func marshalRecord(rec records.CanonicalRecord) json.RawMessage {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	return data
}
