package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// Store is the persistence contract for raw records.
type Store interface {
	// CreateBatch persists all records in one transaction.
	CreateBatch(ctx context.Context, recs []records.RawRecord) error
	// MarkForwarded transitions the given records to Forwarded.
	MarkForwarded(ctx context.Context, ids []uuid.UUID) error
	// Find returns one raw record by id.
	Find(ctx context.Context, id uuid.UUID) (*records.RawRecord, error)
}

// System is the public contract of the ingestion gateway.
type System interface {
	Handler() *Handler
	Ingest(ctx context.Context, batch []records.RawTrade) (*Result, error)
	Get(ctx context.Context, id uuid.UUID) (*records.RawRecord, error)
}

type service struct {
	store     Store
	forwarder pipeline.Normalization
	errors    pipeline.ErrorSink
	logger    *slog.Logger
	now       func() time.Time
}

// New creates the ingestion system.
func New(store Store, forwarder pipeline.Normalization, errors pipeline.ErrorSink, logger *slog.Logger) System {
	return &service{
		store:     store,
		forwarder: forwarder,
		errors:    errors,
		logger:    logger.With("system", "ingestion"),
		now:       time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Ingest persists the batch, then forwards it to normalization. A forwarding
// failure leaves every record Ingested and files an error entry per record so
// an operator can replay the stored payload; the ingest call itself still
// succeeds because the data is durably held.
func (s *service) Ingest(ctx context.Context, batch []records.RawTrade) (*Result, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	now := s.now().UTC()
	recs := make([]records.RawRecord, 0, len(batch))
	for _, trade := range batch {
		rec, err := newRawRecord(trade, now)
		if err != nil {
			return nil, fmt.Errorf("encode raw trade %s: %w", trade.TradeID, err)
		}
		recs = append(recs, rec)
	}

	if err := s.store.CreateBatch(ctx, recs); err != nil {
		return nil, fmt.Errorf("persist raw batch: %w", err)
	}

	s.logger.Info("raw batch persisted", "count", len(recs))

	if err := s.forwarder.Forward(ctx, batch); err != nil {
		s.logger.Error("forward to normalization failed", "count", len(batch), "error", err)
		s.reportForwardFailure(ctx, batch, recs, err)
		return &Result{Status: "accepted", ReceivedCount: len(batch)}, nil
	}

	ids := make([]uuid.UUID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	if err := s.store.MarkForwarded(ctx, ids); err != nil {
		s.logger.Error("mark forwarded failed", "error", err)
	}

	return &Result{Status: "success", ReceivedCount: len(batch)}, nil
}

// Get returns one stored raw record with its original payload, which is
// what an operator replays after a forward failure.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*records.RawRecord, error) {
	return s.store.Find(ctx, id)
}

func (s *service) reportForwardFailure(ctx context.Context, batch []records.RawTrade, recs []records.RawRecord, cause error) {
	reports := make([]pipeline.ErrorReport, 0, len(batch))
	for i, trade := range batch {
		reports = append(reports, pipeline.ErrorReport{
			SourceStage:     records.StageIngestion,
			TradeID:         trade.TradeID,
			Messages:        []string{fmt.Sprintf("Failed to forward batch to normalization: %v", cause)},
			Payload:         recs[i].Payload,
			OriginalPayload: recs[i].Payload,
			Severity:        pipeline.SeverityError,
		})
	}

	if err := s.errors.Report(ctx, reports); err != nil {
		s.logger.Error("error manager report failed", "error", err, "severity", "critical")
	}
}
