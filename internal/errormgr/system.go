package errormgr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/middleware"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
)

// Store is the persistence contract for error entries.
type Store interface {
	// CreateEntries persists all entries in one transaction.
	CreateEntries(ctx context.Context, entries []ErrorEntry) error
	// ListEntries returns a filtered page of entries.
	ListEntries(ctx context.Context, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResult[ErrorEntry], error)
	// FindEntry returns one entry by id.
	FindEntry(ctx context.Context, id uuid.UUID) (*ErrorEntry, error)
	// UpdateStatus sets an entry's triage status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status EntryStatus, updatedAt time.Time) error
}

// System is the public contract of the error manager.
type System interface {
	Handler() *Handler
	Report(ctx context.Context, reports []pipeline.ErrorReport) (*ReportResult, error)
	List(ctx context.Context, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResult[ErrorEntry], error)
	Get(ctx context.Context, id uuid.UUID) (*ErrorEntry, error)
	SetStatus(ctx context.Context, id uuid.UUID, status EntryStatus) (*ErrorEntry, error)
	Retry(ctx context.Context, id uuid.UUID) (*RetryResult, error)
}

type service struct {
	store         Store
	ingestion     pipeline.Ingestion
	normalization pipeline.Normalization
	pages         pagination.Config
	verifier      middleware.TokenVerifier
	logger        *slog.Logger
	now           func() time.Time
}

// New creates the error manager system. A nil verifier leaves the operator
// mutation endpoints unauthenticated.
func New(store Store, ingestion pipeline.Ingestion, normalization pipeline.Normalization, pages pagination.Config, verifier middleware.TokenVerifier, logger *slog.Logger) System {
	return &service{
		store:         store,
		ingestion:     ingestion,
		normalization: normalization,
		pages:         pages,
		verifier:      verifier,
		logger:        logger.With("system", "errormgr"),
		now:           time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.pages, s.verifier, s.logger)
}

// Report files the reported failures as Open entries. Entries with an
// unknown source stage are rejected so retry dispatch stays a total match.
func (s *service) Report(ctx context.Context, reports []pipeline.ErrorReport) (*ReportResult, error) {
	if len(reports) == 0 {
		return nil, ErrEmptyReport
	}

	now := s.now().UTC()
	entries := make([]ErrorEntry, 0, len(reports))
	for _, r := range reports {
		stage, err := records.ParseStage(string(r.SourceStage))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
		}

		severity := r.Severity
		if severity == "" {
			severity = pipeline.SeverityError
		}

		entries = append(entries, ErrorEntry{
			ID:          uuid.New(),
			SourceStage: stage,
			TradeID:     r.TradeID,
			Messages:    r.Messages,
			Payload:     r.Payload,
			RawPayload:  r.OriginalPayload,
			Severity:    severity,
			Status:      EntryOpen,
			ReportedAt:  now,
			UpdatedAt:   now,
		})

		if severity == pipeline.SeverityCritical {
			s.logger.Error("critical failure reported", "stage", stage, "trade_id", r.TradeID, "severity", "critical")
		}
	}

	if err := s.store.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("persist error entries: %w", err)
	}

	s.logger.Info("failures filed", "count", len(entries))
	return &ReportResult{Status: "received", EntryCount: len(entries)}, nil
}

func (s *service) List(ctx context.Context, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResult[ErrorEntry], error) {
	return s.store.ListEntries(ctx, filter, page)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ErrorEntry, error) {
	return s.store.FindEntry(ctx, id)
}

// SetStatus applies an operator's triage decision. Transitions are not
// constrained; operators may reopen or close entries freely.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status EntryStatus) (*ErrorEntry, error) {
	if err := s.store.UpdateStatus(ctx, id, status, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.store.FindEntry(ctx, id)
}

// Retry replays the entry's payload into the stage that can reprocess it.
// The entry moves to Retrying only after the dispatch succeeds; a failed
// dispatch leaves it untouched.
func (s *service) Retry(ctx context.Context, id uuid.UUID) (*RetryResult, error) {
	entry, err := s.store.FindEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.dispatch(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.store.UpdateStatus(ctx, id, EntryRetrying, s.now().UTC()); err != nil {
		s.logger.Error("retry status update failed", "entry_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("entry dispatched for retry", "entry_id", id, "stage", entry.SourceStage)
	return &RetryResult{Status: "retry dispatched", SourceStage: entry.SourceStage}, nil
}

func (s *service) dispatch(ctx context.Context, entry *ErrorEntry) error {
	switch entry.SourceStage {
	case records.StageIngestion:
		batch, err := replayBatch(entry)
		if err != nil {
			return err
		}
		return s.ingestion.Forward(ctx, batch)
	case records.StageNormalization, records.StageValidation:
		batch, err := replayBatch(entry)
		if err != nil {
			return err
		}
		return s.normalization.Forward(ctx, batch)
	case records.StageReportGeneration, records.StageSubmission:
		return ErrRetryUnsupported
	}
	return fmt.Errorf("%w: %s", ErrRetryUnsupported, entry.SourceStage)
}

// replayBatch reconstructs the raw trade batch from the entry's original
// source data. The stage-level payload is never a substitute: for entries
// reported past normalization it holds a canonical record, and replaying
// that into /process would mint a fresh UTI for an empty trade.
func replayBatch(entry *ErrorEntry) ([]records.RawTrade, error) {
	payload := entry.RawPayload
	if len(payload) == 0 {
		return nil, ErrNoReplayPayload
	}

	var batch []records.RawTrade
	if err := json.Unmarshal(payload, &batch); err == nil {
		return batch, nil
	}

	var trade records.RawTrade
	if err := json.Unmarshal(payload, &trade); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoReplayPayload, err)
	}
	return []records.RawTrade{trade}, nil
}
