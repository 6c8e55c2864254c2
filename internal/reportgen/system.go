package reportgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/storage"
)

// Store is the persistence contract for report artifacts.
type Store interface {
	// CreateArtifact inserts the descriptor and marks the included records
	// as reported in one transaction.
	CreateArtifact(ctx context.Context, artifact ReportArtifact, recordIDs []uuid.UUID) error
	// ListArtifacts returns a filtered page of descriptors.
	ListArtifacts(ctx context.Context, filter ArtifactFilter, page pagination.PageRequest) (*pagination.PageResult[ReportArtifact], error)
	// FindArtifact returns one descriptor by id.
	FindArtifact(ctx context.Context, id uuid.UUID) (*ReportArtifact, error)
}

// System is the public contract of the report generation stage.
type System interface {
	Handler() *Handler
	Generate(ctx context.Context, batch []records.CanonicalRecord) (*Result, error)
	List(ctx context.Context, filter ArtifactFilter, page pagination.PageRequest) (*pagination.PageResult[ReportArtifact], error)
}

type service struct {
	store     Store
	blobs     storage.System
	forwarder pipeline.Submission
	errors    pipeline.ErrorSink
	pages     pagination.Config
	logger    *slog.Logger
	now       func() time.Time
}

// New creates the report generation system.
func New(store Store, blobs storage.System, forwarder pipeline.Submission, errors pipeline.ErrorSink, pages pagination.Config, logger *slog.Logger) System {
	return &service{
		store:     store,
		blobs:     blobs,
		forwarder: forwarder,
		errors:    errors,
		pages:     pages,
		logger:    logger.With("system", "reportgen"),
		now:       time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.pages, s.logger)
}

// Generate formats the batch into one artifact, uploads the content, and
// commits the descriptor together with the record status updates. The blob
// is removed again if the descriptor transaction fails, so storage never
// holds content the database does not know about.
func (s *service) Generate(ctx context.Context, batch []records.CanonicalRecord) (*Result, error) {
	if len(batch) == 0 {
		return &Result{Status: "success", GeneratedCount: 0}, nil
	}

	now := s.now().UTC()
	content, included, failures := buildContent(batch, now)

	if len(failures) > 0 {
		s.reportFormatFailures(ctx, failures)
	}

	if len(included) == 0 {
		return &Result{Status: "success", GeneratedCount: 0}, nil
	}

	artifact := ReportArtifact{
		ID:          uuid.New(),
		Filename:    newFilename(now),
		EntryCount:  len(included),
		Status:      ReportGenerated,
		GeneratedAt: now,
		UpdatedAt:   now,
	}
	artifact.StorageKey = artifact.Filename

	if err := s.blobs.Upload(ctx, artifact.StorageKey, strings.NewReader(content), "text/plain"); err != nil {
		s.logger.Error("artifact upload failed", "filename", artifact.Filename, "error", err, "severity", "critical")
		return nil, fmt.Errorf("upload artifact %s: %w", artifact.Filename, err)
	}

	ids := make([]uuid.UUID, len(included))
	for i, rec := range included {
		ids[i] = rec.ID
	}

	if err := s.store.CreateArtifact(ctx, artifact, ids); err != nil {
		if delErr := s.blobs.Delete(ctx, artifact.StorageKey); delErr != nil {
			s.logger.Error("orphaned artifact blob", "key", artifact.StorageKey, "error", delErr, "severity", "critical")
		}
		return nil, fmt.Errorf("persist artifact %s: %w", artifact.Filename, err)
	}

	s.logger.Info("artifact generated", "filename", artifact.Filename, "entries", artifact.EntryCount)

	if err := s.forwarder.Forward(ctx, artifact.ID); err != nil {
		s.logger.Error("forward to submission failed", "report_id", artifact.ID, "error", err)
		s.reportForwardFailure(ctx, artifact, err)
	}

	return &Result{Status: "success", GeneratedCount: len(included)}, nil
}

func (s *service) List(ctx context.Context, filter ArtifactFilter, page pagination.PageRequest) (*pagination.PageResult[ReportArtifact], error) {
	return s.store.ListArtifacts(ctx, filter, page)
}

func (s *service) reportFormatFailures(ctx context.Context, failures []entryFailure) {
	reports := make([]pipeline.ErrorReport, 0, len(failures))
	for _, f := range failures {
		reports = append(reports, pipeline.ErrorReport{
			SourceStage: records.StageReportGeneration,
			TradeID:     f.record.UTI,
			Messages:    []string{fmt.Sprintf("Error formatting report entry: %v", f.err)},
			Payload:     marshalRecord(f.record),
			Severity:    pipeline.SeverityError,
		})
	}

	if err := s.errors.Report(ctx, reports); err != nil {
		s.logger.Error("error manager report failed", "error", err, "severity", "critical")
	}
}

func (s *service) reportForwardFailure(ctx context.Context, artifact ReportArtifact, cause error) {
	descriptor, _ := json.Marshal(artifact)

	report := pipeline.ErrorReport{
		SourceStage: records.StageReportGeneration,
		TradeID:     artifact.Filename,
		Messages:    []string{fmt.Sprintf("Failed to forward report to submission: %v", cause)},
		Payload:     descriptor,
		Severity:    pipeline.SeverityError,
	}

	if err := s.errors.Report(ctx, []pipeline.ErrorReport{report}); err != nil {
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
