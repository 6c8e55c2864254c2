package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/internal/reportgen"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/storage"
)

// Store is the persistence contract for submission attempts and the
// artifact status machine.
type Store interface {
	// FindArtifact returns one artifact descriptor by id.
	FindArtifact(ctx context.Context, id uuid.UUID) (*reportgen.ReportArtifact, error)
	// ClaimArtifact transitions the artifact to SubmissionInProgress only
	// from a resubmittable status. Returns ErrSubmissionInProgress when
	// another submission holds the artifact.
	ClaimArtifact(ctx context.Context, id uuid.UUID) error
	// ReleaseArtifact sets the artifact's final status after an attempt.
	ReleaseArtifact(ctx context.Context, id uuid.UUID, status reportgen.ReportStatus) error
	// CreateAttempt inserts a pending attempt row.
	CreateAttempt(ctx context.Context, attempt SubmissionAttempt) error
	// CompleteAttempt records the attempt's terminal status, acknowledgment,
	// and error detail.
	CompleteAttempt(ctx context.Context, attempt SubmissionAttempt) error
	// LatestAttempt returns the most recent attempt for a report.
	LatestAttempt(ctx context.Context, reportID uuid.UUID) (*SubmissionAttempt, error)
	// ListAttempts returns a filtered page of attempts.
	ListAttempts(ctx context.Context, filter AttemptFilter, page pagination.PageRequest) (*pagination.PageResult[SubmissionAttempt], error)
}

// System is the public contract of the submission stage.
type System interface {
	Handler() *Handler
	Submit(ctx context.Context, reportID uuid.UUID) (*Result, error)
	List(ctx context.Context, filter AttemptFilter, page pagination.PageRequest) (*pagination.PageResult[SubmissionAttempt], error)
}

type service struct {
	store  Store
	blobs  storage.System
	sdr    SDRClient
	errors pipeline.ErrorSink
	pages  pagination.Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates the submission system.
func New(store Store, blobs storage.System, sdr SDRClient, errors pipeline.ErrorSink, pages pagination.Config, logger *slog.Logger) System {
	return &service{
		store:  store,
		blobs:  blobs,
		sdr:    sdr,
		errors: errors,
		pages:  pages,
		logger: logger.With("system", "submission"),
		now:    time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.pages, s.logger)
}

// Submit transmits one artifact to the SDR. An already-submitted artifact
// short-circuits with the latest attempt and no second transmission; a
// failed artifact may be retried. The artifact is claimed before the
// attempt starts so concurrent submits of the same report cannot both
// transmit.
func (s *service) Submit(ctx context.Context, reportID uuid.UUID) (*Result, error) {
	artifact, err := s.store.FindArtifact(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if artifact.Status == reportgen.ReportSubmitted {
		return s.latestResult(ctx, reportID)
	}

	if err := s.store.ClaimArtifact(ctx, reportID); err != nil {
		return nil, err
	}

	attempt := SubmissionAttempt{
		ID:          uuid.New(),
		ReportID:    reportID,
		Status:      AttemptPending,
		AttemptedAt: s.now().UTC(),
	}
	if err := s.store.CreateAttempt(ctx, attempt); err != nil {
		s.release(ctx, reportID, reportgen.ReportSubmissionFailed)
		return nil, fmt.Errorf("create submission attempt: %w", err)
	}

	ack, submitErr := s.transmit(ctx, artifact)

	now := s.now().UTC()
	attempt.CompletedAt = &now
	if submitErr != nil {
		attempt.Status = AttemptFailed
		attempt.ErrorDetail = submitErr.Error()
	} else {
		attempt.Status = AttemptSubmitted
		attempt.SDRResponse = ack
	}

	if err := s.store.CompleteAttempt(ctx, attempt); err != nil {
		s.logger.Error("attempt finalization failed", "report_id", reportID, "error", err, "severity", "critical")
		return nil, fmt.Errorf("complete submission attempt: %w", err)
	}

	if submitErr != nil {
		s.release(ctx, reportID, reportgen.ReportSubmissionFailed)
		s.reportFailure(ctx, artifact, submitErr)
		return nil, fmt.Errorf("submit report %s: %w", artifact.Filename, submitErr)
	}

	s.release(ctx, reportID, reportgen.ReportSubmitted)
	s.logger.Info("report submitted", "filename", artifact.Filename, "submission_id", attempt.ID)

	return &Result{
		SubmissionID: attempt.ID,
		Status:       AttemptSubmitted,
		SDRResponse:  ack,
	}, nil
}

func (s *service) List(ctx context.Context, filter AttemptFilter, page pagination.PageRequest) (*pagination.PageResult[SubmissionAttempt], error) {
	return s.store.ListAttempts(ctx, filter, page)
}

func (s *service) transmit(ctx context.Context, artifact *reportgen.ReportArtifact) (json.RawMessage, error) {
	content, err := s.blobs.Download(ctx, artifact.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load artifact content %s: %w", artifact.StorageKey, err)
	}
	defer content.Close()

	return s.sdr.Submit(ctx, artifact.Filename, content)
}

// release sets the artifact's final status. A failure here leaves the
// artifact stuck in SubmissionInProgress, which only an operator can
// untangle, so it is logged as critical.
func (s *service) release(ctx context.Context, reportID uuid.UUID, status reportgen.ReportStatus) {
	if err := s.store.ReleaseArtifact(ctx, reportID, status); err != nil {
		s.logger.Error("artifact status update failed", "report_id", reportID, "status", status, "error", err, "severity", "critical")
	}
}

func (s *service) latestResult(ctx context.Context, reportID uuid.UUID) (*Result, error) {
	attempt, err := s.store.LatestAttempt(ctx, reportID)
	if err != nil {
		return nil, err
	}

	return &Result{
		SubmissionID: attempt.ID,
		Status:       attempt.Status,
		SDRResponse:  attempt.SDRResponse,
	}, nil
}

func (s *service) reportFailure(ctx context.Context, artifact *reportgen.ReportArtifact, cause error) {
	descriptor, _ := json.Marshal(artifact)

	report := pipeline.ErrorReport{
		SourceStage: records.StageSubmission,
		TradeID:     artifact.Filename,
		Messages:    []string{fmt.Sprintf("SDR submission failed for %s: %v", artifact.Filename, cause)},
		Payload:     descriptor,
		Severity:    pipeline.SeverityError,
	}

	if err := s.errors.Report(ctx, []pipeline.ErrorReport{report}); err != nil {
		s.logger.Error("error manager report failed", "error", err, "severity", "critical")
	}
}
