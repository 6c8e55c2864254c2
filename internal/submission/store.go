package submission

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/reportgen"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/repository"
)

type store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates the PostgreSQL-backed submission store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &store{
		db:     db,
		logger: logger.With("store", "submission_attempts"),
	}
}

func (s *store) FindArtifact(ctx context.Context, id uuid.UUID) (*reportgen.ReportArtifact, error) {
	const q = `
		SELECT id, filename, storage_key, entry_count, status, generated_at, updated_at
		FROM report_artifacts
		WHERE id = $1`

	artifact, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanArtifact)
	if err != nil {
		return nil, repository.MapError(err, ErrReportNotFound, ErrDuplicate)
	}
	return &artifact, nil
}

func (s *store) ClaimArtifact(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE report_artifacts
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status IN ($3, $4)`

	err := repository.ExecExpectOne(ctx, s.db, q,
		reportgen.ReportSubmissionInProgress, id,
		reportgen.ReportGenerated, reportgen.ReportSubmissionFailed)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSubmissionInProgress
	}
	return err
}

func (s *store) ReleaseArtifact(ctx context.Context, id uuid.UUID, status reportgen.ReportStatus) error {
	const q = `
		UPDATE report_artifacts
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3`

	err := repository.ExecExpectOne(ctx, s.db, q, status, id, reportgen.ReportSubmissionInProgress)
	return repository.MapError(err, ErrReportNotFound, ErrDuplicate)
}

func (s *store) CreateAttempt(ctx context.Context, attempt SubmissionAttempt) error {
	const q = `
		INSERT INTO submission_attempts(id, report_id, status, sdr_response, error_detail, attempted_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, q,
		attempt.ID, attempt.ReportID, attempt.Status,
		repository.NullableJSON(attempt.SDRResponse), attempt.ErrorDetail,
		attempt.AttemptedAt, attempt.CompletedAt)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *store) CompleteAttempt(ctx context.Context, attempt SubmissionAttempt) error {
	const q = `
		UPDATE submission_attempts
		SET status = $1, sdr_response = $2, error_detail = $3, completed_at = $4
		WHERE id = $5`

	err := repository.ExecExpectOne(ctx, s.db, q,
		attempt.Status, repository.NullableJSON(attempt.SDRResponse), attempt.ErrorDetail,
		attempt.CompletedAt, attempt.ID)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *store) LatestAttempt(ctx context.Context, reportID uuid.UUID) (*SubmissionAttempt, error) {
	const q = `
		SELECT id, report_id, status, sdr_response, error_detail, attempted_at, completed_at
		FROM submission_attempts
		WHERE report_id = $1
		ORDER BY attempted_at DESC
		LIMIT 1`

	attempt, err := repository.QueryOne(ctx, s.db, q, []any{reportID}, scanAttempt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &attempt, nil
}

func (s *store) ListAttempts(ctx context.Context, filter AttemptFilter, page pagination.PageRequest) (*pagination.PageResult[SubmissionAttempt], error) {
	builder := attemptBuilder().
		WhereEquals("status", filter.Status).
		OrderByFields(page.Sort)
	if filter.ReportID != nil {
		builder.WhereEquals("report_id", *filter.ReportID)
	}

	countQuery, countArgs := builder.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	pageQuery, pageArgs := builder.BuildPage(page.Page, page.PageSize)
	attempts, err := repository.QueryMany(ctx, s.db, pageQuery, pageArgs, scanAttempt)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(attempts, total, page.Page, page.PageSize)
	return &result, nil
}

func scanAttempt(s repository.Scanner) (SubmissionAttempt, error) {
	var a SubmissionAttempt
	err := s.Scan(&a.ID, &a.ReportID, &a.Status, &a.SDRResponse, &a.ErrorDetail, &a.AttemptedAt, &a.CompletedAt)
	return a, err
}

func scanArtifact(s repository.Scanner) (reportgen.ReportArtifact, error) {
	var a reportgen.ReportArtifact
	err := s.Scan(&a.ID, &a.Filename, &a.StorageKey, &a.EntryCount, &a.Status, &a.GeneratedAt, &a.UpdatedAt)
	return a, err
}
