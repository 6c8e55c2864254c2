package reportgen

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/repository"
)

type store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates the PostgreSQL-backed report artifact store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &store{
		db:     db,
		logger: logger.With("store", "report_artifacts"),
	}
}

func (s *store) CreateArtifact(ctx context.Context, artifact ReportArtifact, recordIDs []uuid.UUID) error {
	const insert = `
		INSERT INTO report_artifacts(id, filename, storage_key, entry_count, status, generated_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	const mark = `
		UPDATE canonical_records
		SET validation_status = $1, report_id = $2, updated_at = $3
		WHERE id = ANY($4)`

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, insert,
			artifact.ID, artifact.Filename, artifact.StorageKey, artifact.EntryCount,
			artifact.Status, artifact.GeneratedAt, artifact.UpdatedAt)
		if err != nil {
			return struct{}{}, err
		}

		ids := make([]string, len(recordIDs))
		for i, id := range recordIDs {
			ids[i] = id.String()
		}

		_, err = tx.ExecContext(ctx, mark, records.IncludedInReport, artifact.ID, artifact.UpdatedAt, ids)
		return struct{}{}, err
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *store) ListArtifacts(ctx context.Context, filter ArtifactFilter, page pagination.PageRequest) (*pagination.PageResult[ReportArtifact], error) {
	builder := artifactBuilder().
		WhereContains("filename", filter.Filename).
		WhereEquals("status", filter.Status).
		OrderByFields(page.Sort)

	countQuery, countArgs := builder.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	pageQuery, pageArgs := builder.BuildPage(page.Page, page.PageSize)
	artifacts, err := repository.QueryMany(ctx, s.db, pageQuery, pageArgs, scanArtifact)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(artifacts, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *store) FindArtifact(ctx context.Context, id uuid.UUID) (*ReportArtifact, error) {
	q, args := artifactBuilder().BuildSingle("id", id)

	artifact, err := repository.QueryOne(ctx, s.db, q, args, scanArtifact)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &artifact, nil
}

func scanArtifact(s repository.Scanner) (ReportArtifact, error) {
	var a ReportArtifact
	err := s.Scan(&a.ID, &a.Filename, &a.StorageKey, &a.EntryCount, &a.Status, &a.GeneratedAt, &a.UpdatedAt)
	return a, err
}
