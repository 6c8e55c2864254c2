package ingestion

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/repository"
)

type store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates the PostgreSQL-backed raw record store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &store{
		db:     db,
		logger: logger.With("store", "raw_records"),
	}
}

func (s *store) CreateBatch(ctx context.Context, recs []records.RawRecord) error {
	const q = `
		INSERT INTO raw_records(id, payload, status, ingested_at)
		VALUES ($1, $2, $3, $4)`

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		for _, rec := range recs {
			if _, err := tx.ExecContext(ctx, q, rec.ID, rec.Payload, rec.Status, rec.IngestedAt); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *store) MarkForwarded(ctx context.Context, ids []uuid.UUID) error {
	const q = `UPDATE raw_records SET status = $1 WHERE id = ANY($2)`

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	_, err := s.db.ExecContext(ctx, q, records.RawForwarded, idStrings)
	return err
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*records.RawRecord, error) {
	const q = `
		SELECT id, payload, status, ingested_at
		FROM raw_records
		WHERE id = $1`

	rec, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanRawRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func scanRawRecord(s repository.Scanner) (records.RawRecord, error) {
	var rec records.RawRecord
	err := s.Scan(&rec.ID, &rec.Payload, &rec.Status, &rec.IngestedAt)
	return rec, err
}
