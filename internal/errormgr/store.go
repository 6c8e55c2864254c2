package errormgr

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/repository"
)

type store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates the PostgreSQL-backed error entry store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &store{
		db:     db,
		logger: logger.With("store", "error_entries"),
	}
}

func (s *store) CreateEntries(ctx context.Context, entries []ErrorEntry) error {
	const q = `
		INSERT INTO error_entries(
			id, source_stage, trade_id, messages, payload, raw_payload,
			severity, status, reported_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		for _, e := range entries {
			messages, err := json.Marshal(e.Messages)
			if err != nil {
				return struct{}{}, err
			}

			_, err = tx.ExecContext(ctx, q,
				e.ID, e.SourceStage, e.TradeID, messages,
				repository.NullableJSON(e.Payload), repository.NullableJSON(e.RawPayload),
				e.Severity, e.Status, e.ReportedAt, e.UpdatedAt)
			if err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *store) ListEntries(ctx context.Context, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResult[ErrorEntry], error) {
	builder := entryBuilder().
		WhereEquals("status", filter.Status).
		WhereEquals("source_module", filter.Stage).
		WhereEquals("trade_id", filter.TradeID).
		WhereEquals("severity", filter.Severity).
		OrderByFields(page.Sort)

	countQuery, countArgs := builder.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	pageQuery, pageArgs := builder.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, s.db, pageQuery, pageArgs, scanEntry)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *store) FindEntry(ctx context.Context, id uuid.UUID) (*ErrorEntry, error) {
	q, args := entryBuilder().BuildSingle("id", id)

	entry, err := repository.QueryOne(ctx, s.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &entry, nil
}

func (s *store) UpdateStatus(ctx context.Context, id uuid.UUID, status EntryStatus, updatedAt time.Time) error {
	const q = `UPDATE error_entries SET status = $1, updated_at = $2 WHERE id = $3`

	err := repository.ExecExpectOne(ctx, s.db, q, status, updatedAt, id)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func scanEntry(s repository.Scanner) (ErrorEntry, error) {
	var (
		e        ErrorEntry
		messages []byte
	)

	err := s.Scan(
		&e.ID, &e.SourceStage, &e.TradeID, &messages,
		&e.Payload, &e.RawPayload, &e.Severity, &e.Status,
		&e.ReportedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}

	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &e.Messages); err != nil {
			return e, err
		}
	}
	return e, nil
}
