package validation

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/todd-jang/swap-reporting-mvp/pkg/repository"
)

type store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates the PostgreSQL-backed validation outcome store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &store{
		db:     db,
		logger: logger.With("store", "validation_outcomes"),
	}
}

func (s *store) RecordOutcomes(ctx context.Context, outcomes []Outcome) error {
	const insert = `
		INSERT INTO validation_outcomes(id, canonical_record_id, uti, status, errors, validated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	const update = `
		UPDATE canonical_records SET validation_status = $1, updated_at = $2 WHERE id = $3`

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		for _, o := range outcomes {
			errs, err := json.Marshal(o.Errors)
			if err != nil {
				return struct{}{}, err
			}

			if _, err := tx.ExecContext(ctx, insert, o.ID, o.CanonicalRecordID, o.UTI, o.Status, errs, o.ValidatedAt); err != nil {
				return struct{}{}, err
			}
			if _, err := tx.ExecContext(ctx, update, o.Status, o.ValidatedAt, o.CanonicalRecordID); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *store) OutcomesFor(ctx context.Context, uti string) ([]Outcome, error) {
	const q = `
		SELECT id, canonical_record_id, uti, status, errors, validated_at
		FROM validation_outcomes
		WHERE uti = $1
		ORDER BY validated_at ASC`

	outcomes, err := repository.QueryMany(ctx, s.db, q, []any{uti}, scanOutcome)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return outcomes, nil
}

func scanOutcome(s repository.Scanner) (Outcome, error) {
	var (
		o    Outcome
		errs []byte
	)

	err := s.Scan(&o.ID, &o.CanonicalRecordID, &o.UTI, &o.Status, &errs, &o.ValidatedAt)
	if err != nil {
		return o, err
	}

	if len(errs) > 0 {
		if err := json.Unmarshal(errs, &o.Errors); err != nil {
			return o, err
		}
	}
	return o, nil
}
