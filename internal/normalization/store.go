package normalization

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/repository"
)

type store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates the PostgreSQL-backed canonical record store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &store{
		db:     db,
		logger: logger.With("store", "canonical_records"),
	}
}

func (s *store) CreateBatch(ctx context.Context, recs []records.CanonicalRecord) error {
	const q = `
		INSERT INTO canonical_records(
			id, uti, reporting_counterparty_lei, other_counterparty_lei,
			action_type, asset_class, effective_date, termination_date,
			notional_amount, notional_currency, price, price_currency,
			processing_errors, processing_status, validation_status,
			raw_record_id, report_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		for _, rec := range recs {
			errs, err := json.Marshal(rec.ProcessingErrors)
			if err != nil {
				return struct{}{}, err
			}

			_, err = tx.ExecContext(ctx, q,
				rec.ID, rec.UTI, rec.ReportingCounterpartyLEI, rec.OtherCounterpartyLEI,
				rec.ActionType, rec.AssetClass, rec.EffectiveDate, rec.TerminationDate,
				rec.NotionalAmount, rec.NotionalCurrency, rec.Price, rec.PriceCurrency,
				errs, rec.ProcessingStatus, rec.ValidationStatus,
				rec.RawRecordID, rec.ReportID, rec.CreatedAt, rec.UpdatedAt)
			if err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicateUTI)
}

func (s *store) FindByUTI(ctx context.Context, uti string) (*records.CanonicalRecord, error) {
	const q = selectCanonical + ` WHERE uti = $1`

	rec, err := repository.QueryOne(ctx, s.db, q, []any{uti}, ScanCanonical)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicateUTI)
	}
	return &rec, nil
}

const selectCanonical = `
	SELECT id, uti, reporting_counterparty_lei, other_counterparty_lei,
		action_type, asset_class, effective_date, termination_date,
		notional_amount, notional_currency, price, price_currency,
		processing_errors, processing_status, validation_status,
		raw_record_id, report_id, created_at, updated_at
	FROM canonical_records`

// ScanCanonical scans one canonical record row in selectCanonical column
// order. Shared with the validation and report generation stores, which
// read the same table.
func ScanCanonical(s repository.Scanner) (records.CanonicalRecord, error) {
	var (
		rec  records.CanonicalRecord
		errs []byte
	)

	err := s.Scan(
		&rec.ID, &rec.UTI, &rec.ReportingCounterpartyLEI, &rec.OtherCounterpartyLEI,
		&rec.ActionType, &rec.AssetClass, &rec.EffectiveDate, &rec.TerminationDate,
		&rec.NotionalAmount, &rec.NotionalCurrency, &rec.Price, &rec.PriceCurrency,
		&errs, &rec.ProcessingStatus, &rec.ValidationStatus,
		&rec.RawRecordID, &rec.ReportID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return rec, err
	}

	if len(errs) > 0 {
		if err := json.Unmarshal(errs, &rec.ProcessingErrors); err != nil {
			return rec, err
		}
	}
	return rec, nil
}
