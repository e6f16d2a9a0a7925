package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_app/internal/core/ports/repositories"
	"github.com/SscSPs/exchange_rates_app/internal/models"
	"github.com/SscSPs/exchange_rates_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectExchangeRateColumns = `
	SELECT
		exchange_rate_id, rate_date, currency_code, currency_name,
		buy_rate, middle_rate, sell_rate, created_at, last_updated_at
	FROM exchange_rates`

// PgxExchangeRateRepository implements portsrepo.ExchangeRateRepositoryFacade using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// ExistsExchangeRate reports whether a rate with the natural key is stored.
func (r *PgxExchangeRateRepository) ExistsExchangeRate(ctx context.Context, key domain.RateKey) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM exchange_rates
			WHERE rate_date = $1 AND currency_code = $2 AND currency_name = $3
		)`,
		mapping.DateToTime(key.Date), key.CurrencyCode, key.CurrencyName,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check exchange rate existence", err)
	}
	return exists, nil
}

const insertExchangeRateSQL = `
	INSERT INTO exchange_rates (
		exchange_rate_id, rate_date, currency_code, currency_name,
		buy_rate, middle_rate, sell_rate, created_at, last_updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// insertExchangeRatesBatch queues one insert per rate, in order.
func insertExchangeRatesBatch(rates []domain.ExchangeRate) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, rate := range rates {
		m := mapping.ToModelExchangeRate(rate)
		batch.Queue(insertExchangeRateSQL,
			m.ExchangeRateID, m.RateDate, m.CurrencyCode, m.CurrencyName,
			m.BuyRate, m.MiddleRate, m.SellRate, m.CreatedAt, m.LastUpdatedAt,
		)
	}
	return batch
}

// InsertExchangeRates sends all inserts as one pipelined batch inside a single transaction.
func (r *PgxExchangeRateRepository) InsertExchangeRates(ctx context.Context, rates []domain.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	br := tx.SendBatch(ctx, insertExchangeRatesBatch(rates))
	for _, rate := range rates {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: exchange rate %s", apperrors.ErrDuplicate, rate.Key())
			}
			return apperrors.NewAppError(500, "failed to insert exchange rate "+rate.Key().String(), err)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert exchange rates", err)
	}

	return r.Commit(ctx, tx)
}

// FindExchangeRateByID retrieves an exchange rate by its ID.
func (r *PgxExchangeRateRepository) FindExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	row := r.Pool.QueryRow(ctx, selectExchangeRateColumns+` WHERE exchange_rate_id = $1`, rateID)

	m, err := scanExchangeRate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("exchange rate with ID " + rateID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to get exchange rate by ID", err)
	}

	rate := mapping.ToDomainExchangeRate(m)
	return &rate, nil
}

// ListExchangeRates returns one page of rates ordered by date, then currency code.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context, filter domain.ExchangeRateFilter) ([]domain.ExchangeRate, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.CurrencyCode != nil {
		where += fmt.Sprintf(" AND currency_code = $%d", argNum)
		args = append(args, *filter.CurrencyCode)
		argNum++
	}
	if filter.CurrencyName != nil {
		where += fmt.Sprintf(" AND currency_name = $%d", argNum)
		args = append(args, *filter.CurrencyName)
		argNum++
	}
	if filter.FromDate != nil {
		where += fmt.Sprintf(" AND rate_date >= $%d", argNum)
		args = append(args, mapping.DateToTime(*filter.FromDate))
		argNum++
	}
	if filter.ToDate != nil {
		where += fmt.Sprintf(" AND rate_date <= $%d", argNum)
		args = append(args, mapping.DateToTime(*filter.ToDate))
		argNum++
	}

	var total int
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM exchange_rates"+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count exchange rates", err)
	}
	start, end := filter.PageBounds(total)
	if start == end {
		return []domain.ExchangeRate{}, total, nil
	}

	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	query := selectExchangeRateColumns + where + fmt.Sprintf(" ORDER BY rate_date %s, currency_code, currency_name", direction)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, end-start, start)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		m, err := scanExchangeRate(rows)
		if err != nil {
			return nil, 0, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		rates = append(rates, mapping.ToDomainExchangeRate(m))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewAppError(500, "error iterating exchange rates", err)
	}

	return rates, total, nil
}

// UpdateExchangeRate replaces every mutable column of the rate with the same id.
func (r *PgxExchangeRateRepository) UpdateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)
	tag, err := r.Pool.Exec(ctx, `
		UPDATE exchange_rates
		SET rate_date = $1, currency_code = $2, currency_name = $3,
			buy_rate = $4, middle_rate = $5, sell_rate = $6, last_updated_at = $7
		WHERE exchange_rate_id = $8`,
		m.RateDate, m.CurrencyCode, m.CurrencyName,
		m.BuyRate, m.MiddleRate, m.SellRate, m.LastUpdatedAt, m.ExchangeRateID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: exchange rate %s", apperrors.ErrDuplicate, rate.Key())
		}
		return apperrors.NewAppError(500, "failed to update exchange rate", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("exchange rate with ID " + rate.ExchangeRateID + " not found")
	}
	return nil
}

// DeleteExchangeRate removes the rate with the given id.
func (r *PgxExchangeRateRepository) DeleteExchangeRate(ctx context.Context, rateID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM exchange_rates WHERE exchange_rate_id = $1`, rateID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete exchange rate", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("exchange rate with ID " + rateID + " not found")
	}
	return nil
}

func scanExchangeRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.ExchangeRateID, &m.RateDate, &m.CurrencyCode, &m.CurrencyName,
		&m.BuyRate, &m.MiddleRate, &m.SellRate, &m.CreatedAt, &m.LastUpdatedAt,
	)
	return m, err
}
