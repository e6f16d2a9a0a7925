package pgsql

import (
	"context"

	portsrepo "github.com/SscSPs/exchange_rates_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres-backed repositories. Close releases the pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExchangeRateRepo: NewPgxExchangeRateRepository(dbPool),
		Close: func(context.Context) error {
			dbPool.Close()
			return nil
		},
	}
}
