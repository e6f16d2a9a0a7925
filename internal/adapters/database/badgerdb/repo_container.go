package badgerdb

import (
	"context"

	portsrepo "github.com/SscSPs/exchange_rates_app/internal/core/ports/repositories"
	"github.com/dgraph-io/badger/v3"
)

// NewRepositoryProvider wires the badger-backed repositories. Close closes the database.
func NewRepositoryProvider(db *badger.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExchangeRateRepo: NewBadgerExchangeRateRepository(db),
		Close: func(context.Context) error {
			return db.Close()
		},
	}
}
