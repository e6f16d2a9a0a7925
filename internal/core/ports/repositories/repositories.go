package repositories

import "context"

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	ExchangeRateRepo ExchangeRateRepositoryFacade

	// Close releases the underlying storage engine.
	Close func(ctx context.Context) error
}
