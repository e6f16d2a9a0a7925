package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_app/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// ExistsFunc reports whether a natural key is already stored.
type ExistsFunc func(ctx context.Context, key domain.RateKey) (bool, error)

// Reconciler decides which canonical rates are new and commits them as one batch.
type Reconciler struct {
	store portsrepo.RateSyncStore
	now   func() time.Time
}

// NewReconciler creates a Reconciler backed by the given store gateway.
func NewReconciler(store portsrepo.RateSyncStore) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

// Reconcile returns the candidates whose natural key is not stored yet, in input order.
// Repeated keys within the batch are kept once. New rates get a fresh id and audit timestamps.
// Nothing is written; the result is staged until Commit.
func (r *Reconciler) Reconcile(ctx context.Context, candidates []domain.ExchangeRate, exists ExistsFunc) ([]domain.ExchangeRate, error) {
	if exists == nil {
		exists = r.store.ExistsExchangeRate
	}

	seen := make(map[domain.RateKey]struct{}, len(candidates))
	fresh := make([]domain.ExchangeRate, 0, len(candidates))
	now := r.now().UTC()

	for _, c := range candidates {
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		found, err := exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup %s: %w", apperrors.ErrPersistence, key, err)
		}
		if found {
			continue
		}

		c.ExchangeRateID = uuid.NewString()
		c.CreatedAt = now
		c.LastUpdatedAt = now
		fresh = append(fresh, c)
	}

	return fresh, nil
}

// Commit writes all staged rates in one store transaction. An empty batch is a no-op.
func (r *Reconciler) Commit(ctx context.Context, rates []domain.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}
	if err := r.store.InsertExchangeRates(ctx, rates); err != nil {
		return fmt.Errorf("%w: commit %d rates: %w", apperrors.ErrPersistence, len(rates), err)
	}
	return nil
}
