package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
	"github.com/SscSPs/exchange_rates_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(t *testing.T, day civil.Date) []domain.ExchangeRate {
	t.Helper()
	rates, err := normalize.ExchangeRates(dailyBatch(day))
	require.NoError(t, err)
	return rates
}

func TestReconcile_ReturnsOnlyAbsentKeys(t *testing.T) {
	ctx := context.Background()
	day := civil.Date{Year: 2025, Month: 6, Day: 9}
	store := newMemoryStore()
	r := services.NewReconciler(store)

	all := candidates(t, day)
	require.NoError(t, store.InsertExchangeRates(ctx, all[:1]))

	fresh, err := r.Reconcile(ctx, all, nil)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "JPY", fresh[0].CurrencyName)
	assert.Equal(t, "CHF", fresh[1].CurrencyName)
	for _, f := range fresh {
		assert.NotEmpty(t, f.ExchangeRateID)
		assert.False(t, f.CreatedAt.IsZero())
	}

	// Nothing is written until Commit.
	assert.Equal(t, 1, store.count())
}

func TestReconcile_DropsInBatchDuplicates(t *testing.T) {
	ctx := context.Background()
	day := civil.Date{Year: 2025, Month: 6, Day: 9}
	r := services.NewReconciler(newMemoryStore())

	all := candidates(t, day)
	doubled := append(append([]domain.ExchangeRate{}, all...), all...)

	fresh, err := r.Reconcile(ctx, doubled, nil)
	require.NoError(t, err)
	assert.Len(t, fresh, len(all))
}

func TestReconcile_UsesGivenLookup(t *testing.T) {
	ctx := context.Background()
	day := civil.Date{Year: 2025, Month: 6, Day: 9}
	r := services.NewReconciler(newMemoryStore())

	var asked []domain.RateKey
	exists := func(_ context.Context, key domain.RateKey) (bool, error) {
		asked = append(asked, key)
		return key.CurrencyName == "USD", nil
	}

	fresh, err := r.Reconcile(ctx, candidates(t, day), exists)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Len(t, asked, 3)
}

func TestReconcile_LookupFailureIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.existsErr = errors.New("connection reset")
	r := services.NewReconciler(store)

	fresh, err := r.Reconcile(ctx, candidates(t, civil.Date{Year: 2025, Month: 6, Day: 9}), nil)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Nil(t, fresh)
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	day := civil.Date{Year: 2025, Month: 6, Day: 9}
	store := newMemoryStore()
	r := services.NewReconciler(store)

	require.NoError(t, r.Commit(ctx, nil))
	assert.Equal(t, 0, store.insertCalls, "empty batch must not reach the store")

	fresh, err := r.Reconcile(ctx, candidates(t, day), nil)
	require.NoError(t, err)
	require.NoError(t, r.Commit(ctx, fresh))
	assert.Equal(t, 3, store.count())

	// A duplicate in the batch rejects the whole commit.
	err = r.Commit(ctx, fresh)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Equal(t, 3, store.count())
}

func TestCommit_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.insertErr = errors.New("disk full")
	r := services.NewReconciler(store)

	err := r.Commit(ctx, []domain.ExchangeRate{{CurrencyCode: "840", CurrencyName: "USD", Date: civil.DateOf(time.Now())}})
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
}
