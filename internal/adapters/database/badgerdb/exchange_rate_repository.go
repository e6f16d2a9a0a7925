// Package badgerdb stores exchange rates in an embedded BadgerDB.
//
// Each rate is written under two keys in the same transaction:
//
//	rate:id:<id>                                 JSON-encoded record
//	rate:key:<date>|<len>:<code>|<len>:<name>    id of the record holding that natural key
//
// Currency code and name are length-prefixed so a "|" inside either cannot collide with another key.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_app/internal/core/ports/repositories"
	"github.com/SscSPs/exchange_rates_app/internal/models"
	"github.com/SscSPs/exchange_rates_app/internal/utils/mapping"
	"github.com/dgraph-io/badger/v3"
)

const (
	idPrefix  = "rate:id:"
	keyPrefix = "rate:key:"
)

func idKey(id string) []byte {
	return []byte(idPrefix + id)
}

func naturalKey(k domain.RateKey) []byte {
	return fmt.Appendf(nil, "%s%s|%d:%s|%d:%s", keyPrefix, k.Date, len(k.CurrencyCode), k.CurrencyCode, len(k.CurrencyName), k.CurrencyName)
}

// BadgerExchangeRateRepository implements portsrepo.ExchangeRateRepositoryFacade using BadgerDB
type BadgerExchangeRateRepository struct {
	db *badger.DB
}

// NewBadgerExchangeRateRepository creates a new BadgerDB exchange rate repository
func NewBadgerExchangeRateRepository(db *badger.DB) *BadgerExchangeRateRepository {
	return &BadgerExchangeRateRepository{db: db}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*BadgerExchangeRateRepository)(nil)

// ExistsExchangeRate reports whether a rate with the natural key is stored.
func (r *BadgerExchangeRateRepository) ExistsExchangeRate(_ context.Context, key domain.RateKey) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(naturalKey(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check exchange rate %s: %w", key, err)
	}
	return true, nil
}

// InsertExchangeRates stores the whole batch in one badger transaction.
func (r *BadgerExchangeRateRepository) InsertExchangeRates(_ context.Context, rates []domain.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, rate := range rates {
			nk := naturalKey(rate.Key())
			if _, err := txn.Get(nk); err == nil {
				return fmt.Errorf("%w: exchange rate %s", apperrors.ErrDuplicate, rate.Key())
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := putRate(txn, rate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert %d exchange rates: %w", len(rates), err)
	}
	return nil
}

// FindExchangeRateByID retrieves an exchange rate by its ID.
func (r *BadgerExchangeRateRepository) FindExchangeRateByID(_ context.Context, rateID string) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rate, err = getRate(txn, rateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// ListExchangeRates scans every record, filters, sorts by date then currency code, and pages.
func (r *BadgerExchangeRateRepository) ListExchangeRates(_ context.Context, filter domain.ExchangeRateFilter) ([]domain.ExchangeRate, int, error) {
	var matched []domain.ExchangeRate

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(idPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var m models.ExchangeRate
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
			rate := mapping.ToDomainExchangeRate(m)
			if filter.Matches(rate) {
				matched = append(matched, rate)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exchange rates: %w", err)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Date != b.Date {
			if filter.Ascending {
				return a.Date.Before(b.Date)
			}
			return a.Date.After(b.Date)
		}
		if a.CurrencyCode != b.CurrencyCode {
			return a.CurrencyCode < b.CurrencyCode
		}
		return a.CurrencyName < b.CurrencyName
	})

	total := len(matched)
	start, end := filter.PageBounds(total)
	page := make([]domain.ExchangeRate, end-start)
	copy(page, matched[start:end])
	return page, total, nil
}

// UpdateExchangeRate replaces the stored rate with the same id, moving its natural key index if needed.
func (r *BadgerExchangeRateRepository) UpdateExchangeRate(_ context.Context, rate domain.ExchangeRate) error {
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := getRate(txn, rate.ExchangeRateID)
		if err != nil {
			return err
		}

		if existing.Key() != rate.Key() {
			if _, err := txn.Get(naturalKey(rate.Key())); err == nil {
				return fmt.Errorf("%w: exchange rate %s", apperrors.ErrDuplicate, rate.Key())
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Delete(naturalKey(existing.Key())); err != nil {
				return err
			}
		}

		return putRate(txn, rate)
	})
}

// DeleteExchangeRate removes the record and its natural key index.
func (r *BadgerExchangeRateRepository) DeleteExchangeRate(_ context.Context, rateID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := getRate(txn, rateID)
		if err != nil {
			return err
		}
		if err := txn.Delete(naturalKey(existing.Key())); err != nil {
			return err
		}
		return txn.Delete(idKey(rateID))
	})
}

func putRate(txn *badger.Txn, rate domain.ExchangeRate) error {
	data, err := json.Marshal(mapping.ToModelExchangeRate(rate))
	if err != nil {
		return fmt.Errorf("failed to marshal exchange rate: %w", err)
	}
	if err := txn.Set(idKey(rate.ExchangeRateID), data); err != nil {
		return err
	}
	return txn.Set(naturalKey(rate.Key()), []byte(rate.ExchangeRateID))
}

func getRate(txn *badger.Txn, rateID string) (domain.ExchangeRate, error) {
	item, err := txn.Get(idKey(rateID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ExchangeRate{}, apperrors.NewNotFoundError("exchange rate with ID " + rateID + " not found")
	}
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	var m models.ExchangeRate
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &m)
	}); err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("failed to decode exchange rate %s: %w", rateID, err)
	}
	return mapping.ToDomainExchangeRate(m), nil
}
