package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
)

// memoryStore is an in-memory RateSyncStore enforcing the natural key constraint.
type memoryStore struct {
	mu          sync.Mutex
	rates       map[domain.RateKey]domain.ExchangeRate
	insertErr   error
	existsErr   error
	insertCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rates: make(map[domain.RateKey]domain.ExchangeRate)}
}

func (s *memoryStore) ExistsExchangeRate(_ context.Context, key domain.RateKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.rates[key]
	return ok, nil
}

func (s *memoryStore) InsertExchangeRates(_ context.Context, rates []domain.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, r := range rates {
		if _, ok := s.rates[r.Key()]; ok {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, r.Key())
		}
	}
	for _, r := range rates {
		s.rates[r.Key()] = r
	}
	return nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rates)
}

// snapshot returns the stored rates without ids or audit fields, sorted by key.
func (s *memoryStore) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rates))
	for k, r := range s.rates {
		out = append(out, fmt.Sprintf("%s buy=%s mid=%s sell=%s", k, r.BuyRate, r.MiddleRate, r.SellRate))
	}
	sort.Strings(out)
	return out
}

// feedFetcher serves upstream records by applicable date.
type feedFetcher struct {
	mu         sync.Mutex
	byDate     map[civil.Date][]domain.UpstreamRate
	err        error
	dayCalls   []civil.Date
	rangeCalls []domain.SyncWindow

	// before runs at the start of every fetch, while the cycle lock is held.
	before func(ctx context.Context)
}

func newFeedFetcher() *feedFetcher {
	return &feedFetcher{byDate: make(map[civil.Date][]domain.UpstreamRate)}
}

func (f *feedFetcher) publish(day civil.Date, records ...domain.UpstreamRate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byDate[day] = append(f.byDate[day], records...)
}

func (f *feedFetcher) FetchDay(ctx context.Context, day civil.Date) ([]domain.UpstreamRate, error) {
	if f.before != nil {
		f.before(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dayCalls = append(f.dayCalls, day)
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.UpstreamRate(nil), f.byDate[day]...), nil
}

func (f *feedFetcher) FetchRange(ctx context.Context, from, to civil.Date) ([]domain.UpstreamRate, error) {
	if f.before != nil {
		f.before(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rangeCalls = append(f.rangeCalls, domain.SyncWindow{From: from, To: to})
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.UpstreamRate
	for d := from; !d.After(to); d = d.AddDays(1) {
		out = append(out, f.byDate[d]...)
	}
	return out, nil
}

// dailyBatch builds the usual three-currency upstream batch for a day.
func dailyBatch(day civil.Date) []domain.UpstreamRate {
	date := normalize.FormatDate(day, normalize.UpstreamDateLayout)
	return []domain.UpstreamRate{
		{BatchNumber: "1", ApplicableDate: date, Country: "SAD", CountryISO: "USA", CurrencyCode: "840", CurrencyName: "USD", BuyRate: "1,1384", MiddleRate: "1,1367", SellRate: "1,1350"},
		{BatchNumber: "1", ApplicableDate: date, Country: "Japan", CountryISO: "JPN", CurrencyCode: "392", CurrencyName: "JPY", BuyRate: "164,35", MiddleRate: "164,12", SellRate: "163,89"},
		{BatchNumber: "1", ApplicableDate: date, Country: "Švicarska", CountryISO: "CHE", CurrencyCode: "756", CurrencyName: "CHF", BuyRate: "0,9386", MiddleRate: "0,9372", SellRate: "0,9358"},
	}
}
