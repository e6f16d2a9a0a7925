package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
	portsrepo "github.com/SscSPs/exchange_rates_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_app/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_app/internal/dto"
	"github.com/SscSPs/exchange_rates_app/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// exchangeRateService provides business logic for stored exchange rates.
type exchangeRateService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateRepositoryFacade
	now      func() time.Time
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo: rateRepo,
		now:      time.Now,
	}
}

// Ensure exchangeRateService implements the ExchangeRateSvcFacade interface
var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// GetExchangeRateByID retrieves a stored rate.
func (s *exchangeRateService) GetExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	if err := checkRateID(rateID); err != nil {
		return nil, err
	}
	rate, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate %s: %w", rateID, err)
	}
	return rate, nil
}

// ListExchangeRates applies filters, sorting by date (descending unless sort=asc) and paging.
func (s *exchangeRateService) ListExchangeRates(ctx context.Context, req dto.ListExchangeRatesParams) ([]domain.ExchangeRate, int, error) {
	page := pagination.New(req.Page, req.PageSize)
	filter := domain.ExchangeRateFilter{
		Ascending: strings.EqualFold(req.Sort, "asc"),
		Limit:     page.Limit(),
		Offset:    page.Offset(),
	}

	if code := strings.TrimSpace(req.CurrencyCode); code != "" {
		filter.CurrencyCode = &code
	}
	if name := strings.TrimSpace(req.CurrencyName); name != "" {
		filter.CurrencyName = &name
	}
	if req.FromDate != "" {
		from, err := normalize.ParseDate(req.FromDate, normalize.APIDateLayout)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: fromDate: %w", apperrors.ErrValidation, err)
		}
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, err := normalize.ParseDate(req.ToDate, normalize.APIDateLayout)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: toDate: %w", apperrors.ErrValidation, err)
		}
		filter.ToDate = &to
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, 0, fmt.Errorf("%w: fromDate is after toDate", apperrors.ErrValidation)
	}

	rates, total, err := s.rateRepo.ListExchangeRates(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, total, nil
}

// CreateExchangeRate handles the creation of a new exchange rate.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest) (*domain.ExchangeRate, error) {
	rate, err := rateFromRequest(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.rateRepo.ExistsExchangeRate(ctx, rate.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to check exchange rate %s: %w", rate.Key(), err)
	}
	if exists {
		s.LogWarn(ctx, "Rejected duplicate exchange rate", slog.String("key", rate.Key().String()))
		return nil, apperrors.NewDuplicateError(fmt.Sprintf("exchange rate for %s already exists", rate.Key()))
	}

	now := s.now().UTC()
	rate.ExchangeRateID = uuid.NewString()
	rate.CreatedAt = now
	rate.LastUpdatedAt = now

	if err := s.rateRepo.InsertExchangeRates(ctx, []domain.ExchangeRate{rate}); err != nil {
		return nil, fmt.Errorf("failed to create exchange rate: %w", err)
	}

	s.LogInfo(ctx, "Exchange rate created", slog.String("rate_id", rate.ExchangeRateID), slog.String("key", rate.Key().String()))
	return &rate, nil
}

// UpdateExchangeRate replaces the date, currency and rate fields of an existing rate.
func (s *exchangeRateService) UpdateExchangeRate(ctx context.Context, rateID string, req dto.CreateExchangeRateRequest) (*domain.ExchangeRate, error) {
	if err := checkRateID(rateID); err != nil {
		return nil, err
	}
	existing, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate %s: %w", rateID, err)
	}

	updated, err := rateFromRequest(req)
	if err != nil {
		return nil, err
	}

	if updated.Key() != existing.Key() {
		exists, err := s.rateRepo.ExistsExchangeRate(ctx, updated.Key())
		if err != nil {
			return nil, fmt.Errorf("failed to check exchange rate %s: %w", updated.Key(), err)
		}
		if exists {
			return nil, apperrors.NewDuplicateError(fmt.Sprintf("exchange rate for %s already exists", updated.Key()))
		}
	}

	updated.ExchangeRateID = existing.ExchangeRateID
	updated.CreatedAt = existing.CreatedAt
	updated.LastUpdatedAt = s.now().UTC()

	if err := s.rateRepo.UpdateExchangeRate(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update exchange rate %s: %w", rateID, err)
	}
	return &updated, nil
}

// DeleteExchangeRate removes a rate.
func (s *exchangeRateService) DeleteExchangeRate(ctx context.Context, rateID string) error {
	if err := checkRateID(rateID); err != nil {
		return err
	}
	if err := s.rateRepo.DeleteExchangeRate(ctx, rateID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete exchange rate", slog.String("rate_id", rateID))
		}
		return fmt.Errorf("failed to delete exchange rate %s: %w", rateID, err)
	}
	return nil
}

// checkRateID rejects ids that cannot name a stored rate. Ids are always uuids.
func checkRateID(rateID string) error {
	if _, err := uuid.Parse(rateID); err != nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("exchange rate with ID %q not found", rateID))
	}
	return nil
}

// rateFromRequest validates the request and builds a rate without id or audit fields.
func rateFromRequest(req dto.CreateExchangeRateRequest) (domain.ExchangeRate, error) {
	date, err := normalize.ParseDate(req.Date, normalize.APIDateLayout)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("%w: date: %w", apperrors.ErrValidation, err)
	}

	code := strings.TrimSpace(req.CurrencyCode)
	name := strings.TrimSpace(req.CurrencyName)
	if code == "" || name == "" {
		return domain.ExchangeRate{}, fmt.Errorf("%w: currency code and name are required", apperrors.ErrValidation)
	}

	rates := []struct {
		label string
		value decimal.Decimal
	}{{"buy", req.BuyRate}, {"middle", req.MiddleRate}, {"sell", req.SellRate}}
	for _, r := range rates {
		if r.value.LessThanOrEqual(decimal.Zero) {
			return domain.ExchangeRate{}, fmt.Errorf("%w: %s rate must be positive", apperrors.ErrValidation, r.label)
		}
	}

	return domain.ExchangeRate{
		Date:         date,
		CurrencyCode: code,
		CurrencyName: name,
		BuyRate:      req.BuyRate,
		MiddleRate:   req.MiddleRate,
		SellRate:     req.SellRate,
	}, nil
}
