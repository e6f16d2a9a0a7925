package services_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_rates_app/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_app/internal/core/services"
	"github.com/SscSPs/exchange_rates_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) ExistsExchangeRate(ctx context.Context, key domain.RateKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockExchangeRateRepository) FindExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, rateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, filter domain.ExchangeRateFilter) ([]domain.ExchangeRate, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Int(1), args.Error(2)
}

func (m *MockExchangeRateRepository) InsertExchangeRates(ctx context.Context, rates []domain.ExchangeRate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) UpdateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) DeleteExchangeRate(ctx context.Context, rateID string) error {
	args := m.Called(ctx, rateID)
	return args.Error(0)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo)
}

func validRequest() dto.CreateExchangeRateRequest {
	return dto.CreateExchangeRateRequest{
		Date:         "10.06.2025.",
		CurrencyCode: "840",
		CurrencyName: "USD",
		BuyRate:      decimal.RequireFromString("1.1384"),
		MiddleRate:   decimal.RequireFromString("1.1367"),
		SellRate:     decimal.RequireFromString("1.1350"),
	}
}

const (
	rateOneID = "3f1c2a9e-5b7d-4c1e-9a8f-2d6b0e4c7a11"
	missingID = "9b2e7c44-0d1a-4f63-8e55-7a1c3b9d2f08"
)

var usdKey = domain.RateKey{Date: civil.Date{Year: 2025, Month: 6, Day: 10}, CurrencyCode: "840", CurrencyName: "USD"}

// --- Test Cases ---

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Success() {
	ctx := context.Background()
	suite.mockRateRepo.On("ExistsExchangeRate", ctx, usdKey).Return(false, nil).Once()
	suite.mockRateRepo.On("InsertExchangeRates", ctx, mock.MatchedBy(func(rates []domain.ExchangeRate) bool {
		return len(rates) == 1 && rates[0].Key() == usdKey && rates[0].ExchangeRateID != ""
	})).Return(nil).Once()

	rate, err := suite.service.CreateExchangeRate(ctx, validRequest())

	suite.Require().NoError(err)
	suite.Require().NotNil(rate)
	_, parseErr := uuid.Parse(rate.ExchangeRateID)
	suite.NoError(parseErr)
	suite.Equal(usdKey, rate.Key())
	suite.True(rate.MiddleRate.Equal(decimal.RequireFromString("1.1367")))
	suite.False(rate.CreatedAt.IsZero())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_BadDate() {
	req := validRequest()
	req.Date = "2025-06-10"

	rate, err := suite.service.CreateExchangeRate(context.Background(), req)

	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "InsertExchangeRates", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_NonPositiveRate() {
	req := validRequest()
	req.SellRate = decimal.Zero

	rate, err := suite.service.CreateExchangeRate(context.Background(), req)

	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "sell rate must be positive")
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Duplicate() {
	ctx := context.Background()
	suite.mockRateRepo.On("ExistsExchangeRate", ctx, usdKey).Return(true, nil).Once()

	rate, err := suite.service.CreateExchangeRate(ctx, validRequest())

	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	var appErr *apperrors.AppError
	suite.Require().True(errors.As(err, &appErr))
	suite.Equal(409, appErr.Code)
}

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_BuildsFilter() {
	ctx := context.Background()
	from := civil.Date{Year: 2025, Month: 6, Day: 1}
	to := civil.Date{Year: 2025, Month: 6, Day: 10}
	code := "840"
	expected := domain.ExchangeRateFilter{
		CurrencyCode: &code,
		FromDate:     &from,
		ToDate:       &to,
		Ascending:    true,
		Limit:        5,
		Offset:       5,
	}
	stored := []domain.ExchangeRate{{ExchangeRateID: "a"}}
	suite.mockRateRepo.On("ListExchangeRates", ctx, expected).Return(stored, 6, nil).Once()

	rates, total, err := suite.service.ListExchangeRates(ctx, dto.ListExchangeRatesParams{
		CurrencyCode: "840",
		FromDate:     "01.06.2025.",
		ToDate:       "10.06.2025.",
		Page:         2,
		PageSize:     5,
		Sort:         "asc",
	})

	suite.Require().NoError(err)
	suite.Equal(stored, rates)
	suite.Equal(6, total)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_Defaults() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListExchangeRates", ctx, domain.ExchangeRateFilter{Limit: 10}).Return([]domain.ExchangeRate{}, 0, nil).Once()

	rates, total, err := suite.service.ListExchangeRates(ctx, dto.ListExchangeRatesParams{})

	suite.Require().NoError(err)
	suite.Empty(rates)
	suite.Zero(total)
}

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_HugePageKeepsOffsetPositive() {
	ctx := context.Background()
	expected := domain.ExchangeRateFilter{Limit: 100, Offset: math.MaxInt}
	suite.mockRateRepo.On("ListExchangeRates", ctx, expected).Return([]domain.ExchangeRate{}, 4, nil).Once()

	rates, total, err := suite.service.ListExchangeRates(ctx, dto.ListExchangeRatesParams{Page: 100000000000000000, PageSize: 100})

	suite.Require().NoError(err)
	suite.Empty(rates)
	suite.Equal(4, total)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_InvertedRange() {
	_, _, err := suite.service.ListExchangeRates(context.Background(), dto.ListExchangeRatesParams{
		FromDate: "10.06.2025.",
		ToDate:   "01.06.2025.",
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExchangeRateServiceTestSuite) TestGetExchangeRateByID_NotFound() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindExchangeRateByID", ctx, missingID).Return(nil, apperrors.NewNotFoundError("exchange rate missing")).Once()

	rate, err := suite.service.GetExchangeRateByID(ctx, missingID)

	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestMalformedIDsAreNotFound() {
	ctx := context.Background()
	for _, id := range []string{"42", "", "rate-1", "3f1c2a9e-5b7d-4c1e-9a8f"} {
		rate, err := suite.service.GetExchangeRateByID(ctx, id)
		suite.Nil(rate)
		suite.ErrorIs(err, apperrors.ErrNotFound, id)

		rate, err = suite.service.UpdateExchangeRate(ctx, id, validRequest())
		suite.Nil(rate)
		suite.ErrorIs(err, apperrors.ErrNotFound, id)

		suite.ErrorIs(suite.service.DeleteExchangeRate(ctx, id), apperrors.ErrNotFound, id)
	}

	var appErr *apperrors.AppError
	suite.Require().ErrorAs(suite.service.DeleteExchangeRate(ctx, "42"), &appErr)
	suite.Equal(404, appErr.Code)

	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindExchangeRateByID", mock.Anything, mock.Anything)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpdateExchangeRate", mock.Anything, mock.Anything)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "DeleteExchangeRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestUpdateExchangeRate_KeepsIdentity() {
	ctx := context.Background()
	existing := &domain.ExchangeRate{ExchangeRateID: rateOneID, Date: usdKey.Date, CurrencyCode: "840", CurrencyName: "USD"}
	existing.CreatedAt = time.Date(2025, 6, 10, 16, 31, 0, 0, time.UTC)
	suite.mockRateRepo.On("FindExchangeRateByID", ctx, rateOneID).Return(existing, nil).Once()
	suite.mockRateRepo.On("UpdateExchangeRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.ExchangeRateID == rateOneID && r.CreatedAt.Equal(existing.CreatedAt)
	})).Return(nil).Once()

	rate, err := suite.service.UpdateExchangeRate(ctx, rateOneID, validRequest())

	suite.Require().NoError(err)
	suite.Equal(rateOneID, rate.ExchangeRateID)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "ExistsExchangeRate", mock.Anything, mock.Anything)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestUpdateExchangeRate_KeyCollision() {
	ctx := context.Background()
	existing := &domain.ExchangeRate{ExchangeRateID: rateOneID, Date: usdKey.Date, CurrencyCode: "392", CurrencyName: "JPY"}
	suite.mockRateRepo.On("FindExchangeRateByID", ctx, rateOneID).Return(existing, nil).Once()
	suite.mockRateRepo.On("ExistsExchangeRate", ctx, usdKey).Return(true, nil).Once()

	rate, err := suite.service.UpdateExchangeRate(ctx, rateOneID, validRequest())

	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpdateExchangeRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestDeleteExchangeRate() {
	ctx := context.Background()
	suite.mockRateRepo.On("DeleteExchangeRate", ctx, rateOneID).Return(nil).Once()
	suite.mockRateRepo.On("DeleteExchangeRate", ctx, missingID).Return(apperrors.NewNotFoundError("exchange rate missing")).Once()

	suite.NoError(suite.service.DeleteExchangeRate(ctx, rateOneID))
	suite.ErrorIs(suite.service.DeleteExchangeRate(ctx, missingID), apperrors.ErrNotFound)
}

// --- Run Test Suite ---
func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
