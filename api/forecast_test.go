package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockForecastUseCase struct {
	mock.Mock
}

func (m *MockForecastUseCase) Predict(ctx context.Context, origin, destination string, targetDate time.Time, tripType domain.TripType) (*domain.Prediction, error) {
	args := m.Called(ctx, origin, destination, targetDate, tripType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prediction), args.Error(1)
}

func (m *MockForecastUseCase) PredictRange(ctx context.Context, origin, destination string, start, end time.Time, tripType domain.TripType) ([]domain.Prediction, error) {
	args := m.Called(ctx, origin, destination, start, end, tripType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Prediction), args.Error(1)
}

func (m *MockForecastUseCase) PriceTrend(ctx context.Context, origin, destination string, tripType domain.TripType, daysAhead int) (*domain.PriceTrend, error) {
	args := m.Called(ctx, origin, destination, tripType, daysAhead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceTrend), args.Error(1)
}

func getRequest(target string) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", target, nil)
	return w, c
}

func TestForecastHandler_predict(t *testing.T) {
	mockService := &MockForecastUseCase{}
	handler := NewForecastHandler(mockService)

	w, c := getRequest("/predict?origin=TYO&destination=SPK&date=2025-07-15")

	date := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	prediction := &domain.Prediction{Date: date, PredictedPrice: 9800, MinPrice: 8330, MaxPrice: 11270, Confidence: domain.ConfidenceHigh}
	mockService.On("Predict", c.Request.Context(), "TYO", "SPK", date, domain.TripRoundTrip).Return(prediction, nil)

	handler.predict(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestForecastHandler_predict_NoData(t *testing.T) {
	mockService := &MockForecastUseCase{}
	handler := NewForecastHandler(mockService)

	w, c := getRequest("/predict?origin=TYO&destination=SPK&date=2025-07-15")

	mockService.On("Predict", c.Request.Context(), "TYO", "SPK", mock.Anything, domain.TripRoundTrip).Return(nil, nil)

	handler.predict(c)

	// insufficient data still answers 200 with a null prediction
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"prediction":null`)
}

func TestForecastHandler_predict_MissingRoute(t *testing.T) {
	mockService := &MockForecastUseCase{}
	handler := NewForecastHandler(mockService)

	w, c := getRequest("/predict?origin=TYO&date=2025-07-15")

	handler.predict(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestForecastHandler_predictRange(t *testing.T) {
	mockService := &MockForecastUseCase{}
	handler := NewForecastHandler(mockService)

	w, c := getRequest("/predict/range?origin=TYO&destination=SPK&start=2025-07-01&end=2025-07-05")

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)
	mockService.On("PredictRange", c.Request.Context(), "TYO", "SPK", start, end, domain.TripRoundTrip).
		Return([]domain.Prediction{{Date: start, PredictedPrice: 9000}}, nil)

	handler.predictRange(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestForecastHandler_predictRange_InvalidRange(t *testing.T) {
	mockService := &MockForecastUseCase{}
	handler := NewForecastHandler(mockService)

	w, c := getRequest("/predict/range?origin=TYO&destination=SPK&start=2025-07-05&end=2025-07-01")

	handler.predictRange(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "PredictRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestForecastHandler_trend(t *testing.T) {
	mockService := &MockForecastUseCase{}
	handler := NewForecastHandler(mockService)

	w, c := getRequest("/predict/trend?origin=TYO&destination=SPK&days_ahead=14")

	mockService.On("PriceTrend", c.Request.Context(), "TYO", "SPK", domain.TripRoundTrip, 14).
		Return(&domain.PriceTrend{Trend: domain.TrendIncreasing, ChangePercent: 7.5}, nil)

	handler.trend(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "increasing")
	mockService.AssertExpectations(t)
}
