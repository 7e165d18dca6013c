package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/Domenick1991/farecast/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPriceRepo struct {
	mock.Mock
}

func (m *MockPriceRepo) GetPriceRecords(ctx context.Context, origin, destination string, dateRange domain.DateRange, tripType domain.TripType, travelClass domain.TravelClass) ([]domain.FlightPriceRecord, error) {
	args := m.Called(ctx, origin, destination, dateRange, tripType, travelClass)
	return args.Get(0).([]domain.FlightPriceRecord), args.Error(1)
}

func (m *MockPriceRepo) GetDailyAggregates(ctx context.Context, origin, destination string, dateRange domain.DateRange, tripType domain.TripType, travelClass domain.TravelClass) ([]domain.DailyAggregate, error) {
	args := m.Called(ctx, origin, destination, dateRange, tripType, travelClass)
	return args.Get(0).([]domain.DailyAggregate), args.Error(1)
}

func (m *MockPriceRepo) InsertRecords(ctx context.Context, origin, destination string, records []domain.FlightPriceRecord) (int, error) {
	args := m.Called(ctx, origin, destination, records)
	return args.Int(0), args.Error(1)
}

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestService(repo *MockPriceRepo) *ForecastService {
	return &ForecastService{
		repo:   repo,
		models: NewModelCache(),
		folds:  2,
		log:    logger.Nop{},
		now:    func() time.Time { return testNow },
	}
}

func constantPriceRecords(n int, price int64) []domain.FlightPriceRecord {
	records := make([]domain.FlightPriceRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, domain.FlightPriceRecord{
			DepartureDate: testNow.AddDate(0, 0, i),
			CreatedAt:     testNow,
			Price:         price,
			TripType:      domain.TripRoundTrip,
			TravelClass:   domain.ClassEconomy,
		})
	}
	return records
}

func TestForecastService_Predict_NoData(t *testing.T) {
	mockRepo := &MockPriceRepo{}
	mockRepo.On("GetPriceRecords", mock.Anything, "TYO", "SPK", mock.Anything, domain.TripRoundTrip, domain.ClassEconomy).
		Return([]domain.FlightPriceRecord{}, nil)

	service := newTestService(mockRepo)
	prediction, err := service.Predict(context.Background(), "TYO", "SPK", testNow.AddDate(0, 0, 10), domain.TripRoundTrip)

	// nil means insufficient data, not an error
	assert.NoError(t, err)
	assert.Nil(t, prediction)
	mockRepo.AssertExpectations(t)
}

func TestForecastService_Predict_ConstantPrices(t *testing.T) {
	mockRepo := &MockPriceRepo{}
	mockRepo.On("GetPriceRecords", mock.Anything, "TYO", "SPK", mock.Anything, domain.TripRoundTrip, domain.ClassEconomy).
		Return(constantPriceRecords(30, 10000), nil)

	service := newTestService(mockRepo)
	prediction, err := service.Predict(context.Background(), "TYO", "SPK", testNow.AddDate(0, 0, 10), domain.TripRoundTrip)

	assert.NoError(t, err)
	if assert.NotNil(t, prediction) {
		assert.Equal(t, int64(10000), prediction.PredictedPrice)
		assert.Equal(t, domain.ConfidenceHigh, prediction.Confidence)
		assert.Equal(t, int64(8500), prediction.MinPrice)
		assert.Equal(t, int64(11500), prediction.MaxPrice)
	}
}

func TestForecastService_Predict_ConfidenceBands(t *testing.T) {
	testCases := []struct {
		name       string
		leadDays   int
		confidence domain.Confidence
	}{
		{name: "near", leadDays: 10, confidence: domain.ConfidenceHigh},
		{name: "medium", leadDays: 45, confidence: domain.ConfidenceMedium},
		{name: "far", leadDays: 90, confidence: domain.ConfidenceLow},
	}

	mockRepo := &MockPriceRepo{}
	mockRepo.On("GetPriceRecords", mock.Anything, "TYO", "SPK", mock.Anything, domain.TripRoundTrip, domain.ClassEconomy).
		Return(constantPriceRecords(30, 10000), nil)
	service := newTestService(mockRepo)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prediction, err := service.Predict(context.Background(), "TYO", "SPK", testNow.AddDate(0, 0, tc.leadDays), domain.TripRoundTrip)

			assert.NoError(t, err)
			if assert.NotNil(t, prediction) {
				assert.Equal(t, tc.confidence, prediction.Confidence)
				assert.LessOrEqual(t, prediction.MinPrice, prediction.PredictedPrice)
				assert.LessOrEqual(t, prediction.PredictedPrice, prediction.MaxPrice)
			}
		})
	}
}

func TestForecastService_Predict_OneWayHalfPrice(t *testing.T) {
	mockRepo := &MockPriceRepo{}
	mockRepo.On("GetPriceRecords", mock.Anything, "TYO", "SPK", mock.Anything, domain.TripRoundTrip, domain.ClassEconomy).
		Return(constantPriceRecords(30, 10000), nil)

	service := newTestService(mockRepo)
	prediction, err := service.Predict(context.Background(), "TYO", "SPK", testNow.AddDate(0, 0, 10), domain.TripOneWay)

	assert.NoError(t, err)
	if assert.NotNil(t, prediction) {
		assert.Equal(t, int64(5000), prediction.PredictedPrice)
	}
}

func TestForecastService_Predict_TrainingInFlightSkips(t *testing.T) {
	mockRepo := &MockPriceRepo{}
	service := newTestService(mockRepo)

	// another request already holds the training slot for this route
	key := modelKey("TYO", "SPK", domain.TripRoundTrip)
	assert.True(t, service.models.beginTraining(key))

	prediction, err := service.Predict(context.Background(), "TYO", "SPK", testNow.AddDate(0, 0, 10), domain.TripRoundTrip)

	assert.NoError(t, err)
	assert.Nil(t, prediction)
	mockRepo.AssertNotCalled(t, "GetPriceRecords", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestForecastService_PredictRange(t *testing.T) {
	mockRepo := &MockPriceRepo{}
	mockRepo.On("GetPriceRecords", mock.Anything, "TYO", "SPK", mock.Anything, domain.TripRoundTrip, domain.ClassEconomy).
		Return(constantPriceRecords(30, 10000), nil)

	service := newTestService(mockRepo)
	start := testNow.AddDate(0, 0, 5)
	end := testNow.AddDate(0, 0, 9)
	predictions, err := service.PredictRange(context.Background(), "TYO", "SPK", start, end, domain.TripRoundTrip)

	assert.NoError(t, err)
	assert.Len(t, predictions, 5)
	for i, p := range predictions {
		assert.Equal(t, start.AddDate(0, 0, i), p.Date)
	}
	// the model is trained once and reused across the range
	mockRepo.AssertNumberOfCalls(t, "GetPriceRecords", 1)
}

func TestForecastService_PriceTrend_Stable(t *testing.T) {
	mockRepo := &MockPriceRepo{}
	mockRepo.On("GetPriceRecords", mock.Anything, "TYO", "SPK", mock.Anything, domain.TripRoundTrip, domain.ClassEconomy).
		Return(constantPriceRecords(30, 10000), nil)

	service := newTestService(mockRepo)
	trend, err := service.PriceTrend(context.Background(), "TYO", "SPK", domain.TripRoundTrip, 30)

	assert.NoError(t, err)
	if assert.NotNil(t, trend) {
		assert.Equal(t, domain.TrendStable, trend.Trend)
		assert.InDelta(t, 0, trend.ChangePercent, 0.01)
	}
}

func TestForecastService_PriceTrend_NoModel(t *testing.T) {
	mockRepo := &MockPriceRepo{}
	mockRepo.On("GetPriceRecords", mock.Anything, "TYO", "SPK", mock.Anything, domain.TripRoundTrip, domain.ClassEconomy).
		Return([]domain.FlightPriceRecord{}, nil)

	service := newTestService(mockRepo)
	trend, err := service.PriceTrend(context.Background(), "TYO", "SPK", domain.TripRoundTrip, 30)

	assert.NoError(t, err)
	assert.Nil(t, trend)
}

func TestModelCache_LastWriterWins(t *testing.T) {
	cache := NewModelCache()
	key := modelKey("TYO", "SPK", domain.TripRoundTrip)

	assert.True(t, cache.beginTraining(key))
	assert.False(t, cache.beginTraining(key), "second trainer must be rejected while in flight")

	cache.finishTraining(key, nil)
	assert.True(t, cache.beginTraining(key), "slot frees up after training finishes")
}
