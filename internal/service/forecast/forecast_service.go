package forecast

import (
	"context"
	"math"
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/Domenick1991/farecast/internal/ml"
	"github.com/Domenick1991/farecast/internal/repository"
	"github.com/Domenick1991/farecast/pkg/logger"
	"github.com/Domenick1991/farecast/pkg/metrics"
)

type ForecastUseCase interface {
	Predict(ctx context.Context, origin, destination string, targetDate time.Time, tripType domain.TripType) (*domain.Prediction, error)
	PredictRange(ctx context.Context, origin, destination string, start, end time.Time, tripType domain.TripType) ([]domain.Prediction, error)
	PriceTrend(ctx context.Context, origin, destination string, tripType domain.TripType, daysAhead int) (*domain.PriceTrend, error)
}

// Confidence band half-widths by lead time.
const (
	bandNear = 0.15 // <= 30 days out
	bandMid  = 0.20 // <= 60 days out
	bandFar  = 0.25
)

// trainingWindowDays bounds how far around "now" training samples are
// fetched from the store.
const trainingWindowDays = 365

// trendStableThreshold is the |change %| under which a trend is
// reported as stable.
const trendStableThreshold = 5.0

type ForecastService struct {
	repo    repository.PriceRecordRepository
	models  *ModelCache
	folds   int
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewForecastService(repo repository.PriceRecordRepository, models *ModelCache, folds int, log logger.Logger, m *metrics.Metrics) *ForecastService {
	return &ForecastService{
		repo:    repo,
		models:  models,
		folds:   folds,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Predict returns a point forecast with a lead-time confidence band, or
// nil when no model is available for the route. Nil means insufficient
// data, not an error.
func (s *ForecastService) Predict(ctx context.Context, origin, destination string, targetDate time.Time, tripType domain.TripType) (*domain.Prediction, error) {
	model, err := s.modelFor(ctx, origin, destination, tripType)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}

	p := s.pointPrediction(model, targetDate, tripType)
	if s.metrics != nil {
		s.metrics.PredictionsTotal.Inc()
	}
	return p, nil
}

// PredictRange forecasts every day in [start, end] inclusive with a
// single model lookup. Days are stepped in UTC.
func (s *ForecastService) PredictRange(ctx context.Context, origin, destination string, start, end time.Time, tripType domain.TripType) ([]domain.Prediction, error) {
	model, err := s.modelFor(ctx, origin, destination, tripType)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}

	predictions := make([]domain.Prediction, 0)
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		predictions = append(predictions, *s.pointPrediction(model, d, tripType))
	}
	if s.metrics != nil {
		s.metrics.PredictionsTotal.Add(float64(len(predictions)))
	}
	return predictions, nil
}

// PriceTrend compares tomorrow's forecast with the forecast daysAhead
// out. Nil when no model is available.
func (s *ForecastService) PriceTrend(ctx context.Context, origin, destination string, tripType domain.TripType, daysAhead int) (*domain.PriceTrend, error) {
	model, err := s.modelFor(ctx, origin, destination, tripType)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}

	today := dateOnly(s.now())
	near := s.pointPrediction(model, today.AddDate(0, 0, 1), tripType)
	far := s.pointPrediction(model, today.AddDate(0, 0, daysAhead), tripType)
	if near.PredictedPrice == 0 {
		return nil, nil
	}

	change := float64(far.PredictedPrice-near.PredictedPrice) / float64(near.PredictedPrice) * 100
	trend := domain.TrendStable
	switch {
	case change > trendStableThreshold:
		trend = domain.TrendIncreasing
	case change < -trendStableThreshold:
		trend = domain.TrendDecreasing
	}
	return &domain.PriceTrend{Trend: trend, ChangePercent: math.Round(change*100) / 100}, nil
}

// modelFor returns the cached model for the route, lazily training one
// when none exists. If another request is already training this route
// the call proceeds with no model rather than blocking.
func (s *ForecastService) modelFor(ctx context.Context, origin, destination string, tripType domain.TripType) (*ml.Model, error) {
	key := modelKey(origin, destination, tripType)

	model, training := s.models.get(key)
	if model != nil {
		return model, nil
	}
	if training {
		return nil, nil
	}
	if !s.models.beginTraining(key) {
		return nil, nil
	}

	model, err := s.train(ctx, origin, destination)
	s.models.finishTraining(key, model)
	return model, err
}

// train fits a model on the route's round-trip economy reference fares;
// trip type and class scaling happen at prediction time.
func (s *ForecastService) train(ctx context.Context, origin, destination string) (*ml.Model, error) {
	now := s.now()
	dateRange := domain.DateRange{
		Start: now.AddDate(0, 0, -trainingWindowDays),
		End:   now.AddDate(0, 0, trainingWindowDays),
	}

	records, err := s.repo.GetPriceRecords(ctx, origin, destination, dateRange, domain.TripRoundTrip, domain.ClassEconomy)
	if err != nil {
		return nil, err
	}

	samples := make([]ml.Sample, 0, len(records))
	for _, rec := range records {
		if rec.Price <= 0 {
			continue
		}
		lead := daysBetween(rec.CreatedAt, rec.DepartureDate)
		samples = append(samples, ml.Sample{
			Features: ml.BuildFeatures(rec.DepartureDate, lead),
			Price:    float64(rec.Price),
		})
	}

	started := time.Now()
	model, err := ml.Train(samples, s.folds)
	if err != nil {
		// Insufficient data and trainer failures both leave the route
		// without a model; predictions return nil until the next retrain.
		s.log.Warn("model training skipped", "origin", origin, "destination", destination, "reason", err)
		return nil, nil
	}
	if s.metrics != nil {
		s.metrics.TrainingDuration.Observe(time.Since(started).Seconds())
	}
	s.log.Info("model trained", "origin", origin, "destination", destination, "samples", len(samples), "rmse", model.RMSE, "mae", model.MAE)
	return model, nil
}

func (s *ForecastService) pointPrediction(model *ml.Model, targetDate time.Time, tripType domain.TripType) *domain.Prediction {
	lead := daysBetween(s.now(), targetDate)

	raw := model.Predict(ml.BuildFeatures(targetDate, lead))
	if tripType == domain.TripOneWay {
		raw *= 0.5
	}
	price := int64(math.Round(math.Max(0, raw)))

	confidence, band := confidenceFor(lead)
	return &domain.Prediction{
		Date:           dateOnly(targetDate),
		PredictedPrice: price,
		MinPrice:       int64(math.Round(float64(price) * (1 - band))),
		MaxPrice:       int64(math.Round(float64(price) * (1 + band))),
		Confidence:     confidence,
		RMSE:           model.RMSE,
		MAE:            model.MAE,
	}
}

func confidenceFor(leadDays int) (domain.Confidence, float64) {
	switch {
	case leadDays <= 30:
		return domain.ConfidenceHigh, bandNear
	case leadDays <= 60:
		return domain.ConfidenceMedium, bandMid
	default:
		return domain.ConfidenceLow, bandFar
	}
}

// daysBetween is the whole-day lead time from a to b, floored at 0.
func daysBetween(a, b time.Time) int {
	days := int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

var _ ForecastUseCase = (*ForecastService)(nil)
