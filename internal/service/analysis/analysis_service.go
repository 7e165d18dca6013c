package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/Domenick1991/farecast/internal/cache"
	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/Domenick1991/farecast/internal/kafka"
	"github.com/Domenick1991/farecast/internal/repository"
	"github.com/Domenick1991/farecast/pkg/logger"
	"github.com/Domenick1991/farecast/pkg/metrics"
)

type AnalysisUseCase interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*domain.AnalysisResult, error)
}

type AnalyzeInput struct {
	Origin        string               `json:"origin"`
	Destination   string               `json:"destination"`
	DurationRange domain.DurationRange `json:"duration_range"`
	TripType      domain.TripType      `json:"trip_type"`
	Passengers    domain.Passengers    `json:"passengers"`
	TravelClass   domain.TravelClass   `json:"travel_class"`
	StartDate     *time.Time           `json:"start_date,omitempty"`
	EndDate       *time.Time           `json:"end_date,omitempty"`
	Refresh       bool                 `json:"refresh,omitempty"`
}

type Cache interface {
	GetAnalysis(ctx context.Context, key string) (*domain.AnalysisResult, error)
	SetAnalysis(ctx context.Context, key string, result *domain.AnalysisResult) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Forecaster is the slice of the forecast service the orchestrator needs.
type Forecaster interface {
	Predict(ctx context.Context, origin, destination string, targetDate time.Time, tripType domain.TripType) (*domain.Prediction, error)
	PriceTrend(ctx context.Context, origin, destination string, tripType domain.TripType, daysAhead int) (*domain.PriceTrend, error)
}

// seasonContextMonths is the minimum span, in months, of the record
// window fed to season classification.
const seasonContextMonths = 12

// trendDaysAhead is the default horizon of the trend reported alongside
// an analysis.
const trendDaysAhead = 30

type AnalysisService struct {
	repo            repository.PriceRecordRepository
	cache           Cache
	forecaster      Forecaster
	producer        Producer
	statsTopic      string
	horizonDays     int
	flightListLimit int
	log             logger.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

type AnalysisServiceOption func(*AnalysisService)

func WithStatsTopic(topic string) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.statsTopic = topic
	}
}

func NewAnalysisService(
	repo repository.PriceRecordRepository,
	c Cache,
	forecaster Forecaster,
	producer Producer,
	horizonDays, flightListLimit int,
	log logger.Logger,
	m *metrics.Metrics,
	opts ...AnalysisServiceOption,
) *AnalysisService {
	service := &AnalysisService{
		repo:            repo,
		cache:           c,
		forecaster:      forecaster,
		producer:        producer,
		horizonDays:     horizonDays,
		flightListLimit: flightListLimit,
		log:             log,
		metrics:         m,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Analyze runs the full route analysis: season classification, shifted
// price comparison, actual+predicted graph series and the recommended
// period, all priced for the requested passengers and travel class.
// Missing data degrades individual sections to their empty values
// instead of failing the call.
func (s *AnalysisService) Analyze(ctx context.Context, input AnalyzeInput) (*domain.AnalysisResult, error) {
	started := time.Now()
	window := s.analysisWindow(input.StartDate, input.EndDate)
	key := cache.AnalysisKey(input.Origin, input.Destination, input.TripType, input.TravelClass, input.DurationRange, window)

	if s.cache != nil && !input.Refresh {
		if cached, err := s.cache.GetAnalysis(ctx, key); err == nil && cached != nil {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			s.publishStats(ctx, input, true, started)
			return cached, nil
		}
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	// Stored fares are round-trip economy references; trip type, class
	// and passenger scaling happen at the pricing step.
	records, err := s.repo.GetPriceRecords(ctx, input.Origin, input.Destination, window, domain.TripRoundTrip, domain.ClassEconomy)
	if err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		Origin:      input.Origin,
		Destination: input.Destination,
		Seasons:     ClassifySeasons(records),
		FlightList:  cheapestFlights(records, s.flightListLimit),
	}

	if input.StartDate != nil {
		comparison := Compare(records, dateOnly(*input.StartDate), input.DurationRange, domain.TripRoundTrip, input.Passengers)
		result.PriceComparison = &comparison
	}

	if aggregates, err := s.repo.GetDailyAggregates(ctx, input.Origin, input.Destination, window, domain.TripRoundTrip, domain.ClassEconomy); err == nil {
		result.ChartSeries = aggregates
	} else {
		s.log.Warn("daily aggregates unavailable", "origin", input.Origin, "destination", input.Destination, "error", err)
	}

	result.GraphSeries = s.buildGraphSeries(ctx, input)

	if input.StartDate != nil {
		if pred, err := s.forecaster.Predict(ctx, input.Origin, input.Destination, *input.StartDate, input.TripType); err == nil {
			result.Prediction = pred
		}
	}
	if trend, err := s.forecaster.PriceTrend(ctx, input.Origin, input.Destination, input.TripType, trendDaysAhead); err == nil {
		result.Trend = trend
	}

	s.applyRecommendation(result, input)

	if s.cache != nil {
		if err := s.cache.SetAnalysis(ctx, key, result); err != nil {
			s.log.Warn("analysis cache write failed", "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.AnalysesTotal.Inc()
	}
	s.publishStats(ctx, input, false, started)
	return result, nil
}

// analysisWindow widens the requested dates to at least a
// seasonContextMonths span so season classification always has a full
// year of context.
func (s *AnalysisService) analysisWindow(start, end *time.Time) domain.DateRange {
	today := dateOnly(s.now())

	from, to := today, today.AddDate(0, seasonContextMonths, 0)
	if start != nil {
		from = dateOnly(*start)
		to = from.AddDate(0, seasonContextMonths, 0)
	}
	if end != nil {
		to = dateOnly(*end)
	}

	if to.Before(from.AddDate(0, seasonContextMonths, 0)) {
		mid := from.Add(to.Sub(from) / 2)
		padded := domain.DateRange{
			Start: mid.AddDate(0, -seasonContextMonths/2, 0),
			End:   mid.AddDate(0, seasonContextMonths/2, 0),
		}
		if padded.Start.After(from) {
			padded.Start = from
		}
		if padded.End.Before(to) {
			padded.End = to
		}
		return padded
	}
	return domain.DateRange{Start: from, End: to}
}

func (s *AnalysisService) buildGraphSeries(ctx context.Context, input AnalyzeInput) []domain.GraphPoint {
	now := s.now()
	window := domain.DateRange{
		Start: dateOnly(now).AddDate(0, 0, -(actualWindowDays - 1)),
		End:   dateOnly(now).AddDate(0, 0, s.horizonDays),
	}
	aggregates, err := s.repo.GetDailyAggregates(ctx, input.Origin, input.Destination, window, domain.TripRoundTrip, domain.ClassEconomy)
	if err != nil {
		s.log.Warn("graph aggregates unavailable", "origin", input.Origin, "destination", input.Destination, "error", err)
		aggregates = nil
	}

	// the graph stays in reference fares, matching the actual aggregates
	return BuildGraphSeries(aggregates, now, s.horizonDays, func(d time.Time) *domain.Prediction {
		pred, err := s.forecaster.Predict(ctx, input.Origin, input.Destination, d, domain.TripRoundTrip)
		if err != nil {
			return nil
		}
		return pred
	})
}

// applyRecommendation picks the cheapest season bucket, prices it for
// the request, and computes savings against either the user's selected
// date or the high-season best deal. Savings never go negative.
func (s *AnalysisService) applyRecommendation(result *domain.AnalysisResult, input AnalyzeInput) {
	var cheapest, high *domain.SeasonBucket
	for i := range result.Seasons {
		b := &result.Seasons[i]
		if b.BestDeal == nil {
			continue
		}
		if cheapest == nil || b.BestDeal.Price < cheapest.BestDeal.Price {
			cheapest = b
		}
		if b.Season == domain.SeasonHigh {
			high = b
		}
	}
	if cheapest == nil {
		return
	}

	recommendedPrice := adjustPrice(cheapest.BestDeal.Price, input.TripType, input.TravelClass, input.Passengers)
	result.RecommendedPeriod = &domain.RecommendedPeriod{
		Season:  cheapest.Season,
		Months:  cheapest.Months,
		Date:    cheapest.BestDeal.Date,
		Price:   recommendedPrice,
		Airline: cheapest.BestDeal.Airline,
	}

	var reference int64
	if input.StartDate != nil && result.PriceComparison != nil && result.PriceComparison.BasePrice > 0 {
		// comparison prices already carry the passenger scaling
		reference = scaledPrice(result.PriceComparison.BasePrice, classMultiplier(input.TravelClass)*tripFactor(input.TripType))
	} else if high != nil && high.BestDeal != nil {
		reference = adjustPrice(high.BestDeal.Price, input.TripType, input.TravelClass, input.Passengers)
	}

	if reference > recommendedPrice {
		result.Savings = reference - recommendedPrice
	}
}

func cheapestFlights(records []domain.FlightPriceRecord, limit int) []domain.FlightPriceRecord {
	list := make([]domain.FlightPriceRecord, 0, len(records))
	for _, rec := range records {
		if rec.Price > 0 {
			list = append(list, rec)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Price < list[j].Price })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

func (s *AnalysisService) publishStats(ctx context.Context, input AnalyzeInput, cacheHit bool, started time.Time) {
	if s.producer == nil || s.statsTopic == "" {
		return
	}
	event := kafka.AnalysisStatsEvent{
		Origin:      input.Origin,
		Destination: input.Destination,
		TripType:    string(input.TripType),
		CacheHit:    cacheHit,
		DurationMS:  time.Since(started).Milliseconds(),
		At:          time.Now(),
	}
	if err := s.producer.Publish(ctx, s.statsTopic, input.Origin+"-"+input.Destination, event); err != nil {
		s.log.Warn("stats publish failed", "error", err)
	}
}

var _ AnalysisUseCase = (*AnalysisService)(nil)
