package analysis

import (
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
)

// actualWindowDays is the trailing window of observed prices shown
// before the forecast horizon.
const actualWindowDays = 30

// BuildGraphSeries merges the trailing actual aggregates with predicted
// prices for the horizon into one chronological series. Actual data
// always wins over a prediction for the same date; days with neither
// are omitted, never zero-filled. The walk is day by day, so the output
// is sorted with no duplicate dates by construction.
func BuildGraphSeries(aggregates []domain.DailyAggregate, now time.Time, horizonDays int, predict func(time.Time) *domain.Prediction) []domain.GraphPoint {
	byDay := make(map[string]domain.DailyAggregate, len(aggregates))
	for _, agg := range aggregates {
		byDay[dayKey(agg.Date)] = agg
	}

	points := make([]domain.GraphPoint, 0, actualWindowDays+horizonDays)

	// the window includes today, so it starts actualWindowDays-1 back
	today := dateOnly(now)
	for offset := -(actualWindowDays - 1); offset <= 0; offset++ {
		d := today.AddDate(0, 0, offset)
		if agg, ok := byDay[dayKey(d)]; ok && agg.Min > 0 {
			points = append(points, actualPoint(d, agg))
		}
	}

	for offset := 1; offset <= horizonDays; offset++ {
		d := today.AddDate(0, 0, offset)
		if agg, ok := byDay[dayKey(d)]; ok && agg.Min > 0 {
			points = append(points, actualPoint(d, agg))
			continue
		}
		if pred := predict(d); pred != nil {
			points = append(points, domain.GraphPoint{
				Date:    d,
				Low:     pred.MinPrice,
				Typical: pred.PredictedPrice,
				High:    pred.MaxPrice,
			})
		}
	}
	return points
}

func actualPoint(date time.Time, agg domain.DailyAggregate) domain.GraphPoint {
	return domain.GraphPoint{
		Date:     date,
		Low:      agg.Min,
		Typical:  agg.Avg,
		High:     agg.Max,
		IsActual: true,
	}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
