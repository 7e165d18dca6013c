package analysis

import (
	"sort"
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
)

// ClassifySeasons groups the months covered by the records into exactly
// three buckets (low, normal, high). When any record carries a valid
// price_level tag the tags decide the grouping; otherwise each month is
// ranked by its average price and the bottom/top third of months become
// low/high. Months with no qualifying records are omitted from every
// bucket, never defaulted into normal. Empty input yields three empty
// buckets.
func ClassifySeasons(records []domain.FlightPriceRecord) []domain.SeasonBucket {
	priced := make([]domain.FlightPriceRecord, 0, len(records))
	tagged := false
	for _, rec := range records {
		if rec.Price <= 0 {
			continue
		}
		priced = append(priced, rec)
		if rec.PriceLevel.Valid() {
			tagged = true
		}
	}

	if tagged {
		return classifyByPriceLevel(priced)
	}
	return classifyByMonthAverage(priced)
}

func classifyByPriceLevel(records []domain.FlightPriceRecord) []domain.SeasonBucket {
	groups := map[domain.Season][]domain.FlightPriceRecord{}
	for _, rec := range records {
		if !rec.PriceLevel.Valid() {
			continue
		}
		season := seasonForLevel(rec.PriceLevel)
		groups[season] = append(groups[season], rec)
	}
	return buildBuckets(groups)
}

func seasonForLevel(level domain.PriceLevel) domain.Season {
	switch level {
	case domain.PriceLevelLow:
		return domain.SeasonLow
	case domain.PriceLevelHigh:
		return domain.SeasonHigh
	default:
		return domain.SeasonNormal
	}
}

// classifyByMonthAverage is the fallback when no record carries a tag.
// Thresholds are the 33rd/67th percentiles of the per-month averages,
// not of the raw prices.
func classifyByMonthAverage(records []domain.FlightPriceRecord) []domain.SeasonBucket {
	sums := map[time.Month]int64{}
	counts := map[time.Month]int64{}
	for _, rec := range records {
		m := rec.DepartureDate.UTC().Month()
		sums[m] += rec.Price
		counts[m]++
	}

	averages := map[time.Month]float64{}
	sorted := make([]float64, 0, len(sums))
	for m, sum := range sums {
		avg := float64(sum) / float64(counts[m])
		averages[m] = avg
		sorted = append(sorted, avg)
	}
	sort.Float64s(sorted)

	low := percentile(sorted, 0.33)
	high := percentile(sorted, 0.67)

	// identical thresholds mean there is no spread to rank against
	// (a single month, or all averages equal): everything is normal
	monthSeason := map[time.Month]domain.Season{}
	for m, avg := range averages {
		season := domain.SeasonNormal
		if low < high {
			switch {
			case avg <= low:
				season = domain.SeasonLow
			case avg >= high:
				season = domain.SeasonHigh
			}
		}
		monthSeason[m] = season
	}

	groups := map[domain.Season][]domain.FlightPriceRecord{}
	for _, rec := range records {
		season := monthSeason[rec.DepartureDate.UTC().Month()]
		groups[season] = append(groups[season], rec)
	}
	return buildBuckets(groups)
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func buildBuckets(groups map[domain.Season][]domain.FlightPriceRecord) []domain.SeasonBucket {
	buckets := make([]domain.SeasonBucket, 0, 3)
	for _, season := range []domain.Season{domain.SeasonLow, domain.SeasonNormal, domain.SeasonHigh} {
		buckets = append(buckets, buildBucket(season, groups[season]))
	}
	return buckets
}

func buildBucket(season domain.Season, records []domain.FlightPriceRecord) domain.SeasonBucket {
	bucket := domain.SeasonBucket{Season: season, Months: []time.Month{}}
	if len(records) == 0 {
		return bucket
	}

	seen := map[time.Month]bool{}
	var best *domain.FlightPriceRecord
	for i, rec := range records {
		m := rec.DepartureDate.UTC().Month()
		if !seen[m] {
			seen[m] = true
			bucket.Months = append(bucket.Months, m)
		}

		if bucket.PriceRange.Min == 0 || rec.Price < bucket.PriceRange.Min {
			bucket.PriceRange.Min = rec.Price
		}
		if rec.Price > bucket.PriceRange.Max {
			bucket.PriceRange.Max = rec.Price
		}
		// ties broken by first-seen
		if best == nil || rec.Price < best.Price {
			best = &records[i]
		}
	}
	sort.Slice(bucket.Months, func(i, j int) bool { return bucket.Months[i] < bucket.Months[j] })

	bucket.BestDeal = &domain.BestDeal{
		Date:    best.DepartureDate,
		Price:   best.Price,
		Airline: best.AirlineName,
	}
	return bucket
}
