package analysis

import (
	"testing"
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/stretchr/testify/assert"
)

func record(date string, price int64, level domain.PriceLevel, airline string) domain.FlightPriceRecord {
	d, _ := time.Parse("2006-01-02", date)
	return domain.FlightPriceRecord{
		DepartureDate: d,
		Price:         price,
		PriceLevel:    level,
		AirlineName:   airline,
		TripType:      domain.TripRoundTrip,
		TravelClass:   domain.ClassEconomy,
	}
}

func bucketFor(t *testing.T, buckets []domain.SeasonBucket, season domain.Season) domain.SeasonBucket {
	t.Helper()
	for _, b := range buckets {
		if b.Season == season {
			return b
		}
	}
	t.Fatalf("bucket %s not found", season)
	return domain.SeasonBucket{}
}

func TestClassifySeasons_PriceLevelPath(t *testing.T) {
	records := []domain.FlightPriceRecord{
		record("2025-06-15", 5000, domain.PriceLevelLow, "AirA"),
		record("2025-12-25", 15000, domain.PriceLevelHigh, "AirB"),
	}

	buckets := ClassifySeasons(records)

	assert.Len(t, buckets, 3)

	low := bucketFor(t, buckets, domain.SeasonLow)
	assert.Equal(t, []time.Month{time.June}, low.Months)
	assert.Equal(t, int64(5000), low.BestDeal.Price)
	assert.Equal(t, "AirA", low.BestDeal.Airline)

	high := bucketFor(t, buckets, domain.SeasonHigh)
	assert.Equal(t, []time.Month{time.December}, high.Months)
	assert.Equal(t, int64(15000), high.BestDeal.Price)

	normal := bucketFor(t, buckets, domain.SeasonNormal)
	assert.Empty(t, normal.Months)
	assert.Nil(t, normal.BestDeal)
}

func TestClassifySeasons_BestDealWithinRange(t *testing.T) {
	records := []domain.FlightPriceRecord{
		record("2025-06-01", 5200, domain.PriceLevelLow, "AirA"),
		record("2025-06-15", 4800, domain.PriceLevelLow, "AirB"),
		record("2025-07-10", 5600, domain.PriceLevelLow, "AirC"),
	}

	low := bucketFor(t, ClassifySeasons(records), domain.SeasonLow)

	assert.Equal(t, int64(4800), low.PriceRange.Min)
	assert.Equal(t, int64(5600), low.PriceRange.Max)
	assert.GreaterOrEqual(t, low.BestDeal.Price, low.PriceRange.Min)
	assert.LessOrEqual(t, low.BestDeal.Price, low.PriceRange.Max)
	assert.Equal(t, []time.Month{time.June, time.July}, low.Months)
}

func TestClassifySeasons_MonthInOneBucketOnly(t *testing.T) {
	records := []domain.FlightPriceRecord{
		record("2025-03-01", 4000, domain.PriceLevelLow, "AirA"),
		record("2025-03-15", 9000, domain.PriceLevelHigh, "AirB"),
		record("2025-04-01", 6000, domain.PriceLevelTypical, "AirC"),
	}

	buckets := ClassifySeasons(records)

	// March legitimately shows up in two groups by tag; the fallback
	// path must never do that. Per-month uniqueness is asserted on the
	// fallback below, here we just sanity check bucket contents.
	low := bucketFor(t, buckets, domain.SeasonLow)
	normal := bucketFor(t, buckets, domain.SeasonNormal)
	assert.Equal(t, []time.Month{time.March}, low.Months)
	assert.Equal(t, []time.Month{time.April}, normal.Months)
}

func TestClassifySeasons_FallbackByMonthAverage(t *testing.T) {
	// no record carries a tag, so months rank by average price
	records := []domain.FlightPriceRecord{
		record("2025-01-10", 3000, "", "AirA"),
		record("2025-01-20", 3200, "", "AirA"),
		record("2025-06-10", 6000, "", "AirB"),
		record("2025-06-20", 6400, "", "AirB"),
		record("2025-12-10", 12000, "", "AirC"),
		record("2025-12-20", 12500, "", "AirC"),
	}

	buckets := ClassifySeasons(records)

	low := bucketFor(t, buckets, domain.SeasonLow)
	normal := bucketFor(t, buckets, domain.SeasonNormal)
	high := bucketFor(t, buckets, domain.SeasonHigh)

	assert.Equal(t, []time.Month{time.January}, low.Months)
	assert.Equal(t, []time.Month{time.June}, normal.Months)
	assert.Equal(t, []time.Month{time.December}, high.Months)
	assert.Equal(t, int64(3000), low.BestDeal.Price)
	assert.Equal(t, int64(12000), high.BestDeal.Price)

	seen := map[time.Month]int{}
	for _, b := range buckets {
		for _, m := range b.Months {
			seen[m]++
		}
	}
	for m, count := range seen {
		assert.Equal(t, 1, count, "month %s in more than one bucket", m)
	}
}

func TestClassifySeasons_FallbackSingleMonthIsNormal(t *testing.T) {
	records := []domain.FlightPriceRecord{
		record("2025-06-10", 6000, "", "AirA"),
		record("2025-06-20", 6400, "", "AirA"),
	}

	buckets := ClassifySeasons(records)

	normal := bucketFor(t, buckets, domain.SeasonNormal)
	assert.Equal(t, []time.Month{time.June}, normal.Months)
	assert.Equal(t, int64(6000), normal.BestDeal.Price)
	assert.Empty(t, bucketFor(t, buckets, domain.SeasonLow).Months)
	assert.Empty(t, bucketFor(t, buckets, domain.SeasonHigh).Months)
}

func TestClassifySeasons_FallbackEqualAveragesAreNormal(t *testing.T) {
	records := []domain.FlightPriceRecord{
		record("2025-01-10", 5000, "", "AirA"),
		record("2025-06-10", 5000, "", "AirB"),
		record("2025-12-10", 5000, "", "AirC"),
	}

	buckets := ClassifySeasons(records)

	normal := bucketFor(t, buckets, domain.SeasonNormal)
	assert.Equal(t, []time.Month{time.January, time.June, time.December}, normal.Months)
	assert.Empty(t, bucketFor(t, buckets, domain.SeasonLow).Months)
	assert.Empty(t, bucketFor(t, buckets, domain.SeasonHigh).Months)
}

func TestClassifySeasons_EmptyInput(t *testing.T) {
	buckets := ClassifySeasons(nil)

	assert.Len(t, buckets, 3)
	for _, b := range buckets {
		assert.Empty(t, b.Months)
		assert.Equal(t, domain.PriceRange{}, b.PriceRange)
		assert.Nil(t, b.BestDeal)
	}
}

func TestClassifySeasons_ZeroPricesIgnored(t *testing.T) {
	records := []domain.FlightPriceRecord{
		record("2025-05-01", 0, domain.PriceLevelLow, "AirA"),
		record("2025-05-02", 4500, domain.PriceLevelLow, "AirB"),
	}

	low := bucketFor(t, ClassifySeasons(records), domain.SeasonLow)

	assert.Equal(t, int64(4500), low.PriceRange.Min)
	assert.Equal(t, int64(4500), low.BestDeal.Price)
}
