package analysis

import (
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
)

// BestPrice finds the cheapest trip starting on departureDate. One-way
// trips are a single lookup. Round trips scan every duration in the
// inclusive range, summing the cheapest one-way-equivalent leg price at
// the departure and return dates; both legs must be priced. The scan is
// exhaustive because the range is small and prices are not monotonic in
// date. A zero price means nothing was found.
func BestPrice(records []domain.FlightPriceRecord, departureDate time.Time, durationRange domain.DurationRange, tripType domain.TripType) domain.DurationSearchResult {
	if tripType == domain.TripOneWay {
		price, _ := cheapestOn(records, departureDate, tripType)
		return domain.DurationSearchResult{Price: price}
	}

	var best domain.DurationSearchResult
	for d := durationRange.Min; d <= durationRange.Max; d++ {
		returnDate := departureDate.AddDate(0, 0, d)

		outbound, _ := cheapestLegOn(records, departureDate)
		inbound, _ := cheapestLegOn(records, returnDate)
		if outbound == 0 || inbound == 0 {
			continue
		}

		total := outbound + inbound
		if best.Price == 0 || total < best.Price {
			rd := returnDate
			best = domain.DurationSearchResult{Price: total, ReturnDate: &rd, Duration: d}
		}
	}
	return best
}

// cheapestOn returns the cheapest record price for an exact trip-type
// and UTC calendar-day match.
func cheapestOn(records []domain.FlightPriceRecord, date time.Time, tripType domain.TripType) (int64, string) {
	var (
		best    int64
		airline string
	)
	for _, rec := range records {
		if rec.Price <= 0 || rec.TripType != tripType || !sameDay(rec.DepartureDate, date) {
			continue
		}
		if best == 0 || rec.Price < best {
			best = rec.Price
			airline = rec.AirlineName
		}
	}
	return best, airline
}

// cheapestLegOn returns the cheapest one-way-equivalent price among
// records departing on the given UTC calendar day, with the airline of
// that record. Round-trip fares count as half per leg.
func cheapestLegOn(records []domain.FlightPriceRecord, date time.Time) (int64, string) {
	var (
		best    int64
		airline string
	)
	for _, rec := range records {
		if rec.Price <= 0 || !sameDay(rec.DepartureDate, date) {
			continue
		}
		leg := rec.Price
		if rec.TripType == domain.TripRoundTrip {
			leg = rec.Price / 2
		}
		if best == 0 || leg < best {
			best = leg
			airline = rec.AirlineName
		}
	}
	return best, airline
}

func sameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}
