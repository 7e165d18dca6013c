package analysis

import (
	"math"
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
)

// comparisonWindowDays is the fixed shift applied in both directions for
// the "go earlier / go later" comparison.
const comparisonWindowDays = 7

// Compare prices the trip at the base date against the same trip shifted
// comparisonWindowDays earlier and later. All three prices go through
// the passenger discount rules before differencing. When the base date
// itself has no price, the average of the two shifted prices stands in
// as the reference so percentages stay reportable; with only one side
// available that side is its own reference and reports zero difference.
func Compare(records []domain.FlightPriceRecord, baseDate time.Time, durationRange domain.DurationRange, tripType domain.TripType, passengers domain.Passengers) domain.PriceComparison {
	beforeDate := baseDate.AddDate(0, 0, -comparisonWindowDays)
	afterDate := baseDate.AddDate(0, 0, comparisonWindowDays)

	scale := passengerFactor(passengers)
	base := scaledPrice(BestPrice(records, baseDate, durationRange, tripType).Price, scale)
	before := scaledPrice(BestPrice(records, beforeDate, durationRange, tripType).Price, scale)
	after := scaledPrice(BestPrice(records, afterDate, durationRange, tripType).Price, scale)

	_, baseAirline := cheapestLegOn(records, baseDate)

	reference := base
	if reference == 0 {
		switch {
		case before > 0 && after > 0:
			reference = (before + after) / 2
		case before > 0:
			reference = before
		case after > 0:
			reference = after
		}
	}

	return domain.PriceComparison{
		BasePrice:   base,
		BaseAirline: baseAirline,
		IfGoBefore:  shiftOption(beforeDate, before, reference),
		IfGoAfter:   shiftOption(afterDate, after, reference),
	}
}

func shiftOption(date time.Time, price, reference int64) domain.ShiftOption {
	opt := domain.ShiftOption{Date: date, Price: price}
	if price == 0 || reference == 0 {
		return opt
	}
	opt.Difference = price - reference
	opt.Percentage = math.Round(float64(opt.Difference)/float64(reference)*10000) / 100
	return opt
}

func scaledPrice(price int64, factor float64) int64 {
	if price <= 0 {
		return 0
	}
	return int64(math.Round(float64(price) * factor))
}
