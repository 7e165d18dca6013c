package ml

import "time"

// FeatureCount is the width of the vector produced by BuildFeatures.
const FeatureCount = 4

// BuildFeatures maps a departure date and lead time onto the fixed numeric
// vector consumed by the price model: day of week (0-6), month of year
// (0-11), days until departure, weekend flag (0|1). Dates are evaluated
// in UTC.
func BuildFeatures(date time.Time, daysUntilDeparture int) []float64 {
	d := date.UTC()
	weekday := d.Weekday()

	weekend := 0.0
	if weekday == time.Saturday || weekday == time.Sunday {
		weekend = 1.0
	}

	return []float64{
		float64(weekday),
		float64(int(d.Month()) - 1),
		float64(daysUntilDeparture),
		weekend,
	}
}
