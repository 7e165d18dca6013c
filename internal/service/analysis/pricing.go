package analysis

import (
	"math"

	"github.com/Domenick1991/farecast/internal/domain"
)

// Passenger and travel-class pricing rules. Stored prices are economy
// round-trip reference fares; everything else is derived from them.
const (
	childFactor  = 0.75
	infantFactor = 0.1

	businessMultiplier = 2.5
	firstMultiplier    = 4.0

	oneWayFactor = 0.5
)

func classMultiplier(class domain.TravelClass) float64 {
	switch class {
	case domain.ClassBusiness:
		return businessMultiplier
	case domain.ClassFirst:
		return firstMultiplier
	default:
		return 1.0
	}
}

func tripFactor(tripType domain.TripType) float64 {
	if tripType == domain.TripOneWay {
		return oneWayFactor
	}
	return 1.0
}

func passengerFactor(p domain.Passengers) float64 {
	if p.Total() == 0 {
		return 1.0
	}
	return float64(p.Adults) + childFactor*float64(p.Child) + infantFactor*float64(p.Infants)
}

// adjustPrice scales a stored reference fare to the requested trip type,
// travel class and passenger mix. Zero stays zero so "not found"
// sentinels survive the scaling.
func adjustPrice(price int64, tripType domain.TripType, class domain.TravelClass, passengers domain.Passengers) int64 {
	if price <= 0 {
		return 0
	}
	scaled := float64(price) * tripFactor(tripType) * classMultiplier(class) * passengerFactor(passengers)
	return int64(math.Round(scaled))
}
