package domain

import "time"

type TripType string

const (
	TripOneWay    TripType = "one-way"
	TripRoundTrip TripType = "round-trip"
)

type TravelClass string

const (
	ClassEconomy  TravelClass = "economy"
	ClassBusiness TravelClass = "business"
	ClassFirst    TravelClass = "first"
)

// PriceLevel is the discrete tag attached to a record by the ingestion
// pipeline. Empty means the record was ingested without one.
type PriceLevel string

const (
	PriceLevelLow     PriceLevel = "low"
	PriceLevelTypical PriceLevel = "typical"
	PriceLevelHigh    PriceLevel = "high"
)

func (p PriceLevel) Valid() bool {
	return p == PriceLevelLow || p == PriceLevelTypical || p == PriceLevelHigh
}

// FlightPriceRecord is an immutable fact row produced by ingestion.
// Price is in currency minor units. Many records may share a (route, date)
// pair; the engine always takes the minimum over matching records.
type FlightPriceRecord struct {
	ID            int64       `json:"id"`
	RouteID       int64       `json:"route_id"`
	ObservationID string      `json:"observation_id,omitempty"`
	AirlineID     int64       `json:"airline_id"`
	AirlineName   string      `json:"airline_name"`
	DepartureDate time.Time   `json:"departure_date"`
	ReturnDate    *time.Time  `json:"return_date,omitempty"`
	Price         int64       `json:"price"`
	TripType      TripType    `json:"trip_type"`
	TravelClass   TravelClass `json:"travel_class"`
	PriceLevel    PriceLevel  `json:"price_level,omitempty"`
	DepartureTime string      `json:"departure_time"`
	ArrivalTime   string      `json:"arrival_time"`
	Duration      string      `json:"duration"`
	Airplane      string      `json:"airplane"`
	Emissions     string      `json:"emissions"`
	CreatedAt     time.Time   `json:"created_at"`
}

// DateRange is an inclusive [Start, End] calendar window. Callers validate
// End > Start before it reaches the engine.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DurationRange is the inclusive [Min, Max] number of days a round trip
// may span.
type DurationRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DailyAggregate is one day's price summary from the data store.
type DailyAggregate struct {
	Date time.Time `json:"date"`
	Min  int64     `json:"min"`
	Avg  int64     `json:"avg"`
	Max  int64     `json:"max"`
}
