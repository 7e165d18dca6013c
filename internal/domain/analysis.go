package domain

import "time"

type Season string

const (
	SeasonLow    Season = "low"
	SeasonNormal Season = "normal"
	SeasonHigh   Season = "high"
)

type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// BestDeal is the single cheapest record within a season bucket.
type BestDeal struct {
	Date    time.Time `json:"date"`
	Price   int64     `json:"price"`
	Airline string    `json:"airline"`
}

// SeasonBucket groups calendar months by price behaviour. Recomputed on
// every analysis call, never persisted. Months holds distinct UTC months
// (1-12) that have qualifying records; months without data are omitted.
type SeasonBucket struct {
	Season     Season       `json:"season"`
	Months     []time.Month `json:"months"`
	PriceRange PriceRange   `json:"price_range"`
	BestDeal   *BestDeal    `json:"best_deal,omitempty"`
}

// DurationSearchResult is the outcome of a cheapest-trip search for one
// departure date. Price 0 means nothing was found.
type DurationSearchResult struct {
	Price      int64      `json:"price"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Duration   int        `json:"duration"`
}

// ShiftOption describes the price of moving the trip by the comparison
// window in one direction.
type ShiftOption struct {
	Date       time.Time `json:"date"`
	Price      int64     `json:"price"`
	Difference int64     `json:"difference"`
	Percentage float64   `json:"percentage"`
}

type PriceComparison struct {
	BasePrice   int64       `json:"base_price"`
	BaseAirline string      `json:"base_airline"`
	IfGoBefore  ShiftOption `json:"if_go_before"`
	IfGoAfter   ShiftOption `json:"if_go_after"`
}

// GraphPoint is one day in the merged actual+predicted series.
type GraphPoint struct {
	Date     time.Time `json:"date"`
	Low      int64     `json:"low"`
	Typical  int64     `json:"typical"`
	High     int64     `json:"high"`
	IsActual bool      `json:"is_actual"`
}

type Passengers struct {
	Adults  int `json:"adults"`
	Child   int `json:"child"`
	Infants int `json:"infants"`
}

func (p Passengers) Total() int {
	return p.Adults + p.Child + p.Infants
}

// RecommendedPeriod is the cheapest season bucket with its best deal
// priced for the requested passengers and travel class.
type RecommendedPeriod struct {
	Season  Season       `json:"season"`
	Months  []time.Month `json:"months"`
	Date    time.Time    `json:"date"`
	Price   int64        `json:"price"`
	Airline string       `json:"airline"`
}

type AnalysisResult struct {
	Origin            string              `json:"origin"`
	Destination       string              `json:"destination"`
	RecommendedPeriod *RecommendedPeriod  `json:"recommended_period,omitempty"`
	Seasons           []SeasonBucket      `json:"seasons"`
	PriceComparison   *PriceComparison    `json:"price_comparison,omitempty"`
	ChartSeries       []DailyAggregate    `json:"chart_series"`
	FlightList        []FlightPriceRecord `json:"flight_list"`
	Prediction        *Prediction         `json:"prediction,omitempty"`
	Trend             *PriceTrend         `json:"trend,omitempty"`
	GraphSeries       []GraphPoint        `json:"graph_series,omitempty"`
	Savings           int64               `json:"savings"`
}
