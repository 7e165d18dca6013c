package domain

import "time"

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Prediction is a point forecast with a lead-time-derived confidence band.
type Prediction struct {
	Date           time.Time  `json:"date"`
	PredictedPrice int64      `json:"predicted_price"`
	MinPrice       int64      `json:"min_price"`
	MaxPrice       int64      `json:"max_price"`
	Confidence     Confidence `json:"confidence"`
	RMSE           float64    `json:"rmse"`
	MAE            float64    `json:"mae"`
}

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type PriceTrend struct {
	Trend         Trend   `json:"trend"`
	ChangePercent float64 `json:"change_percent"`
}
