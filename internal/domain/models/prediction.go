package models

import "time"

// Direction is the predicted next-period move.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Confidence is a coarse tier derived from the distance of p to 0.5.
type Confidence string

const (
	ConfidenceHigh Confidence = "HIGH"
	ConfidenceLow  Confidence = "LOW"
)

// PredictionResult is the pipeline output for one request. It is never persisted.
type PredictionResult struct {
	Ticker         string
	Prediction     Direction
	ProbabilityUp  float64 // rounded to 4 dp
	RawProbability float64
	Confidence     Confidence
	Threshold      float64
	AsOf           time.Time // date of the bar the features were taken from
	Timestamp      time.Time
}
