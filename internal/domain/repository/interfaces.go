package repository

import (
	"context"

	"StockPulse/internal/domain/models"
)

// MarketData supplies raw daily bars. An empty series means the ticker is unknown.
type MarketData interface {
	Fetch(ctx context.Context, ticker, period string) (models.PriceSeries, error)
	Name() string
}

// PredictionPublisher emits evaluated predictions to downstream consumers.
type PredictionPublisher interface {
	PublishPrediction(ctx context.Context, res models.PredictionResult) error
	Close() error
}

type Metrics interface {
	RecordPrediction(ticker string, label models.Direction, confidence models.Confidence, probability float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
