package repository

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// EventPredictionEvaluated is the type of every event this publisher emits.
const EventPredictionEvaluated = "prediction.evaluated"

// MessagePublisher is the subset of pkg/kafka.Producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// PredictionEvent is the JSON payload written to Kafka, keyed by ticker.
type PredictionEvent struct {
	Type           string    `json:"type"`
	Ticker         string    `json:"ticker"`
	Prediction     string    `json:"prediction"`
	ProbabilityUp  float64   `json:"probability_up"`
	RawProbability float64   `json:"raw_probability"`
	Confidence     string    `json:"confidence"`
	Threshold      float64   `json:"threshold"`
	AsOf           string    `json:"as_of"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewPredictionEvent converts a result into its wire form.
func NewPredictionEvent(r models.PredictionResult) PredictionEvent {
	return PredictionEvent{
		Type:           EventPredictionEvaluated,
		Ticker:         r.Ticker,
		Prediction:     string(r.Prediction),
		ProbabilityUp:  r.ProbabilityUp,
		RawProbability: r.RawProbability,
		Confidence:     string(r.Confidence),
		Threshold:      r.Threshold,
		AsOf:           r.AsOf.Format(time.DateOnly),
		Timestamp:      r.Timestamp,
	}
}

// KafkaPredictionPublisher emits one event per served prediction.
type KafkaPredictionPublisher struct {
	p     MessagePublisher
	topic string
}

func NewKafkaPredictionPublisher(p MessagePublisher, topic string) *KafkaPredictionPublisher {
	return &KafkaPredictionPublisher{p: p, topic: topic}
}

func (k *KafkaPredictionPublisher) PublishPrediction(ctx context.Context, r models.PredictionResult) error {
	if err := k.p.Publish(ctx, k.topic, []byte(r.Ticker), NewPredictionEvent(r)); err != nil {
		return fmt.Errorf("publish %s: %w", EventPredictionEvaluated, err)
	}
	return nil
}

func (k *KafkaPredictionPublisher) Close() error { return k.p.Close() }

// NopPredictionPublisher is used when Kafka is disabled.
type NopPredictionPublisher struct{}

func (NopPredictionPublisher) PublishPrediction(context.Context, models.PredictionResult) error {
	return nil
}

func (NopPredictionPublisher) Close() error { return nil }

var (
	_ domrepo.PredictionPublisher = (*KafkaPredictionPublisher)(nil)
	_ domrepo.PredictionPublisher = NopPredictionPublisher{}
)
