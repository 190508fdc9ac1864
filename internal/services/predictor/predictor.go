// Package predictor turns the newest complete feature row into a direction call.
package predictor

import (
	"context"
	"fmt"
	"math"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
)

const (
	// DefaultThreshold is used when the configured threshold is unset.
	DefaultThreshold = 0.5
	// ConfidenceMargin is the distance from 0.5 beyond which a call is HIGH.
	ConfidenceMargin = 0.1
)

// now is replaced in tests.
var now = time.Now

// BuildVector orders the row's values by names. Names the row does not carry,
// or carries as missing, are zero-filled.
func BuildVector(row *models.FeatureRow, names []string) []float64 {
	vec := make([]float64, len(names))
	for i, name := range names {
		if v := row.Get(name); v.OK {
			vec[i] = v.V
		}
	}
	return vec
}

// Predict scores row with clf and classifies the probability of an up move
// against threshold.
func Predict(ctx context.Context, ticker string, row *models.FeatureRow, clf service.Classifier, threshold float64) (models.PredictionResult, error) {
	if row == nil {
		return models.PredictionResult{}, fmt.Errorf("%s: no feature row: %w", ticker, models.ErrInput)
	}
	if clf == nil {
		return models.PredictionResult{}, fmt.Errorf("%s: no classifier: %w", ticker, models.ErrInput)
	}

	vec := BuildVector(row, clf.FeatureNames())
	p, err := clf.PredictProbability(ctx, vec)
	if err != nil {
		return models.PredictionResult{}, &models.ClassifierError{Op: clf.Name(), Err: err}
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return models.PredictionResult{}, &models.ClassifierError{
			Op:  clf.Name(),
			Err: fmt.Errorf("probability %v outside [0,1]", p),
		}
	}

	return models.PredictionResult{
		Ticker:         ticker,
		Prediction:     Classify(p, threshold),
		ProbabilityUp:  Round4(p),
		RawProbability: p,
		Confidence:     ConfidenceOf(p),
		Threshold:      threshold,
		AsOf:           row.Time,
		Timestamp:      now().UTC(),
	}, nil
}

// Classify returns UP when p reaches threshold.
func Classify(p, threshold float64) models.Direction {
	if p >= threshold {
		return models.DirectionUp
	}
	return models.DirectionDown
}

// ConfidenceOf is HIGH only when p is strictly more than ConfidenceMargin away from 0.5.
func ConfidenceOf(p float64) models.Confidence {
	if math.Abs(p-0.5) > ConfidenceMargin {
		return models.ConfidenceHigh
	}
	return models.ConfidenceLow
}

// Round4 rounds half away from zero to four decimal places.
func Round4(p float64) float64 {
	return math.Round(p*1e4) / 1e4
}
