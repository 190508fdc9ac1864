// Package classifier provides the direction classifiers: a logistic-regression
// artifact evaluated in process and an HTTP client for a remote model service.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"StockPulse/internal/domain/service"

	"gopkg.in/yaml.v3"
)

// Artifact is the on-disk form of a trained logistic-regression model with an
// optional standard scaler applied before the linear term.
type Artifact struct {
	Name         string    `json:"name" yaml:"name"`
	FeatureNames []string  `json:"feature_names" yaml:"feature_names"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Scaler       *Scaler   `json:"scaler,omitempty" yaml:"scaler,omitempty"`
}

// Scaler standardises each feature as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// Validate checks that every per-feature slice lines up.
func (a *Artifact) Validate() error {
	n := len(a.FeatureNames)
	if n == 0 {
		return errors.New("model has no feature_names")
	}
	if len(a.Coefficients) != n {
		return fmt.Errorf("model has %d coefficients for %d features", len(a.Coefficients), n)
	}
	if a.Scaler != nil {
		if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
			return fmt.Errorf("scaler expects %d features, got mean=%d scale=%d", n, len(a.Scaler.Mean), len(a.Scaler.Scale))
		}
		for i, s := range a.Scaler.Scale {
			if s == 0 {
				return fmt.Errorf("scaler scale for %s is zero", a.FeatureNames[i])
			}
		}
	}
	return nil
}

// Logistic evaluates an Artifact. It is immutable after construction.
type Logistic struct {
	a Artifact
}

// NewLogistic validates a and returns a classifier for it.
func NewLogistic(a Artifact) (*Logistic, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if a.Name == "" {
		a.Name = "logistic"
	}
	return &Logistic{a: a}, nil
}

// LoadFile reads a model artifact. Files ending in .yaml or .yml are decoded as
// YAML, anything else as JSON.
func LoadFile(path string) (*Logistic, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var a Artifact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &a)
	default:
		err = json.Unmarshal(b, &a)
	}
	if err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	m, err := NewLogistic(a)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return m, nil
}

func (m *Logistic) FeatureNames() []string {
	return append([]string(nil), m.a.FeatureNames...)
}

func (m *Logistic) Name() string { return m.a.Name }

// PredictProbability returns sigmoid(intercept + coef · scaled(x)).
func (m *Logistic) PredictProbability(ctx context.Context, x []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(x) != len(m.a.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.a.Coefficients), len(x))
	}
	z := m.a.Intercept
	for i, v := range x {
		if m.a.Scaler != nil {
			v = (v - m.a.Scaler.Mean[i]) / m.a.Scaler.Scale[i]
		}
		z += m.a.Coefficients[i] * v
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

var _ service.Classifier = (*Logistic)(nil)
