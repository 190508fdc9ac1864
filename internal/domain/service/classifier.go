package service

import "context"

// Classifier is a pretrained binary classifier. FeatureNames fixes the order of the
// vector passed to PredictProbability, which returns P(UP) in [0,1].
// Implementations are read-only after construction and safe for concurrent use.
type Classifier interface {
	FeatureNames() []string
	PredictProbability(ctx context.Context, vector []float64) (float64, error)
	Name() string
}
