package classifier

import (
	"context"
	"errors"
	"time"

	"StockPulse/internal/domain/service"

	cb "github.com/sony/gobreaker"
)

// Breaker guards a classifier with a circuit breaker. After maxFailures
// consecutive failures calls fail fast with gobreaker.ErrOpenState until
// openFor has elapsed.
type Breaker struct {
	inner service.Classifier
	cb    *cb.CircuitBreaker
}

// NewBreaker wraps inner.
func NewBreaker(inner service.Classifier, maxFailures int, openFor time.Duration) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	st := cb.Settings{Name: inner.Name()}
	st.Interval = 60 * time.Second
	st.Timeout = openFor
	st.ReadyToTrip = func(counts cb.Counts) bool {
		return counts.ConsecutiveFailures >= uint32(maxFailures)
	}
	// caller cancellations say nothing about the model service
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}
	return &Breaker{inner: inner, cb: cb.NewCircuitBreaker(st)}
}

func (b *Breaker) FeatureNames() []string { return b.inner.FeatureNames() }

func (b *Breaker) Name() string { return b.inner.Name() }

// State reports the breaker state, e.g. "closed" or "open".
func (b *Breaker) State() string { return b.cb.State().String() }

func (b *Breaker) PredictProbability(ctx context.Context, x []float64) (float64, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.PredictProbability(ctx, x)
	})
	if err != nil {
		return 0, err
	}
	return out.(float64), nil
}

var _ service.Classifier = (*Breaker)(nil)
