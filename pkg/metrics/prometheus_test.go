package metrics

import (
	"testing"

	"StockPulse/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordPrediction("AAPL", models.DirectionUp, models.ConfidenceHigh, 0.71)
	r.RecordPrediction("MSFT", models.DirectionUp, models.ConfidenceHigh, 0.65)
	r.RecordError("insufficient_history")
	r.RecordLatency("predict", 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.predictions.WithLabelValues("UP", "HIGH")))
	assert.Equal(t, 0.71, testutil.ToFloat64(r.lastProb.WithLabelValues("AAPL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("insufficient_history")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}
