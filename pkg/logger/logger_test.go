package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsAreEncoded(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.DebugLevel).With(String("component", "predictor"))

	log.Info("prediction served",
		String("ticker", "AAPL"),
		Float64("probability", 0.6234),
		Int("rows", 12),
		Bool("high", false),
		Strings("brokers", []string{"k1:9092", "k2:9092"}),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("none")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "prediction served", entry["message"])
	assert.Equal(t, "predictor", entry["component"])
	assert.Equal(t, "AAPL", entry["ticker"])
	assert.Equal(t, 0.6234, entry["probability"])
	assert.Equal(t, float64(12), entry["rows"])
	assert.Equal(t, float64(1500), entry["took"])
	assert.Equal(t, "none", entry["error"])
	assert.Equal(t, []interface{}{"k1:9092", "k2:9092"}, entry["brokers"])
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("ignored", String("k", "v")) })
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestLevelIsPerLogger(t *testing.T) {
	var quiet, loud bytes.Buffer
	NewWriter(&quiet, zerolog.WarnLevel).Info("dropped")
	NewWriter(&loud, zerolog.DebugLevel).Debug("kept")

	assert.Empty(t, quiet.String())
	assert.Contains(t, loud.String(), "kept")
}

func TestWithCarriesErrorsAndDurations(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.InfoLevel).With(
		Error(errors.New("upstream down")),
		Duration("budget", 2*time.Second),
	)
	log.Warn("degraded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "upstream down", entry["error"])
	assert.Equal(t, float64(2000), entry["budget"])
}
