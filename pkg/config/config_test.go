package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	c, err := Parse([]byte("model:\n  path: models/direction.json\n"))
	require.NoError(t, err)

	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, ModelLocal, c.Model.Type)
	assert.Equal(t, 0.5, c.Model.Threshold)
	assert.Equal(t, SourceYahoo, c.MarketData.Source)
	assert.Equal(t, "3mo", c.MarketData.Period)
	assert.Equal(t, "1d", c.MarketData.Interval)
	assert.Equal(t, time.Hour, c.MarketData.CacheTTL)
	assert.Equal(t, "/metrics", c.Metrics.Path)
}

func TestParse_ExplicitZeroThreshold(t *testing.T) {
	c, err := Parse([]byte("model:\n  path: m.json\n  threshold: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Model.Threshold)

	c, err = Parse([]byte("model:\n  path: m.json\n  threshold: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Model.Threshold)
}

func TestParse_Validation(t *testing.T) {
	cases := map[string]string{
		"threshold above one":   "model:\n  path: m.json\n  threshold: 1.5\n",
		"local without path":    "model:\n  type: local\n",
		"remote without url":    "model:\n  type: remote\n",
		"unknown model type":    "model:\n  type: onnx\n  path: m.onnx\n",
		"unknown source":        "model:\n  path: m.json\nmarket_data:\n  source: csv\n",
		"clickhouse no host":    "model:\n  path: m.json\nmarket_data:\n  source: clickhouse\n",
		"kafka without brokers": "model:\n  path: m.json\nkafka:\n  enabled: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte("model:\n  path: m.json\n"))
	require.NoError(t, err)

	env := map[string]string{
		"MODEL_THRESHOLD":   "0.55",
		"MODEL_SERVICE_URL": "http://model:9000",
		"KAFKA_BROKERS":     "k1:9092,k2:9092",
		"HTTP_PORT":         "9090",
		"LOG_LEVEL":         "debug",
	}
	require.NoError(t, c.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, 0.55, c.Model.Threshold)
	assert.Equal(t, ModelRemote, c.Model.Type)
	assert.Equal(t, "http://model:9000", c.Model.ServiceURL)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "debug", c.Logger.Level)
	assert.NoError(t, c.Validate())
}

func TestApplyEnv_BadThreshold(t *testing.T) {
	c := &Config{}
	err := c.applyEnv(func(k string) string {
		if k == "MODEL_THRESHOLD" {
			return "high"
		}
		return ""
	})
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\nserver:\n  port: 8081\nmodel:\n  path: m.json\n  threshold: 0.6\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8081, c.Server.Port)
	assert.Equal(t, 0.6, c.Model.Threshold)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_SampleConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ModelLocal, c.Model.Type)
	assert.Equal(t, "models/direction.json", c.Model.Path)
	assert.Equal(t, 3, c.Model.Breaker.MaxFailures)
	assert.Equal(t, SourceYahoo, c.MarketData.Source)
	assert.Equal(t, 2.0, c.MarketData.RPS)
	assert.Equal(t, 5.0, c.Server.RateLimit.RPS)
	assert.False(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
}
