package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish_EncodesJSONWithHeaders(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy")
	p.clientID = "stockpulse"
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return at }

	err := p.Publish(context.Background(), "preds", []byte("AAPL"), map[string]any{"prediction": "UP"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "preds", msg.Topic)
	assert.Equal(t, []byte("AAPL"), msg.Key)
	assert.Equal(t, at, msg.Time)
	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "UP", body["prediction"])
	assert.Equal(t, []kafka.Header{
		{Key: "content-type", Value: []byte("application/json")},
		{Key: "producer", Value: []byte("stockpulse")},
	}, msg.Headers)
}

func TestPublish_RawBytesPassThrough(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "none")

	require.NoError(t, p.Publish(context.Background(), "raw", nil, []byte("x")))
	require.NoError(t, p.Publish(context.Background(), "raw", nil, "y"))
	assert.Equal(t, []byte("x"), w.msgs[0].Value)
	assert.Equal(t, []byte("y"), w.msgs[1].Value)
	assert.Empty(t, w.msgs[0].Headers)
}

func TestPublish_ErrorIsWrappedAndCounted(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&fakeWriter{err: boom}, "none")

	before := testutil.ToFloat64(producerMetrics().errors.WithLabelValues("failing"))
	err := p.Publish(context.Background(), "failing", nil, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before+1, testutil.ToFloat64(producerMetrics().errors.WithLabelValues("failing")))
}

func TestPublish_UnencodableValue(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "none")
	err := p.Publish(context.Background(), "t", nil, func() {})
	assert.Error(t, err)
	assert.Empty(t, w.msgs)
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"gzip", "snappy", "lz4", "zstd", "none", ""} {
		_, err := parseCompression(name)
		assert.NoError(t, err, name)
	}
	_, err := parseCompression("brotli")
	assert.Error(t, err)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("brotli"))
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newProducer(w, "none").Close())
	assert.True(t, w.closed)
}
