package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes single JSON events. Writes are not batched: one
// request produces at most one event.
type Producer struct {
	w        messageWriter
	comp     string
	clientID string
	now      func() time.Time
}

// NewProducer creates a new Kafka producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: 1,
		Compression:  "snappy",
		MaxAttempts:  3,
		WriteTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	comp, err := parseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	bal := kafka.Balancer(&kafka.LeastBytes{})
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	p := newProducer(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  comp,
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		Async:        cfg.Async,
		Completion: func(msgs []kafka.Message, err error) {
			if cfg.Async && err != nil {
				for _, m := range msgs {
					producerMetrics().errors.WithLabelValues(m.Topic).Inc()
				}
			}
		},
	}, cfg.Compression)
	p.clientID = cfg.ClientID
	return p, nil
}

func newProducer(w messageWriter, comp string) *Producer {
	return &Producer{w: w, comp: comp, now: time.Now}
}

// Publish sends value to topic under key. Values other than []byte and
// string are JSON encoded.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	start := time.Now()
	msg, err := p.message(topic, key, value)
	if err != nil {
		return err
	}

	err = p.w.WriteMessages(ctx, msg)
	m := producerMetrics()
	result := "ok"
	if err != nil {
		result = "error"
		m.errors.WithLabelValues(topic).Inc()
	}
	m.messages.WithLabelValues(topic, p.comp, result).Inc()
	m.bytes.WithLabelValues(topic, p.comp).Add(float64(len(msg.Value)))
	m.latency.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) message(topic string, key []byte, value interface{}) (kafka.Message, error) {
	msg := kafka.Message{Topic: topic, Key: key, Time: p.now()}
	switch val := value.(type) {
	case []byte:
		msg.Value = val
	case string:
		msg.Value = []byte(val)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return kafka.Message{}, fmt.Errorf("marshal value: %w", err)
		}
		msg.Value = b
		msg.Headers = append(msg.Headers, kafka.Header{Key: "content-type", Value: []byte("application/json")})
	}
	if p.clientID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "producer", Value: []byte(p.clientID)})
	}
	return msg, nil
}

// Close flushes pending writes and closes the producer.
func (p *Producer) Close() error {
	if p.w != nil {
		return p.w.Close()
	}
	return nil
}

func parseCompression(s string) (kafka.Compression, error) {
	switch s {
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	case "none", "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown kafka compression %q", s)
	}
}

type metricSet struct {
	messages *prometheus.CounterVec
	errors   *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	metricsSet  *metricSet
)

func producerMetrics() *metricSet {
	metricsOnce.Do(func() {
		metricsSet = &metricSet{
			messages: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stockpulse_kafka_producer_messages_total",
					Help: "Total messages published to Kafka",
				},
				[]string{"topic", "compression", "result"},
			),
			errors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stockpulse_kafka_producer_errors_total",
					Help: "Total producer errors, including async completions",
				},
				[]string{"topic"},
			),
			bytes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stockpulse_kafka_producer_bytes_total",
					Help: "Total payload bytes published",
				},
				[]string{"topic", "compression"},
			),
			latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "stockpulse_kafka_producer_publish_seconds",
					Help:    "Publish latency",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"topic"},
			),
		}
	})
	return metricsSet
}
