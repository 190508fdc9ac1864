package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Model types.
const (
	ModelLocal  = "local"
	ModelRemote = "remote"
)

// DefaultThreshold applies when model.threshold is absent.
const DefaultThreshold = 0.5

// Market-data sources.
const (
	SourceYahoo      = "yahoo"
	SourceClickHouse = "clickhouse"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		RateLimit       struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Model struct {
		Type       string        `yaml:"type"`
		Path       string        `yaml:"path"`
		Threshold  float64       `yaml:"threshold"`
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
		Retries    int           `yaml:"retries"`
		Breaker    struct {
			MaxFailures int           `yaml:"max_failures"`
			Timeout     time.Duration `yaml:"timeout"`
		} `yaml:"breaker"`
	} `yaml:"model"`
	MarketData struct {
		Source   string        `yaml:"source"`
		BaseURL  string        `yaml:"base_url"`
		Period   string        `yaml:"period"`
		Interval string        `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
		RPS      float64       `yaml:"rps"`
		Burst    int           `yaml:"burst"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"market_data"`
	Cache struct {
		Redis struct {
			Enabled     bool          `yaml:"enabled"`
			Host        string        `yaml:"host"`
			Port        int           `yaml:"port"`
			Password    string        `yaml:"password"`
			DB          int           `yaml:"db"`
			Prefix      string        `yaml:"prefix"`
			PoolSize    int           `yaml:"pool_size"`
			DialTimeout time.Duration `yaml:"dial_timeout"`
			IOTimeout   time.Duration `yaml:"io_timeout"`
		} `yaml:"redis"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
		L1TTL         time.Duration `yaml:"l1_ttl"`
	} `yaml:"cache"`
	ClickHouse struct {
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		Database    string        `yaml:"database"`
		User        string        `yaml:"user"`
		Password    string        `yaml:"password"`
		Table       string        `yaml:"table"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	// preset so an explicit threshold of 0 survives decoding
	c.Model.Threshold = DefaultThreshold
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := getenv("MODEL_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MODEL_THRESHOLD: %w", err)
		}
		c.Model.Threshold = f
	}
	if v := getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
		c.Model.Type = ModelRemote
	}
	if v := getenv("MARKET_DATA_SOURCE"); v != "" {
		c.MarketData.Source = v
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = p
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = int(math.Ceil(c.Server.RateLimit.RPS))
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Model.Type == "" {
		c.Model.Type = ModelLocal
	}
	if c.Model.Timeout == 0 {
		c.Model.Timeout = 3 * time.Second
	}
	if c.Model.Breaker.MaxFailures == 0 {
		c.Model.Breaker.MaxFailures = 3
	}
	if c.Model.Breaker.Timeout == 0 {
		c.Model.Breaker.Timeout = 30 * time.Second
	}
	if c.MarketData.Source == "" {
		c.MarketData.Source = SourceYahoo
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.MarketData.Period == "" {
		c.MarketData.Period = "3mo"
	}
	if c.MarketData.Interval == "" {
		c.MarketData.Interval = "1d"
	}
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = 10 * time.Second
	}
	if c.MarketData.RPS == 0 {
		c.MarketData.RPS = 2
	}
	if c.MarketData.Burst == 0 {
		c.MarketData.Burst = 4
	}
	if c.MarketData.CacheTTL == 0 {
		c.MarketData.CacheTTL = time.Hour
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "stockpulse"
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 1000
	}
	if c.ClickHouse.Table == "" {
		c.ClickHouse.Table = "daily_bars"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "stockpulse.predictions"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Model.Threshold < 0 || c.Model.Threshold > 1 {
		return fmt.Errorf("model.threshold must be in [0,1], got %v", c.Model.Threshold)
	}
	switch c.Model.Type {
	case ModelLocal:
		if c.Model.Path == "" {
			return fmt.Errorf("model.path is required for local models")
		}
	case ModelRemote:
		if c.Model.ServiceURL == "" {
			return fmt.Errorf("model.service_url is required for remote models")
		}
	default:
		return fmt.Errorf("model.type must be '%s' or '%s', got '%s'", ModelLocal, ModelRemote, c.Model.Type)
	}
	switch c.MarketData.Source {
	case SourceYahoo:
	case SourceClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required when market_data.source is clickhouse")
		}
	default:
		return fmt.Errorf("market_data.source must be '%s' or '%s', got '%s'", SourceYahoo, SourceClickHouse, c.MarketData.Source)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
