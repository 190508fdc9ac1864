package di

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/services/classifier"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideCache returns Redis behind an in-process L1 when Redis is enabled,
// otherwise a plain memory cache.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		cache.WithRedisPoolSize(cfg.Cache.Redis.PoolSize),
		cache.WithRedisTimeouts(cfg.Cache.Redis.DialTimeout, cfg.Cache.Redis.IOTimeout, cfg.Cache.Redis.IOTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		cache.WithLayeredL1TTL(cfg.Cache.L1TTL),
	), nil
}

// ProvideClickHouseClient connects to ClickHouse when it is the market-data
// source and ensures the daily bars table exists. It returns nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.MarketData.Source != config.SourceClickHouse {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf(internalrepo.DailyBarsSchema, cfg.ClickHouse.Table),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideMarketData picks the configured source and puts the cache in front of it.
func ProvideMarketData(cfg *config.Config, c cache.Service, ch *pkgch.Client, l *applogger.Logger) (repository.MarketData, error) {
	var src repository.MarketData
	switch cfg.MarketData.Source {
	case config.SourceClickHouse:
		if ch == nil {
			return nil, fmt.Errorf("market data: clickhouse client not configured")
		}
		chSrc := internalrepo.NewCHMarketData(ch.DB(), cfg.ClickHouse.Table)
		chSrc.SetLogger(l)
		src = chSrc
	default:
		src = internalrepo.NewYahooMarketData(cfg.MarketData.BaseURL, cfg.MarketData.Timeout,
			internalrepo.WithYahooRateLimit(cfg.MarketData.RPS, cfg.MarketData.Burst),
			internalrepo.WithYahooInterval(cfg.MarketData.Interval),
		)
	}
	if cfg.MarketData.CacheTTL < 0 {
		return src, nil
	}
	return internalrepo.NewCachedMarketData(src, c, cfg.MarketData.CacheTTL, l), nil
}

// ProvideClassifier loads the local model artifact or builds the remote client.
func ProvideClassifier(cfg *config.Config) (service.Classifier, error) {
	switch cfg.Model.Type {
	case config.ModelRemote:
		remote := classifier.NewRemote(cfg.Model.ServiceURL, models.FeatureNames, cfg.Model.Timeout, cfg.Model.Retries)
		return classifier.NewBreaker(remote, cfg.Model.Breaker.MaxFailures, cfg.Model.Breaker.Timeout), nil
	default:
		m, err := classifier.LoadFile(cfg.Model.Path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return m, nil
	}
}

// ProvideKafkaProducer creates a Kafka producer, or nil when events are disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithClientID("stockpulse"),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePredictionPublisher publishes to Kafka, or drops events when Kafka is off.
func ProvidePredictionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.PredictionPublisher {
	if producer == nil {
		return internalrepo.NopPredictionPublisher{}
	}
	return internalrepo.NewKafkaPredictionPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePredictionUseCase assembles the pipeline shared by the API and the CLI.
func ProvidePredictionUseCase(
	cfg *config.Config,
	data repository.MarketData,
	clf service.Classifier,
	pub repository.PredictionPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PredictionUseCase {
	return usecase.NewPredictionUseCase(usecase.PredictionDeps{
		Data:      data,
		Model:     clf,
		Threshold: cfg.Model.Threshold,
		Publisher: pub,
		Metrics:   m,
		Logger:    l,
		Timeout:   cfg.Server.WriteTimeout,
		Period:    cfg.MarketData.Period,
	})
}

// ProvidePredictHandler creates the Echo handler.
func ProvidePredictHandler(uc *usecase.PredictionUseCase, l *applogger.Logger) *api.PredictEchoHandler {
	return api.NewPredictEchoHandler(uc, l)
}

// ProvideHTTPServer creates the Echo server with routes registered.
func ProvideHTTPServer(cfg *config.Config, h *api.PredictEchoHandler, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path),
		xhttp.WithCORS(true, cfg.Server.CORSOrigins...),
		xhttp.WithRateLimit(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst),
		xhttp.WithLogger(l),
	)
}

// ProvideResources collects everything that must be closed on exit.
func ProvideResources(c cache.Service, ch *pkgch.Client, pub repository.PredictionPublisher) server.Resources {
	var res server.Resources
	if ch != nil {
		res = res.Add("clickhouse", ch)
	}
	res = res.Add("cache", c)
	res = res.Add("publisher", pub)
	return res
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, res server.Resources) *server.App {
	return server.New(cfg, l, srv, res)
}

// Pipeline is the prediction use case plus the resources it holds open.
type Pipeline struct {
	UseCase   *usecase.PredictionUseCase
	Logger    *applogger.Logger
	Resources server.Resources
}

// Close releases the pipeline's resources.
func (p *Pipeline) Close() error {
	return p.Resources.CloseAll(p.Logger)
}

// ProvidePipeline bundles the use case for callers without an HTTP server.
func ProvidePipeline(uc *usecase.PredictionUseCase, l *applogger.Logger, res server.Resources) *Pipeline {
	return &Pipeline{UseCase: uc, Logger: l, Resources: res}
}
