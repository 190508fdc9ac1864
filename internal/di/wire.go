//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

var pipelineSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideMetrics,

	// Infrastructure clients
	ProvideCache,
	ProvideClickHouseClient,
	ProvideKafkaProducer,

	// Repositories and model
	ProvideMarketData,
	ProvideClassifier,
	ProvidePredictionPublisher,

	// Use cases
	ProvidePredictionUseCase,

	ProvideResources,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		pipelineSet,
		ProvidePredictHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializePipeline wires the prediction use case without the HTTP server.
func InitializePipeline(cfg *config.Config) (*Pipeline, error) {
	wire.Build(
		pipelineSet,
		ProvidePipeline,
	)
	return &Pipeline{}, nil
}
