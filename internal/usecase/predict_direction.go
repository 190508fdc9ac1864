package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/services/features"
	"StockPulse/internal/services/predictor"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// Error kinds reported to metrics.
const (
	KindNotFound     = "not_found"
	KindInsufficient = "insufficient_history"
	KindClassifier   = "classifier"
	KindUpstream     = "upstream"
	KindInput        = "input"
	KindInternal     = "internal"
)

// PredictionUseCase runs the fetch → derive → predict pipeline for one ticker.
// It is shared by the HTTP API and the CLI.
type PredictionUseCase struct {
	data      domrepo.MarketData
	clf       domsvc.Classifier
	threshold float64
	publisher domrepo.PredictionPublisher
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	timeout   time.Duration
	period    string
}

// PredictionDeps groups the collaborators of PredictionUseCase.
type PredictionDeps struct {
	Data      domrepo.MarketData
	Model     domsvc.Classifier
	Threshold float64
	Publisher domrepo.PredictionPublisher
	Metrics   domrepo.Metrics
	Logger    *applogger.Logger
	Timeout   time.Duration
	// Period is the lookback used when a request names none.
	Period string
}

func NewPredictionUseCase(d PredictionDeps) *PredictionUseCase {
	uc := &PredictionUseCase{
		data:      d.Data,
		clf:       d.Model,
		threshold: d.Threshold,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		logger:    d.Logger,
		timeout:   d.Timeout,
		period:    d.Period,
	}
	if uc.logger == nil {
		uc.logger = applogger.Nop()
	}
	if uc.timeout <= 0 {
		uc.timeout = 30 * time.Second
	}
	if uc.period == "" {
		uc.period = util.DefaultPeriod
	}
	return uc
}

// ModelInfo describes the loaded classifier for health reporting.
type ModelInfo struct {
	Name      string   `json:"name"`
	Features  []string `json:"features"`
	Threshold float64  `json:"threshold"`
	Source    string   `json:"market_data"`
}

func (uc *PredictionUseCase) ModelInfo() (ModelInfo, bool) {
	if uc.clf == nil {
		return ModelInfo{Threshold: uc.threshold}, false
	}
	return ModelInfo{
		Name:      uc.clf.Name(),
		Features:  uc.clf.FeatureNames(),
		Threshold: uc.threshold,
		Source:    uc.data.Name(),
	}, true
}

// Predict returns the direction call for ticker's newest complete feature row.
func (uc *PredictionUseCase) Predict(ctx context.Context, ticker, period string) (models.PredictionResult, error) {
	start := time.Now()
	ticker = util.NormalizeTicker(ticker)

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	table, err := uc.featureTable(ctx, ticker, period)
	if err != nil {
		return models.PredictionResult{}, uc.fail("predict", ticker, err)
	}
	row, err := features.LatestComplete(table, nil)
	if err != nil {
		return models.PredictionResult{}, uc.fail("predict", ticker, err)
	}

	clfStart := time.Now()
	res, err := predictor.Predict(ctx, ticker, row, uc.clf, uc.threshold)
	uc.observe("classify", clfStart)
	if err != nil {
		return models.PredictionResult{}, uc.fail("predict", ticker, err)
	}

	uc.observe("predict", start)
	if uc.metrics != nil {
		uc.metrics.RecordPrediction(ticker, res.Prediction, res.Confidence, res.RawProbability)
	}
	uc.publish(ctx, res)

	uc.logger.Info("prediction served",
		applogger.String("ticker", ticker),
		applogger.String("prediction", string(res.Prediction)),
		applogger.Float64("probability_up", res.ProbabilityUp),
		applogger.String("confidence", string(res.Confidence)),
		applogger.String("as_of", res.AsOf.Format(time.DateOnly)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return res, nil
}

// Features returns the derived feature table for ticker, trimmed to the last
// limit rows. completeOnly drops rows with any missing feature first.
func (uc *PredictionUseCase) Features(ctx context.Context, ticker, period string, limit int, completeOnly bool) (models.FeatureTable, error) {
	ticker = util.NormalizeTicker(ticker)

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	table, err := uc.featureTable(ctx, ticker, period)
	if err != nil {
		return models.FeatureTable{}, uc.fail("features", ticker, err)
	}
	if completeOnly {
		table = features.CompleteRows(table, nil)
	}
	return table.Tail(limit), nil
}

func (uc *PredictionUseCase) featureTable(ctx context.Context, ticker, period string) (models.FeatureTable, error) {
	if ticker == "" {
		return models.FeatureTable{}, fmt.Errorf("empty ticker: %w", models.ErrInput)
	}
	if period == "" {
		period = uc.period
	}
	if _, err := util.ParsePeriod(period); err != nil {
		return models.FeatureTable{}, fmt.Errorf("%w: %v", models.ErrInput, err)
	}

	fetchStart := time.Now()
	series, err := uc.data.Fetch(ctx, ticker, period)
	uc.observe("fetch", fetchStart)
	if err != nil {
		return models.FeatureTable{}, err
	}
	if series.Empty() {
		return models.FeatureTable{}, fmt.Errorf("%s: %w", ticker, models.ErrDataNotFound)
	}
	series.Ticker = ticker
	return features.DeriveFeatures(series), nil
}

func (uc *PredictionUseCase) publish(ctx context.Context, res models.PredictionResult) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishPrediction(ctx, res); err != nil {
		// events are best effort; the caller already has its answer
		uc.logger.Warn("prediction event not published",
			applogger.String("ticker", res.Ticker),
			applogger.Error(err),
		)
	}
}

func (uc *PredictionUseCase) fail(op, ticker string, err error) error {
	kind := ErrorKind(err)
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
	fields := []applogger.Field{
		applogger.String("op", op),
		applogger.String("ticker", ticker),
		applogger.String("kind", kind),
		applogger.Error(err),
	}
	switch kind {
	case KindNotFound, KindInsufficient, KindInput:
		uc.logger.Info("request rejected", fields...)
	default:
		uc.logger.Error("pipeline failed", fields...)
	}
	return err
}

func (uc *PredictionUseCase) observe(op string, since time.Time) {
	if uc.metrics != nil {
		uc.metrics.RecordLatency(op, time.Since(since).Seconds())
	}
}

// ErrorKind classifies a pipeline error for metrics and transport mapping.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrDataNotFound):
		return KindNotFound
	case errors.Is(err, models.ErrInsufficientHistory):
		return KindInsufficient
	case errors.Is(err, models.ErrClassifier):
		return KindClassifier
	case errors.Is(err, models.ErrUpstream):
		return KindUpstream
	case errors.Is(err, models.ErrInput):
		return KindInput
	default:
		return KindInternal
	}
}
