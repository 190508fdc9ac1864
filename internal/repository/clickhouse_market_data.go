package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// DailyBarsSchema creates the table CHMarketData reads from.
const DailyBarsSchema = `
CREATE TABLE IF NOT EXISTS %s (
    ticker LowCardinality(String),
    date   Date,
    open   Float64,
    high   Float64,
    low    Float64,
    close  Float64,
    volume Float64
) ENGINE = ReplacingMergeTree
ORDER BY (ticker, date)`

// CHMarketData implements MarketData backed by a ClickHouse daily bars table.
type CHMarketData struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

func NewCHMarketData(db *sql.DB, table string) *CHMarketData {
	return &CHMarketData{db: db, table: table, now: time.Now}
}

// SetLogger injects a structured logger.
func (s *CHMarketData) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketData) Name() string { return "clickhouse" }

func (s *CHMarketData) Fetch(ctx context.Context, ticker, period string) (models.PriceSeries, error) {
	series := models.PriceSeries{Ticker: ticker}
	p, err := util.ParsePeriod(period)
	if err != nil {
		return series, fmt.Errorf("%w: %v", models.ErrInput, err)
	}
	start := time.Now()
	from := p.Start(s.now().UTC())

	// FINAL collapses rows re-ingested for the same day
	const qtpl = `
        SELECT date, open, high, low, close, volume
        FROM %s FINAL
        WHERE ticker = ? AND date >= ?
        ORDER BY date ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, ticker, from)
	if err != nil {
		s.logError("clickhouse fetch query error", ticker, err)
		return series, fmt.Errorf("%w: query bars: %w", models.ErrUpstream, err)
	}
	defer rows.Close()

	bars := make([]models.PriceBar, 0, 256)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.logError("clickhouse fetch scan error", ticker, err)
			return series, fmt.Errorf("%w: scan bar: %w", models.ErrUpstream, err)
		}
		b.Time = b.Time.UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse fetch rows error", ticker, err)
		return series, fmt.Errorf("%w: rows: %w", models.ErrUpstream, err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse fetch ok",
			applogger.String("table", s.table),
			applogger.String("ticker", ticker),
			applogger.String("period", p.Raw),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}

	series.Bars = bars
	series.FetchedAt = s.now().UTC()
	return series, nil
}

func (s *CHMarketData) logError(msg, ticker string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("ticker", ticker),
		applogger.Error(err),
	)
}

var _ domrepo.MarketData = (*CHMarketData)(nil)
