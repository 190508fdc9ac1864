package repository

import (
	"context"
	"errors"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/cache"
	applogger "StockPulse/pkg/logger"
)

// lockTTL bounds how long one caller may hold the refill lock for a key.
const lockTTL = 15 * time.Second

// CachedMarketData serves recent fetches from a cache. Only non-empty series
// are cached, so a ticker that starts trading is picked up on the next call.
type CachedMarketData struct {
	inner domrepo.MarketData
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedMarketData(inner domrepo.MarketData, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedMarketData {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedMarketData{inner: inner, cache: c, ttl: ttl, l: l}
}

func (s *CachedMarketData) Name() string { return s.inner.Name() + "+cache" }

func (s *CachedMarketData) Fetch(ctx context.Context, ticker, period string) (models.PriceSeries, error) {
	key := cache.GenerateKeyWithParams("bars", s.inner.Name(), ticker, period)

	var cached models.PriceSeries
	if err := s.cache.Get(ctx, key, &cached); err == nil && !cached.Empty() {
		return cached, nil
	} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.l.Warn("market data cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	// Only one caller refills a key. Losers still fetch; the lock only keeps
	// them from overwriting the winner's entry.
	lockKey := key + ":lock"
	locked, lerr := s.cache.TryLock(ctx, lockKey, lockTTL)
	if lerr != nil {
		locked = false
	}
	if locked {
		defer func() { _ = s.cache.Unlock(context.WithoutCancel(ctx), lockKey) }()
	}

	series, err := s.inner.Fetch(ctx, ticker, period)
	if err != nil || series.Empty() || !locked {
		return series, err
	}
	if err := s.cache.Set(ctx, key, series, s.ttl); err != nil {
		s.l.Warn("market data cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return series, nil
}

var _ domrepo.MarketData = (*CachedMarketData)(nil)
