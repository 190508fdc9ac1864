package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	series models.PriceSeries
	err    error
	calls  int
}

func (c *countingSource) Name() string { return "stub" }
func (c *countingSource) Fetch(_ context.Context, ticker, _ string) (models.PriceSeries, error) {
	c.calls++
	s := c.series
	s.Ticker = ticker
	return s, c.err
}

func someBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.PriceBar{Time: t0.AddDate(0, 0, i), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100}
	}
	return bars
}

func TestCachedMarketData_HitsCacheOnSecondCall(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	inner := &countingSource{series: models.PriceSeries{Bars: someBars(3)}}
	src := NewCachedMarketData(inner, mem, time.Hour, nil)

	first, err := src.Fetch(context.Background(), "AAPL", "3mo")
	require.NoError(t, err)
	second, err := src.Fetch(context.Background(), "AAPL", "3mo")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	require.Equal(t, first.Len(), second.Len())
	assert.True(t, first.Bars[2].Time.Equal(second.Bars[2].Time))
	assert.Equal(t, "stub+cache", src.Name())
}

func TestCachedMarketData_KeysIncludePeriod(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	inner := &countingSource{series: models.PriceSeries{Bars: someBars(3)}}
	src := NewCachedMarketData(inner, mem, time.Hour, nil)

	_, _ = src.Fetch(context.Background(), "AAPL", "3mo")
	_, _ = src.Fetch(context.Background(), "AAPL", "1y")
	assert.Equal(t, 2, inner.calls)
}

func TestCachedMarketData_DoesNotCacheEmptyOrErrors(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	inner := &countingSource{}
	src := NewCachedMarketData(inner, mem, time.Hour, nil)

	_, _ = src.Fetch(context.Background(), "NEW", "3mo")
	_, _ = src.Fetch(context.Background(), "NEW", "3mo")
	assert.Equal(t, 2, inner.calls)

	inner.err = errors.New("down")
	_, err := src.Fetch(context.Background(), "NEW", "3mo")
	assert.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestCachedMarketData_ExpiresAfterTTL(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	inner := &countingSource{series: models.PriceSeries{Bars: someBars(2)}}
	src := NewCachedMarketData(inner, mem, time.Millisecond, nil)

	_, _ = src.Fetch(context.Background(), "AAPL", "3mo")
	time.Sleep(5 * time.Millisecond)
	_, _ = src.Fetch(context.Background(), "AAPL", "3mo")
	assert.Equal(t, 2, inner.calls)
}
