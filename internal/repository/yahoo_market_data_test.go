package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1704205800, 1704292200, 1704378600, 1704465000, 1704465060],
      "indicators": {"quote": [{
        "open":   [187.15, 184.22, null, 181.99, 182.00],
        "high":   [188.44, 185.88, null, 182.76, 182.90],
        "low":    [183.89, 183.43, null, 180.17, 180.10],
        "close":  [185.64, 184.25, null, 181.18, 181.50],
        "volume": [82488700, 58414500, null, 71983600, 72000000]
      }]}
    }],
    "error": null
  }
}`

func TestYahooMarketData_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "3mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	y := NewYahooMarketData(srv.URL, time.Second)
	s, err := y.Fetch(context.Background(), "AAPL", "3mo")
	require.NoError(t, err)

	require.Equal(t, 3, s.Len(), "null bar dropped and same-day bars collapsed")
	assert.Equal(t, "AAPL", s.Ticker)
	assert.Equal(t, 185.64, s.Bars[0].Close)
	assert.Equal(t, 82488700.0, s.Bars[0].Volume)
	assert.Equal(t, 181.5, s.Bars[2].Close, "later same-day bar wins")
	for i := 1; i < s.Len(); i++ {
		assert.True(t, s.Bars[i-1].Time.Before(s.Bars[i].Time))
	}
}

func TestYahooMarketData_DayCountUsesExplicitWindow(t *testing.T) {
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Empty(t, q.Get("range"))
		assert.Equal(t, "1711065600", q.Get("period1"))
		assert.Equal(t, "1711929600", q.Get("period2"))
		_, _ = w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	y := NewYahooMarketData(srv.URL, time.Second)
	y.now = func() time.Time { return end }
	_, err := y.Fetch(context.Background(), "AAPL", "10d")
	require.NoError(t, err)
}

func TestYahooMarketData_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	s, err := NewYahooMarketData(srv.URL, time.Second).Fetch(context.Background(), "NOPE", "3mo")
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestYahooMarketData_Throttled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewYahooMarketData(srv.URL, time.Second).Fetch(context.Background(), "AAPL", "3mo")
	assert.ErrorIs(t, err, models.ErrUpstreamThrottled)
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestYahooMarketData_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewYahooMarketData(srv.URL, time.Second).Fetch(context.Background(), "AAPL", "3mo")
	assert.ErrorIs(t, err, models.ErrUpstream)
	assert.NotErrorIs(t, err, models.ErrUpstreamThrottled)
}

func TestYahooMarketData_InvalidPeriod(t *testing.T) {
	_, err := NewYahooMarketData("http://unused", time.Second).Fetch(context.Background(), "AAPL", "3w")
	assert.ErrorIs(t, err, models.ErrInput)
}

func TestYahooMarketData_RateLimiterHonoursContext(t *testing.T) {
	y := NewYahooMarketData("http://unused", time.Second, WithYahooRateLimit(0.001, 1))
	// drain the single token
	require.True(t, y.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := y.Fetch(ctx, "AAPL", "3mo")
	assert.ErrorIs(t, err, models.ErrUpstream)
}
