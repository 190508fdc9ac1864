package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
	"StockPulse/pkg/util"

	"golang.org/x/time/rate"
)

// YahooMarketData reads daily bars from the Yahoo Finance v8 chart API.
type YahooMarketData struct {
	baseURL  string
	interval string
	client   *xhttp.Client
	limiter  *rate.Limiter
	now      func() time.Time
}

// YahooOption configures YahooMarketData.
type YahooOption func(*YahooMarketData)

// WithYahooRateLimit caps outgoing requests at rps with the given burst.
func WithYahooRateLimit(rps float64, burst int) YahooOption {
	return func(y *YahooMarketData) {
		if rps > 0 {
			y.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithYahooInterval sets the bar interval, "1d" by default.
func WithYahooInterval(interval string) YahooOption {
	return func(y *YahooMarketData) {
		if interval != "" {
			y.interval = interval
		}
	}
}

// NewYahooMarketData creates a Yahoo source rooted at baseURL.
func NewYahooMarketData(baseURL string, timeout time.Duration, opts ...YahooOption) *YahooMarketData {
	y := &YahooMarketData{
		baseURL:  baseURL,
		interval: "1d",
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("Mozilla/5.0")),
		limiter:  rate.NewLimiter(rate.Inf, 0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

func (y *YahooMarketData) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
// Quote arrays hold null for bars without trades.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the bars for ticker over period. An unknown ticker yields an
// empty series, not an error.
func (y *YahooMarketData) Fetch(ctx context.Context, ticker, period string) (models.PriceSeries, error) {
	series := models.PriceSeries{Ticker: ticker}
	p, err := util.ParsePeriod(period)
	if err != nil {
		return series, fmt.Errorf("%w: %v", models.ErrInput, err)
	}
	if err := y.limiter.Wait(ctx); err != nil {
		return series, fmt.Errorf("%w: rate limiter: %w", models.ErrUpstream, err)
	}

	query := map[string][]string{"interval": {y.interval}}
	if p.Named() {
		query["range"] = []string{p.Raw}
	} else {
		end := y.now()
		query["period1"] = []string{strconv.FormatInt(p.Start(end).Unix(), 10)}
		query["period2"] = []string{strconv.FormatInt(end.Unix(), 10)}
	}

	var chart yahooChart
	err = y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/v8/finance/chart/%s", y.baseURL, url.PathEscape(ticker)),
		QueryParams: query,
	}, &chart)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			switch se.Code {
			case http.StatusNotFound:
				return series, nil
			case http.StatusTooManyRequests:
				return series, fmt.Errorf("%w: %w", models.ErrUpstream, models.ErrUpstreamThrottled)
			}
		}
		return series, fmt.Errorf("%w: yahoo %s: %w", models.ErrUpstream, ticker, err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return series, nil
		}
		return series, fmt.Errorf("%w: yahoo api error: %s", models.ErrUpstream, chart.Chart.Error.Description)
	}

	series.Bars = chartBars(chart)
	series.FetchedAt = y.now().UTC()
	return series, nil
}

func chartBars(chart yahooChart) []models.PriceBar {
	if len(chart.Chart.Result) == 0 {
		return nil
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	bars := make([]models.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // holidays and halted sessions
		}
		bars = append(bars, models.PriceBar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   orValue(at(quote.Open, i), *c),
			High:   orValue(at(quote.High, i), *c),
			Low:    orValue(at(quote.Low, i), *c),
			Close:  *c,
			Volume: orValue(at(quote.Volume, i), 0),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return dedupeDays(bars)
}

// dedupeDays keeps the last bar of each calendar day. During a session Yahoo
// appends the live bar next to the day's regular bar.
func dedupeDays(bars []models.PriceBar) []models.PriceBar {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && sameDay(out[n-1].Time, b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func at(xs []*float64, i int) *float64 {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}

func orValue(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

var _ domrepo.MarketData = (*YahooMarketData)(nil)
