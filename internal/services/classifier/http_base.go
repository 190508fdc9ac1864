package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	xhttp "StockPulse/pkg/http"
)

const (
	defaultServiceTimeout = 3 * time.Second
	retryBaseDelay        = 50 * time.Millisecond
	maxRetryDelay         = 2 * time.Second
)

// serviceClient posts JSON to the model service and retries transient failures.
type serviceClient struct {
	baseURL string
	client  *xhttp.Client
	sleep   func(ctx context.Context, d time.Duration) error
}

func newServiceClient(baseURL string, timeout time.Duration) *serviceClient {
	if timeout <= 0 {
		timeout = defaultServiceTimeout
	}
	return &serviceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("stockpulse")),
		sleep:   sleepCtx,
	}
}

func (s *serviceClient) post(ctx context.Context, path string, payload, dest interface{}) error {
	if s.baseURL == "" {
		return errors.New("model service url not configured")
	}
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.baseURL + path,
		Body:   payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// postWithRetry makes up to attempts calls. The delay grows linearly from
// retryBaseDelay, or follows the service's Retry-After when it sends one.
func (s *serviceClient) postWithRetry(ctx context.Context, path string, payload, dest interface{}, attempts int) error {
	attempts = max(attempts, 1)
	var err error
	for i := 1; ; i++ {
		if err = s.post(ctx, path, payload, dest); err == nil {
			return nil
		}
		delay, ok := retryDelay(err, i)
		if !ok || i >= attempts {
			return err
		}
		if serr := s.sleep(ctx, delay); serr != nil {
			return serr
		}
	}
}

func retryDelay(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	d := time.Duration(attempt) * retryBaseDelay
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		if !se.Retryable() {
			return 0, false
		}
		if se.RetryAfter > 0 {
			d = se.RetryAfter
		}
	}
	return min(d, maxRetryDelay), true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
