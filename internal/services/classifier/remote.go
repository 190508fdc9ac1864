package classifier

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
)

// PredictPath is the model service endpoint.
const PredictPath = "/direction/predict"

// Remote asks an external model service for P(UP). Features are sent by name
// so the service can reorder them as it needs.
type Remote struct {
	svc     *serviceClient
	names   []string
	retries int
}

type directionReq struct {
	Features map[string]float64 `json:"features"`
}

// directionResp leaves ProbaUp nil when the service omits it or sends null.
type directionResp struct {
	ProbaUp *float64 `json:"proba_up"`
}

// NewRemote creates a remote classifier that sends names in that order.
func NewRemote(baseURL string, names []string, timeout time.Duration, retries int) *Remote {
	return &Remote{
		svc:     newServiceClient(baseURL, timeout),
		names:   append([]string(nil), names...),
		retries: retries,
	}
}

func (r *Remote) FeatureNames() []string { return append([]string(nil), r.names...) }

func (r *Remote) Name() string { return "remote" }

func (r *Remote) PredictProbability(ctx context.Context, x []float64) (float64, error) {
	if len(x) != len(r.names) {
		return 0, fmt.Errorf("expected %d features, got %d", len(r.names), len(x))
	}
	req := directionReq{Features: make(map[string]float64, len(x))}
	for i, n := range r.names {
		req.Features[n] = x[i]
	}
	var resp directionResp
	if err := r.svc.postWithRetry(ctx, PredictPath, req, &resp, r.retries); err != nil {
		return 0, fmt.Errorf("post direction: %w", err)
	}
	if resp.ProbaUp == nil {
		return 0, fmt.Errorf("%w: response has no proba_up", models.ErrClassifier)
	}
	return *resp.ProbaUp, nil
}

var _ service.Classifier = (*Remote)(nil)
