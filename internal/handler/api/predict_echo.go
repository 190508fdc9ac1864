package api

import (
	"context"
	"net/http"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionService is the slice of the prediction use case the handlers need.
type PredictionService interface {
	Predict(ctx context.Context, ticker, period string) (models.PredictionResult, error)
	Features(ctx context.Context, ticker, period string, limit int, completeOnly bool) (models.FeatureTable, error)
	ModelInfo() (usecase.ModelInfo, bool)
}

// PredictEchoHandler serves prediction endpoints using Echo.
type PredictEchoHandler struct {
	svc    PredictionService
	logger *xlogger.Logger
	now    func() time.Time
}

func NewPredictEchoHandler(svc PredictionService, logger *xlogger.Logger) *PredictEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PredictEchoHandler{svc: svc, logger: logger, now: time.Now}
}

// RegisterRoutes mounts the handlers on e.
func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Health)
	e.GET("/predict", h.PredictPlain)

	api := e.Group("/api")
	api.GET("/predict", h.Predict)
	api.GET("/features", h.Features)
	api.GET("/model", h.Model)
}

// HealthResponse is the body of GET /.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Model       string `json:"model,omitempty"`
	MarketData  string `json:"market_data,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// PredictionResponse is the JSON view of a PredictionResult.
type PredictionResponse struct {
	Ticker        string  `json:"ticker"`
	Prediction    string  `json:"prediction"`
	ProbabilityUp float64 `json:"probability_up"`
	Confidence    string  `json:"confidence"`
	Threshold     float64 `json:"threshold"`
	AsOf          string  `json:"as_of"`
	Timestamp     string  `json:"timestamp"`
}

// FeatureRowResponse is one row of GET /api/features. Missing values are null.
type FeatureRowResponse struct {
	Date     string              `json:"date"`
	Close    float64             `json:"close"`
	Complete bool                `json:"complete"`
	Features map[string]*float64 `json:"features"`
}

func NewPredictionResponse(r models.PredictionResult) PredictionResponse {
	return PredictionResponse{
		Ticker:        r.Ticker,
		Prediction:    string(r.Prediction),
		ProbabilityUp: r.ProbabilityUp,
		Confidence:    string(r.Confidence),
		Threshold:     r.Threshold,
		AsOf:          r.AsOf.Format(time.DateOnly),
		Timestamp:     r.Timestamp.Format(time.RFC3339),
	}
}

func NewFeatureRowResponse(row models.FeatureRow) FeatureRowResponse {
	out := FeatureRowResponse{
		Date:     row.Time.Format(time.DateOnly),
		Close:    row.Close,
		Complete: row.Complete(models.FeatureNames),
		Features: make(map[string]*float64, len(models.FeatureNames)),
	}
	for _, name := range models.FeatureNames {
		out.Features[name] = row.Get(name).Ptr()
	}
	return out
}

func (h *PredictEchoHandler) Health(c echo.Context) error {
	info, loaded := h.svc.ModelInfo()
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "running",
		ModelLoaded: loaded,
		Model:       info.Name,
		MarketData:  info.Source,
		Timestamp:   h.now().Format(time.RFC3339),
	})
}

// PredictPlain answers GET /predict with the bare result object.
func (h *PredictEchoHandler) PredictPlain(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Predict(c.Request().Context(), req.Ticker, req.Period)
	if err != nil {
		appErr := ToAppError(err)
		return c.JSON(appErr.Status, appErr)
	}
	return c.JSON(http.StatusOK, NewPredictionResponse(res))
}

func (h *PredictEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Predict(c.Request().Context(), req.Ticker, req.Period)
	if err != nil {
		return xhttp.AppErrorResponse(c, ToAppError(err))
	}
	return xhttp.SuccessResponse(c, NewPredictionResponse(res))
}

func (h *PredictEchoHandler) Features(c echo.Context) error {
	req := &models.FeaturesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	table, err := h.svc.Features(c.Request().Context(), req.Ticker, req.Period, req.Limit, req.Complete)
	if err != nil {
		return xhttp.AppErrorResponse(c, ToAppError(err))
	}
	rows := make([]FeatureRowResponse, 0, table.Len())
	for _, row := range table.Rows {
		rows = append(rows, NewFeatureRowResponse(row))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictEchoHandler) Model(c echo.Context) error {
	info, loaded := h.svc.ModelInfo()
	if !loaded {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("ERR_MODEL_NOT_LOADED", "model not loaded"))
	}
	return xhttp.SuccessResponse(c, info)
}
