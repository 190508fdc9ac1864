package api

import (
	"errors"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/features"
	xhttp "StockPulse/pkg/http"
)

// ToAppError maps pipeline errors onto transport errors.
func ToAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, models.ErrInput):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrDataNotFound):
		return xhttp.NotFoundError("no price data for ticker").WithError(err)
	case errors.Is(err, models.ErrInsufficientHistory):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_HISTORY", "not enough history to compute features").
			WithParam("min_bars", features.MinHistory).
			WithError(err)
	case errors.Is(err, models.ErrClassifier):
		return xhttp.BadGatewayError("ERR_CLASSIFIER", "classifier failed").WithError(err)
	case errors.Is(err, models.ErrUpstreamThrottled):
		return xhttp.ServiceUnavailableError("ERR_UPSTREAM_THROTTLED", "market data provider is rate limiting").WithError(err)
	case errors.Is(err, models.ErrUpstream):
		return xhttp.ServiceUnavailableError("ERR_UPSTREAM", "market data unavailable").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
