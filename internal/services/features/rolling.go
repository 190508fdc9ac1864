package features

import (
	"math"

	"StockPulse/internal/domain/models"
)

// PctChange returns xs[i]/xs[i-k] - 1, missing for the first k entries and
// wherever the ratio is undefined.
func PctChange(xs []float64, k int) []models.Value {
	out := make([]models.Value, len(xs))
	for i := k; i < len(xs); i++ {
		out[i] = models.Some(xs[i]/xs[i-k] - 1)
	}
	return out
}

// RollingMean is the trailing mean over window w. A window containing any
// missing value yields missing.
func RollingMean(xs []models.Value, w int) []models.Value {
	out := make([]models.Value, len(xs))
	if w <= 0 {
		return out
	}
	for i := w - 1; i < len(xs); i++ {
		sum, ok := windowSum(xs[i-w+1 : i+1])
		if !ok {
			continue
		}
		out[i] = models.Some(sum / float64(w))
	}
	return out
}

// RollingStd is the trailing sample standard deviation (ddof=1) over window w.
func RollingStd(xs []models.Value, w int) []models.Value {
	out := make([]models.Value, len(xs))
	if w <= 1 {
		return out
	}
	for i := w - 1; i < len(xs); i++ {
		win := xs[i-w+1 : i+1]
		sum, ok := windowSum(win)
		if !ok {
			continue
		}
		mean := sum / float64(w)
		ss := 0.0
		for _, v := range win {
			d := v.V - mean
			ss += d * d
		}
		out[i] = models.Some(math.Sqrt(ss / float64(w-1)))
	}
	return out
}

// RSI is the rolling-mean variant of the relative strength index: average gain
// and average loss are simple trailing means of the last period deltas. It is
// 100 when there were no losses and some gain, and missing when both are zero.
func RSI(closes []float64, period int) []models.Value {
	n := len(closes)
	gain := make([]models.Value, n)
	loss := make([]models.Value, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		gain[i] = models.Some(math.Max(d, 0))
		loss[i] = models.Some(math.Max(-d, 0))
	}
	avgGain := RollingMean(gain, period)
	avgLoss := RollingMean(loss, period)

	out := make([]models.Value, n)
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		if !g.OK || !l.OK {
			continue
		}
		switch {
		case l.V == 0 && g.V > 0:
			out[i] = models.Some(100)
		case l.V == 0:
			// flat window, undefined
		default:
			rs := g.V / l.V
			out[i] = models.Some(100 - 100/(1+rs))
		}
	}
	return out
}

func windowSum(win []models.Value) (float64, bool) {
	sum := 0.0
	for _, v := range win {
		if !v.OK {
			return 0, false
		}
		sum += v.V
	}
	return sum, true
}

func present(xs []float64) []models.Value {
	out := make([]models.Value, len(xs))
	for i, x := range xs {
		out[i] = models.Some(x)
	}
	return out
}
