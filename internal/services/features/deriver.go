package features

import (
	"fmt"

	"StockPulse/internal/domain/models"
)

// Window lengths of the production feature set.
const (
	RSIPeriod        = 14
	VolatilityWindow = 20
	VolumeWindow     = 20
	// MinHistory is the number of bars needed before the first row can be complete.
	MinHistory = 50
)

// DeriveFeatures computes one FeatureRow per bar. Rows without enough trailing
// history carry missing values; the input series is not modified.
func DeriveFeatures(series models.PriceSeries) models.FeatureTable {
	n := len(series.Bars)
	table := models.FeatureTable{Ticker: series.Ticker, Rows: make([]models.FeatureRow, n)}
	if n == 0 {
		return table
	}

	closes := series.Closes()
	volumes := series.Volumes()
	closeVals := present(closes)

	ret1 := PctChange(closes, 1)
	cols := map[string][]models.Value{
		models.FeatReturn1d:     ret1,
		models.FeatReturn5d:     PctChange(closes, 5),
		models.FeatReturn20d:    PctChange(closes, 20),
		models.FeatMA5:          RollingMean(closeVals, 5),
		models.FeatMA20:         RollingMean(closeVals, 20),
		models.FeatMA50:         RollingMean(closeVals, 50),
		models.FeatVolatility20: RollingStd(ret1, VolatilityWindow),
		models.FeatRSI14:        RSI(closes, RSIPeriod),
	}

	volMA := RollingMean(present(volumes), VolumeWindow)
	cols[models.FeatVolumeMA20] = volMA
	ratio := make([]models.Value, n)
	hlr := make([]models.Value, n)
	for i, b := range series.Bars {
		if volMA[i].OK && volMA[i].V != 0 {
			ratio[i] = models.Some(b.Volume / volMA[i].V)
		}
		if b.Close != 0 {
			hlr[i] = models.Some((b.High - b.Low) / b.Close)
		}
	}
	cols[models.FeatVolumeRatio] = ratio
	cols[models.FeatHighLowRange] = hlr

	for i, b := range series.Bars {
		vals := make(map[string]models.Value, len(cols))
		for name, col := range cols {
			vals[name] = col[i]
		}
		table.Rows[i] = models.FeatureRow{Time: b.Time, Close: b.Close, Values: vals}
	}
	return table
}

// CompleteRows keeps rows where every name is present. Empty names means the
// full production feature set.
func CompleteRows(table models.FeatureTable, names []string) models.FeatureTable {
	if len(names) == 0 {
		names = models.FeatureNames
	}
	out := models.FeatureTable{Ticker: table.Ticker, Rows: make([]models.FeatureRow, 0, len(table.Rows))}
	for _, r := range table.Rows {
		if r.Complete(names) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// LatestComplete returns the newest complete row.
func LatestComplete(table models.FeatureTable, names []string) (*models.FeatureRow, error) {
	complete := CompleteRows(table, names)
	if last := complete.Last(); last != nil {
		return last, nil
	}
	return nil, fmt.Errorf("%s: %d bars, need %d: %w", table.Ticker, table.Len(), MinHistory, models.ErrInsufficientHistory)
}
