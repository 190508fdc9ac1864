package models

import (
	"math"
	"time"
)

// Feature column names. The order of FeatureNames is the production feature set.
const (
	FeatReturn1d     = "Return_1d"
	FeatReturn5d     = "Return_5d"
	FeatReturn20d    = "Return_20d"
	FeatMA5          = "MA_5"
	FeatMA20         = "MA_20"
	FeatMA50         = "MA_50"
	FeatVolumeMA20   = "Volume_MA_20"
	FeatVolumeRatio  = "Volume_Ratio"
	FeatHighLowRange = "High_Low_Range"
	FeatVolatility20 = "Volatility_20"
	FeatRSI14        = "RSI_14"
)

// FeatureNames lists every derived feature in column order.
var FeatureNames = []string{
	FeatReturn1d,
	FeatReturn5d,
	FeatReturn20d,
	FeatMA5,
	FeatMA20,
	FeatMA50,
	FeatVolumeMA20,
	FeatVolumeRatio,
	FeatHighLowRange,
	FeatVolatility20,
	FeatRSI14,
}

// Value is an optional feature cell. Missing covers both "not enough history"
// and "numerically undefined".
type Value struct {
	V  float64
	OK bool
}

// Some wraps v, collapsing NaN and ±Inf to missing.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{V: v, OK: true}
}

// None is the missing value.
func None() Value { return Value{} }

// Ptr returns nil for missing values; used for JSON encoding.
func (v Value) Ptr() *float64 {
	if !v.OK {
		return nil
	}
	f := v.V
	return &f
}

// FeatureRow holds one bar's derived indicators, aligned with a PriceBar.
type FeatureRow struct {
	Time   time.Time
	Close  float64
	Values map[string]Value
}

// Get returns the named value; unknown names are missing.
func (r FeatureRow) Get(name string) Value {
	if r.Values == nil {
		return Value{}
	}
	return r.Values[name]
}

// Complete reports whether every name in names is present.
func (r FeatureRow) Complete(names []string) bool {
	for _, n := range names {
		if !r.Get(n).OK {
			return false
		}
	}
	return true
}

// FeatureTable is the derived counterpart of a PriceSeries.
type FeatureTable struct {
	Ticker string
	Rows   []FeatureRow
}

// Len returns the number of rows.
func (t FeatureTable) Len() int { return len(t.Rows) }

// Last returns the newest row, or nil when the table is empty.
func (t FeatureTable) Last() *FeatureRow {
	if len(t.Rows) == 0 {
		return nil
	}
	r := t.Rows[len(t.Rows)-1]
	return &r
}

// Tail returns the last n rows (all rows when n <= 0 or n >= Len).
func (t FeatureTable) Tail(n int) FeatureTable {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	return FeatureTable{Ticker: t.Ticker, Rows: t.Rows[len(t.Rows)-n:]}
}
