package util

import (
	"regexp"
	"strings"
)

var tickerRe = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.\-=^]{0,19}$`)

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidTicker accepts exchange symbols like AAPL, BRK-B, ^GSPC or EURUSD=X.
func ValidTicker(s string) bool {
	return tickerRe.MatchString(strings.TrimSpace(s))
}
