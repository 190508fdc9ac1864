package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a parsed lookback window such as "3mo", "1y", "120d" or "max".
type Period struct {
	Raw  string
	Days int  // calendar days; 0 when Max
	Max  bool // all available history
}

// DefaultPeriod is used when a caller does not ask for a lookback.
const DefaultPeriod = "3mo"

var namedPeriods = map[string]int{
	"1mo": 30,
	"3mo": 91,
	"6mo": 182,
	"1y":  365,
	"2y":  730,
	"5y":  1826,
}

// ParsePeriod accepts the named periods 1mo, 3mo, 6mo, 1y, 2y, 5y, max and
// any positive day count written as Nd.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = DefaultPeriod
	}
	if s == "max" {
		return Period{Raw: s, Max: true}, nil
	}
	if d, ok := namedPeriods[s]; ok {
		return Period{Raw: s, Days: d}, nil
	}
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err == nil && days > 0 {
			return Period{Raw: s, Days: days}, nil
		}
	}
	return Period{}, fmt.Errorf("invalid period %q", s)
}

// ValidPeriod reports whether s parses.
func ValidPeriod(s string) bool {
	_, err := ParsePeriod(s)
	return err == nil
}

// Named reports whether the period is one of the fixed names rather than Nd.
func (p Period) Named() bool {
	if p.Max {
		return true
	}
	_, ok := namedPeriods[p.Raw]
	return ok
}

// Start returns the beginning of the window ending at end. Max yields the zero time.
func (p Period) Start(end time.Time) time.Time {
	if p.Max {
		return time.Time{}
	}
	return end.AddDate(0, 0, -p.Days)
}
