package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in    string
		days  int
		max   bool
		named bool
	}{
		{"3mo", 91, false, true},
		{"1Y", 365, false, true},
		{"", 91, false, true},
		{"max", 0, true, true},
		{"120d", 120, false, false},
	}
	for _, tc := range cases {
		p, err := ParsePeriod(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.days, p.Days, tc.in)
		assert.Equal(t, tc.max, p.Max, tc.in)
		assert.Equal(t, tc.named, p.Named(), tc.in)
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, s := range []string{"0d", "-3d", "3w", "d", "forever"} {
		_, err := ParsePeriod(s)
		assert.Error(t, err, s)
		assert.False(t, ValidPeriod(s), s)
	}
}

func TestPeriodStart(t *testing.T) {
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	p, err := ParsePeriod("10d")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), p.Start(end))

	p, err = ParsePeriod("max")
	require.NoError(t, err)
	assert.True(t, p.Start(end).IsZero())
}

func TestTicker(t *testing.T) {
	for _, s := range []string{"AAPL", "brk-b", "^GSPC", "EURUSD=X", " msft "} {
		assert.True(t, ValidTicker(s), s)
	}
	for _, s := range []string{"", "AAPL MSFT", "../etc", "ABCDEFGHIJKLMNOPQRSTU"} {
		assert.False(t, ValidTicker(s), s)
	}
	assert.Equal(t, "BRK-B", NormalizeTicker(" brk-b "))
}
