package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"StockPulse/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCHMarketData_Fetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	d0 := time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"date", "open", "high", "low", "close", "volume"}).
		AddRow(d0, 170.0, 172.0, 169.5, 171.2, 5.1e7).
		AddRow(d0.AddDate(0, 0, 1), 171.3, 173.0, 170.9, 172.8, 4.9e7)
	mock.ExpectQuery(regexp.QuoteMeta("FROM daily_bars FINAL")).
		WithArgs("AAPL", now.AddDate(0, 0, -91)).
		WillReturnRows(rows)

	src := NewCHMarketData(db, "daily_bars")
	src.now = func() time.Time { return now }
	s, err := src.Fetch(context.Background(), "AAPL", "3mo")
	require.NoError(t, err)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, 171.2, s.Bars[0].Close)
	assert.Equal(t, 4.9e7, s.Bars[1].Volume)
	assert.True(t, s.Bars[1].Time.Equal(d0.AddDate(0, 0, 1)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHMarketData_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))

	_, err = NewCHMarketData(db, "daily_bars").Fetch(context.Background(), "AAPL", "1y")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestCHMarketData_InvalidPeriodIsInputError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewCHMarketData(db, "daily_bars").Fetch(context.Background(), "AAPL", "3w")
	assert.ErrorIs(t, err, models.ErrInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHMarketData_NoRowsIsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"date", "open", "high", "low", "close", "volume"}))

	s, err := NewCHMarketData(db, "daily_bars").Fetch(context.Background(), "ZZZZ", "max")
	require.NoError(t, err)
	assert.True(t, s.Empty())
}
