package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDataNotFound is returned when the market-data source has no bars for a ticker.
	ErrDataNotFound = errors.New("ticker data not found")
	// ErrInsufficientHistory is returned when no feature row is complete.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrInput is returned when the predictor receives no feature row.
	ErrInput = errors.New("invalid predictor input")
	// ErrClassifier marks any classifier failure.
	ErrClassifier = errors.New("classifier failure")
	// ErrUpstream marks a failed market-data fetch.
	ErrUpstream = errors.New("market data unavailable")
	// ErrUpstreamThrottled is returned by sources that were rate limited upstream.
	ErrUpstreamThrottled = errors.New("upstream rate limited")
)

// ClassifierError wraps a failing or out-of-range classifier call.
type ClassifierError struct {
	Op  string
	Err error
}

func (e *ClassifierError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("classifier %s failed", e.Op)
	}
	return fmt.Sprintf("classifier %s: %v", e.Op, e.Err)
}

func (e *ClassifierError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrClassifier) match any ClassifierError.
func (e *ClassifierError) Is(target error) bool { return target == ErrClassifier }
