package models

import "errors"

var (
	// ErrInsufficientData means the candle window is shorter than the indicators need.
	// The bar is skipped and no signal is produced.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDataUnavailable means the candle source could not be reached or returned garbage.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidConfiguration is returned at startup, values are never clamped.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrExecutionRejected means an order was not filled. Position state is left as it
	// was before the attempted transition.
	ErrExecutionRejected = errors.New("execution rejected")
	// ErrInvalidCandles means the candle sequence is not strictly chronological.
	ErrInvalidCandles = errors.New("invalid candle sequence")
)
