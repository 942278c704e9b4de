package domain

import "errors"

var (
	// ErrUpstreamUnavailable means no provider returned a plausible
	// value. The API turns this into 503; a price is never fabricated.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidInput means the formula received a nil, non-positive
	// or out-of-band input. Inputs are rejected, never clamped.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageFailure means the durable store was unreachable.
	// Intraday extremes are best effort, so callers degrade rather
	// than fail the price response.
	ErrStorageFailure = errors.New("storage failure")

	// ErrNoData means a lookup found no record.
	ErrNoData = errors.New("no data")
)
