package model

import (
	"errors"
	"fmt"
)

// ErrorKind names the per-symbol failure classes reported in a BatchResult.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindDataUnavailable     ErrorKind = "DATA_UNAVAILABLE"
	KindInsufficientSamples ErrorKind = "INSUFFICIENT_SAMPLES"
	KindComputation         ErrorKind = "COMPUTATION_ERROR"
	KindTimeout             ErrorKind = "TIMEOUT"
	KindInternal            ErrorKind = "INTERNAL"
)

var (
	ErrDataUnavailable      = errors.New("data unavailable")
	ErrInsufficientSamples  = errors.New("insufficient samples")
	ErrComputation          = errors.New("computation error")
	ErrTimeout              = errors.New("timeout")
	ErrBenchmarkUnavailable = errors.New("benchmark unavailable")
)

// InsufficientSamplesError reports a paired sample below the observation threshold.
type InsufficientSamplesError struct {
	Got int
	Min int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient samples: %d < %d", e.Got, e.Min)
}

func (e *InsufficientSamplesError) Is(target error) bool {
	return target == ErrInsufficientSamples
}

// BenchmarkError aborts a whole batch: every symbol depends on the benchmark sample.
type BenchmarkError struct {
	Symbol string
	Err    error
}

func (e *BenchmarkError) Error() string {
	return fmt.Sprintf("benchmark %s: %v", e.Symbol, e.Err)
}

func (e *BenchmarkError) Unwrap() []error {
	return []error{ErrBenchmarkUnavailable, e.Err}
}

// KindOf maps err onto the per-symbol error taxonomy.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrInsufficientSamples):
		return KindInsufficientSamples
	case errors.Is(err, ErrComputation):
		return KindComputation
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	default:
		return KindInternal
	}
}
