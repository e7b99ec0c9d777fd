package calculator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"VRSentinel/internal/model"
)

const (
	// TradingDaysPerYear annualizes daily statistics.
	TradingDaysPerYear = 252
	// DefaultMinObservations is the smallest paired sample that yields a score.
	DefaultMinObservations = 150
)

// Ratios holds the two relative-risk statistics of a paired sample.
type Ratios struct {
	DERI  float64
	MEVAR float64
}

// AnnualizedVolatility returns the sample standard deviation of daily returns times sqrt(252).
// NaN with fewer than two returns.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return math.NaN()
	}
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear)
}

// AnnualizedMeanAbs returns the mean absolute daily return times sqrt(252).
// NaN for an empty input.
func AnnualizedMeanAbs(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	abs := make([]float64, len(returns))
	for i, r := range returns {
		abs[i] = math.Abs(r)
	}
	return stat.Mean(abs, nil) * math.Sqrt(TradingDaysPerYear)
}

// RelativeRatio divides an asset statistic by the benchmark's, propagating NaN when the
// benchmark statistic is zero or NaN.
func RelativeRatio(asset, benchmark float64) float64 {
	if benchmark == 0 || math.IsNaN(benchmark) || math.IsNaN(asset) {
		return math.NaN()
	}
	return asset / benchmark
}

// DERI is the asset's annualized volatility relative to the benchmark's.
func DERI(asset, benchmark []float64) float64 {
	return RelativeRatio(AnnualizedVolatility(asset), AnnualizedVolatility(benchmark))
}

// MEVAR is the asset's annualized mean absolute return relative to the benchmark's.
func MEVAR(asset, benchmark []float64) float64 {
	return RelativeRatio(AnnualizedMeanAbs(asset), AnnualizedMeanAbs(benchmark))
}

// ComputeRatios computes DERI and MEVAR over a paired sample. A sample smaller than
// minObservations fails with *model.InsufficientSamplesError; an undefined ratio fails
// with model.ErrComputation.
func ComputeRatios(sample model.PairedSample, minObservations int) (Ratios, error) {
	if minObservations <= 0 {
		minObservations = DefaultMinObservations
	}
	if sample.Len() < minObservations {
		return Ratios{}, &model.InsufficientSamplesError{Got: sample.Len(), Min: minObservations}
	}

	asset, bench := sample.AssetReturns(), sample.BenchmarkReturns()
	r := Ratios{DERI: DERI(asset, bench), MEVAR: MEVAR(asset, bench)}
	if !finite(r.DERI) {
		return r, fmt.Errorf("%w: deri undefined (benchmark volatility %v)", model.ErrComputation, AnnualizedVolatility(bench))
	}
	if !finite(r.MEVAR) {
		return r, fmt.Errorf("%w: mevar undefined (benchmark mean abs %v)", model.ErrComputation, AnnualizedMeanAbs(bench))
	}
	return r, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
