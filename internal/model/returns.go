package model

import "time"

// ReturnPoint is the log return realized on Date.
type ReturnPoint struct {
	Date      time.Time
	LogReturn float64
}

// ReturnSeries holds filtered log returns, ascending by date.
type ReturnSeries struct {
	Symbol string
	Points []ReturnPoint
}

// Len returns the number of returns.
func (r ReturnSeries) Len() int { return len(r.Points) }

// Values returns the log-return column.
func (r ReturnSeries) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.LogReturn
	}
	return out
}

// PairedPoint is one date on which both the asset and the benchmark have a return.
type PairedPoint struct {
	Date            time.Time
	AssetReturn     float64
	BenchmarkReturn float64
}

// PairedSample is the date-aligned intersection of an asset and a benchmark return series.
type PairedSample struct {
	Asset     string
	Benchmark string
	Points    []PairedPoint
}

// Len returns the sample size.
func (p PairedSample) Len() int { return len(p.Points) }

// AssetReturns returns the asset column.
func (p PairedSample) AssetReturns() []float64 {
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.AssetReturn
	}
	return out
}

// BenchmarkReturns returns the benchmark column.
func (p PairedSample) BenchmarkReturns() []float64 {
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.BenchmarkReturn
	}
	return out
}
