package model

import (
	"math"
	"time"
)

// RiskMetrics is the scored result of one symbol against a benchmark.
type RiskMetrics struct {
	Symbol     string
	Benchmark  string
	DERI       float64
	MEVAR      float64
	VR         float64
	SampleSize int
}

// RiskClass is a qualitative bucket for a relative-risk ratio.
type RiskClass string

const (
	ClassUnclassified RiskClass = "UNCLASSIFIED"
	ClassConservative RiskClass = "CONSERVATIVE"
	ClassModerate     RiskClass = "MODERATE"
	ClassAggressive   RiskClass = "AGGRESSIVE"
)

// Classification buckets DERI and MEVAR; Overall is the more aggressive of the two.
type Classification struct {
	DERI    RiskClass
	MEVAR   RiskClass
	Overall RiskClass
}

// PriceSnapshot enriches a result with recent price context for reports.
type PriceSnapshot struct {
	AsOf           time.Time
	Spot           float64
	ReferenceDate  time.Time
	ReferenceClose *float64
	WeeklyChange   *float64 // percent
	Upside         *float64 // percent to target price
	EMA10w         *float64
	EMA20w         *float64
}

// SymbolRequest is one entry of a batch invocation.
type SymbolRequest struct {
	Symbol      string   `json:"symbol" yaml:"symbol"`
	TargetPrice *float64 `json:"target_price,omitempty" yaml:"target_price"`
}

// SymbolResult is the outcome recorded for one symbol: metrics or a typed error.
type SymbolResult struct {
	Symbol         string
	TargetPrice    *float64
	Metrics        *RiskMetrics
	Classification Classification
	Snapshot       *PriceSnapshot
	Err            error
	Duration       time.Duration
}

// Kind returns the error kind of the result, KindNone on success.
func (r SymbolResult) Kind() ErrorKind { return KindOf(r.Err) }

// BatchResult maps every requested symbol to its outcome.
type BatchResult struct {
	RunID     string
	Benchmark string
	Start     time.Time
	End       time.Time
	Order     []string
	Results   map[string]SymbolResult
	Duration  time.Duration
}

// Counts tallies results by error kind; KindNone counts scored symbols.
func (b *BatchResult) Counts() map[ErrorKind]int {
	out := make(map[ErrorKind]int)
	for _, r := range b.Results {
		out[r.Kind()]++
	}
	return out
}

// ResultRow is the flattened per-symbol view handed to report collaborators.
type ResultRow struct {
	Symbol         string         `json:"symbol"`
	Benchmark      string         `json:"benchmark"`
	DERI           *float64       `json:"deri"`
	MEVAR          *float64       `json:"mevar"`
	VR             *float64       `json:"vr"`
	SampleSize     int            `json:"sample_size,omitempty"`
	DERIClass      RiskClass      `json:"deri_class"`
	MEVARClass     RiskClass      `json:"mevar_class"`
	Classification RiskClass      `json:"classification"`
	ErrorKind      ErrorKind      `json:"error_kind,omitempty"`
	Error          string         `json:"error,omitempty"`
	TargetPrice    *float64       `json:"target_price,omitempty"`
	Snapshot       *PriceSnapshot `json:"snapshot,omitempty"`
}

// Rows flattens the batch in request order. Ratios are rounded for presentation
// (DERI and MEVAR to 4 decimals, VR to 2); NaN becomes null.
func (b *BatchResult) Rows() []ResultRow {
	rows := make([]ResultRow, 0, len(b.Order))
	for _, sym := range b.Order {
		r, ok := b.Results[sym]
		if !ok {
			continue
		}
		row := ResultRow{
			Symbol:         sym,
			Benchmark:      b.Benchmark,
			DERIClass:      r.Classification.DERI,
			MEVARClass:     r.Classification.MEVAR,
			Classification: r.Classification.Overall,
			ErrorKind:      r.Kind(),
			TargetPrice:    r.TargetPrice,
			Snapshot:       r.Snapshot,
		}
		if row.DERIClass == "" {
			row.DERIClass, row.MEVARClass, row.Classification = ClassUnclassified, ClassUnclassified, ClassUnclassified
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		if m := r.Metrics; m != nil {
			row.DERI = Rounded(m.DERI, 4)
			row.MEVAR = Rounded(m.MEVAR, 4)
			row.VR = Rounded(m.VR, 2)
			row.SampleSize = m.SampleSize
		}
		rows = append(rows, row)
	}
	return rows
}

// Rounded returns v rounded to places decimals, or nil for NaN/Inf.
func Rounded(v float64, places int) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	return &r
}
