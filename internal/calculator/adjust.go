package calculator

import (
	"math"
	"time"

	"VRSentinel/internal/model"
)

// AdjustedSeries is a close series continuous across splits, aligned with the source bars.
type AdjustedSeries struct {
	Symbol string
	Dates  []time.Time
	Closes []float64
	// ProviderAdjusted is true when the upstream adjusted close was used as-is.
	ProviderAdjusted bool
}

// Len returns the number of prices.
func (a AdjustedSeries) Len() int { return len(a.Closes) }

// AdjustForSplits returns the split-adjusted close series. A provider-supplied adjusted
// close on every bar is authoritative and returned unchanged. Otherwise each split with
// ratio r at date D scales every close dated strictly before D by 1/r; a bar preceding
// several splits is scaled by all of them. Zero or non-finite ratios are ignored.
func AdjustForSplits(series model.PriceSeries, splits []model.SplitEvent) AdjustedSeries {
	n := series.Len()
	out := AdjustedSeries{
		Symbol: series.Symbol,
		Dates:  series.Dates(),
		Closes: make([]float64, n),
	}
	if series.HasAdjustedClose() {
		for i, p := range series.Points {
			out.Closes[i] = *p.AdjustedClose
		}
		out.ProviderAdjusted = true
		return out
	}

	sorted := model.SortSplits(splits)
	factor := 1.0
	j := len(sorted) - 1
	for i := n - 1; i >= 0; i-- {
		d := series.Points[i].Date
		for j >= 0 && sorted[j].Date.After(d) {
			if r := sorted[j].Ratio(); validRatio(r) {
				factor /= r
			}
			j--
		}
		out.Closes[i] = series.Points[i].Close * factor
	}
	return out
}

func validRatio(r float64) bool {
	return r > 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}
