package calculator

import (
	"time"

	"VRSentinel/internal/model"
)

// Align inner-joins asset and benchmark returns on exact calendar-day equality.
// The output follows the asset's ascending order; neither input is modified.
func Align(asset, benchmark model.ReturnSeries) model.PairedSample {
	bench := make(map[time.Time]float64, benchmark.Len())
	for _, p := range benchmark.Points {
		bench[model.Day(p.Date)] = p.LogReturn
	}

	n := asset.Len()
	if benchmark.Len() < n {
		n = benchmark.Len()
	}
	out := model.PairedSample{
		Asset:     asset.Symbol,
		Benchmark: benchmark.Symbol,
		Points:    make([]model.PairedPoint, 0, n),
	}

	var last time.Time
	for _, p := range asset.Points {
		d := model.Day(p.Date)
		b, ok := bench[d]
		if !ok {
			continue
		}
		// strictly ascending output even if the asset side carries a duplicate
		if len(out.Points) > 0 && !d.After(last) {
			continue
		}
		out.Points = append(out.Points, model.PairedPoint{Date: d, AssetReturn: p.LogReturn, BenchmarkReturn: b})
		last = d
	}
	return out
}
