package calculator

import (
	"math"
	"time"

	"VRSentinel/internal/model"
)

// MaxAbsLogReturn bounds a plausible daily log return; larger moves are treated as bad ticks.
const MaxAbsLogReturn = 0.40

// BuildReturns converts adjusted closes into log returns ln(p[t]/p[t-1]). Returns dated on
// a split day, returns with |r| > MaxAbsLogReturn and undefined returns are dropped.
// Fewer than two prices yield an empty series.
func BuildReturns(adj AdjustedSeries, splitDates []time.Time) model.ReturnSeries {
	out := model.ReturnSeries{Symbol: adj.Symbol}
	if adj.Len() < 2 {
		return out
	}

	splitDays := make(map[time.Time]struct{}, len(splitDates))
	for _, d := range splitDates {
		splitDays[model.Day(d)] = struct{}{}
	}

	out.Points = make([]model.ReturnPoint, 0, adj.Len()-1)
	for t := 1; t < adj.Len(); t++ {
		date := model.Day(adj.Dates[t])
		if _, ok := splitDays[date]; ok {
			continue
		}
		prev, cur := adj.Closes[t-1], adj.Closes[t]
		if !(prev > 0) || !(cur > 0) {
			continue
		}
		r := math.Log(cur / prev)
		if math.IsNaN(r) || math.IsInf(r, 0) || math.Abs(r) > MaxAbsLogReturn {
			continue
		}
		out.Points = append(out.Points, model.ReturnPoint{Date: date, LogReturn: r})
	}
	return out
}
