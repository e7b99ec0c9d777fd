package calculator

import (
	"time"

	"VRSentinel/internal/model"
)

// BuildSnapshot derives report context from raw daily bars: the spot price (last close),
// the weekly change against the reference Friday close, the upside to an optional target
// and weekly EMA10/EMA20. Missing pieces stay nil. Returns nil for an empty series.
func BuildSnapshot(series model.PriceSeries, target *float64, asOf time.Time, policy FridayPolicy) *model.PriceSnapshot {
	if series.Len() == 0 {
		return nil
	}
	last := series.Points[series.Len()-1]
	snap := &model.PriceSnapshot{
		AsOf:          last.Date,
		Spot:          last.Close,
		ReferenceDate: ReferenceFriday(asOf, policy),
	}

	if ref, ok := CloseOnOrBefore(series, snap.ReferenceDate); ok && ref > 0 {
		snap.ReferenceClose = ptr(ref)
		snap.WeeklyChange = ptr((snap.Spot/ref - 1) * 100)
	}
	if target != nil && snap.Spot > 0 {
		snap.Upside = ptr((*target/snap.Spot - 1) * 100)
	}

	weekly := AggregateWeekly(series.Points)
	if ema, err := CalculateEMA10w(weekly); err == nil {
		snap.EMA10w = ptr(ema)
	}
	if ema, err := CalculateEMA20w(weekly); err == nil {
		snap.EMA20w = ptr(ema)
	}
	return snap
}

func ptr(v float64) *float64 { return &v }
