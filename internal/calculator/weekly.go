package calculator

import "VRSentinel/internal/model"

// AggregateWeekly folds ascending daily bars into ISO-week bars. Each weekly bar is dated
// on the last trading day of its week and closes on that day's close.
func AggregateWeekly(daily []model.PricePoint) []model.PricePoint {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.PricePoint
	week := daily[0]
	week.AdjustedClose = nil
	wy, ww := week.Date.ISOWeek()

	for _, d := range daily[1:] {
		y, w := d.Date.ISOWeek()
		if y != wy || w != ww {
			weekly = append(weekly, week)
			week = d
			week.AdjustedClose = nil
			wy, ww = y, w
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Date = d.Date
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
