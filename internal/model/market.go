package model

import (
	"math"
	"sort"
	"strings"
	"time"
)

// PricePoint represents a single daily bar.
type PricePoint struct {
	Date          time.Time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	AdjustedClose *float64 // nil when the upstream source has no adjusted column
	Volume        float64
}

// PriceSeries holds the daily bars of one symbol, strictly ascending by date.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// SplitEvent is a stock split effective on Date.
type SplitEvent struct {
	Date        time.Time
	Numerator   float64
	Denominator float64
}

// Ratio returns Numerator/Denominator, or NaN when the ratio is undefined.
func (s SplitEvent) Ratio() float64 {
	if s.Denominator == 0 {
		return math.NaN()
	}
	return s.Numerator / s.Denominator
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewPriceSeries normalizes raw upstream bars: dates are truncated to calendar days,
// bars without a positive close are dropped, the result is sorted ascending and
// duplicate dates keep the last-seen bar.
func NewPriceSeries(symbol string, raw []PricePoint) PriceSeries {
	byDay := make(map[time.Time]int, len(raw))
	points := make([]PricePoint, 0, len(raw))
	for _, p := range raw {
		if !(p.Close > 0) || math.IsInf(p.Close, 0) {
			continue
		}
		p.Date = Day(p.Date)
		if idx, ok := byDay[p.Date]; ok {
			points[idx] = p
			continue
		}
		byDay[p.Date] = len(points)
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return PriceSeries{Symbol: symbol, Points: points}
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Points) }

// First returns the date of the earliest bar, or the zero time for an empty series.
func (s PriceSeries) First() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Date
}

// Closes returns the raw close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Dates returns the date column.
func (s PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// HasAdjustedClose reports whether every bar carries a finite adjusted close.
func (s PriceSeries) HasAdjustedClose() bool {
	if len(s.Points) == 0 {
		return false
	}
	for _, p := range s.Points {
		if p.AdjustedClose == nil || math.IsNaN(*p.AdjustedClose) || math.IsInf(*p.AdjustedClose, 0) {
			return false
		}
	}
	return true
}

// SplitDates returns the calendar days of the given split events.
func SplitDates(splits []SplitEvent) []time.Time {
	out := make([]time.Time, len(splits))
	for i, s := range splits {
		out[i] = Day(s.Date)
	}
	return out
}

// SortSplits returns a copy of splits sorted by date with calendar-day dates.
func SortSplits(splits []SplitEvent) []SplitEvent {
	out := make([]SplitEvent, len(splits))
	for i, s := range splits {
		s.Date = Day(s.Date)
		out[i] = s
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SeriesKey identifies a fetched range of one symbol.
type SeriesKey struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// NewSeriesKey normalizes the symbol to upper case and the bounds to calendar days.
func NewSeriesKey(symbol string, start, end time.Time) SeriesKey {
	return SeriesKey{Symbol: NormalizeSymbol(symbol), Start: Day(start), End: Day(end)}
}

func (k SeriesKey) String() string {
	return k.Symbol + "|" + k.Start.Format("2006-01-02") + "|" + k.End.Format("2006-01-02")
}

// CachedSeries is an immutable fetch result shared through the series cache.
type CachedSeries struct {
	Series    PriceSeries
	Splits    []SplitEvent
	Source    string
	FetchedAt time.Time
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
