package calculator

import (
	"fmt"
	"time"

	"VRSentinel/internal/model"
)

// FridayPolicy decides which Friday anchors the weekly change of a snapshot.
type FridayPolicy string

const (
	// FridayPreviousOnFriday uses the latest Friday on or before the as-of day, except that
	// on a Friday it steps back to the previous week's Friday.
	FridayPreviousOnFriday FridayPolicy = "previous_on_friday"
	// FridayOnOrBefore uses the latest Friday on or before the as-of day, today included.
	FridayOnOrBefore FridayPolicy = "on_or_before"
)

// ParseFridayPolicy validates a configured policy name; empty selects the default.
func ParseFridayPolicy(s string) (FridayPolicy, error) {
	switch FridayPolicy(s) {
	case "":
		return FridayPreviousOnFriday, nil
	case FridayPreviousOnFriday, FridayOnOrBefore:
		return FridayPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown friday policy %q", s)
	}
}

// ReferenceFriday returns the anchor Friday for asOf under policy.
func ReferenceFriday(asOf time.Time, policy FridayPolicy) time.Time {
	d := model.Day(asOf)
	if policy != FridayOnOrBefore && d.Weekday() == time.Friday {
		d = d.AddDate(0, 0, -7)
	}
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// CloseOnOrBefore returns the raw close of the latest bar dated on or before day.
func CloseOnOrBefore(series model.PriceSeries, day time.Time) (float64, bool) {
	day = model.Day(day)
	for i := series.Len() - 1; i >= 0; i-- {
		if !series.Points[i].Date.After(day) {
			return series.Points[i].Close, true
		}
	}
	return 0, false
}
