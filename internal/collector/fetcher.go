package collector

import (
	"context"
	"time"

	"VRSentinel/internal/model"
)

// PriceProvider is one upstream source of daily bars and split events.
type PriceProvider interface {
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error)
	FetchSplits(ctx context.Context, symbol string, from, to time.Time) ([]model.SplitEvent, error)
	Name() string
}
