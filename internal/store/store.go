package store

import (
	"context"

	"VRSentinel/internal/model"
)

// SeriesStore persists fetched price series between process runs.
// Only raw market data is stored; scores are always recomputed.
type SeriesStore interface {
	// Load returns the entry for key; ok is false when nothing is stored.
	Load(ctx context.Context, key model.SeriesKey) (entry model.CachedSeries, ok bool, err error)
	Save(ctx context.Context, key model.SeriesKey, entry model.CachedSeries) error
	Close() error
}
