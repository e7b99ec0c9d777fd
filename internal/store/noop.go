package store

import (
	"context"

	"VRSentinel/internal/model"
)

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Load(_ context.Context, _ model.SeriesKey) (model.CachedSeries, bool, error) {
	return model.CachedSeries{}, false, nil
}
func (n *NoopStore) Save(_ context.Context, _ model.SeriesKey, _ model.CachedSeries) error { return nil }
func (n *NoopStore) Close() error                                                        { return nil }
