package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"VRSentinel/internal/model"
)

// sourceReporter is implemented by providers that can tell which upstream answered.
type sourceReporter interface {
	FetchDailyBarsFrom(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, string, error)
}

// SeriesProvider fetches normalized price series and split events through the cache.
type SeriesProvider struct {
	source PriceProvider
	cache  *SeriesCache
	now    func() time.Time
	log    zerolog.Logger
}

// NewSeriesProvider creates a provider; cache may be nil to disable memoization.
func NewSeriesProvider(source PriceProvider, cache *SeriesCache, log zerolog.Logger) *SeriesProvider {
	return &SeriesProvider{
		source: source,
		cache:  cache,
		now:    time.Now,
		log:    log.With().Str("component", "provider").Logger(),
	}
}

// Fetch returns the bars and splits of symbol over [start, end].
// It fails with model.ErrDataUnavailable when no usable price history exists.
// A failed split lookup degrades to "no splits".
func (p *SeriesProvider) Fetch(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, []model.SplitEvent, error) {
	key := model.NewSeriesKey(symbol, start, end)
	load := func(ctx context.Context) (model.CachedSeries, error) {
		return p.load(ctx, key)
	}

	var (
		entry model.CachedSeries
		err   error
	)
	if p.cache != nil {
		entry, err = p.cache.GetOrFetch(ctx, key, load)
	} else {
		entry, err = load(ctx)
	}
	if err != nil {
		return model.PriceSeries{}, nil, err
	}
	return entry.Series, entry.Splits, nil
}

func (p *SeriesProvider) load(ctx context.Context, key model.SeriesKey) (model.CachedSeries, error) {
	var (
		raw    []model.PricePoint
		source string
		err    error
	)
	if sr, ok := p.source.(sourceReporter); ok {
		raw, source, err = sr.FetchDailyBarsFrom(ctx, key.Symbol, key.Start, key.End)
	} else {
		raw, err = p.source.FetchDailyBars(ctx, key.Symbol, key.Start, key.End)
		source = p.source.Name()
	}
	if err != nil {
		return model.CachedSeries{}, fmt.Errorf("%w: %s: %w", model.ErrDataUnavailable, key.Symbol, err)
	}

	series := model.NewPriceSeries(key.Symbol, raw)
	if series.Len() == 0 {
		return model.CachedSeries{}, fmt.Errorf("%w: %s: no usable bars in %s..%s", model.ErrDataUnavailable,
			key.Symbol, key.Start.Format("2006-01-02"), key.End.Format("2006-01-02"))
	}

	splits, err := p.source.FetchSplits(ctx, key.Symbol, key.Start, key.End)
	if err != nil {
		if ctx.Err() != nil {
			return model.CachedSeries{}, fmt.Errorf("%s splits: %w", key.Symbol, ctx.Err())
		}
		p.log.Warn().Err(err).Str("symbol", key.Symbol).Msg("split lookup failed, assuming no splits")
		splits = nil
	}

	p.log.Debug().Str("symbol", key.Symbol).Str("source", source).Int("bars", series.Len()).
		Int("splits", len(splits)).Msg("series fetched")
	return model.CachedSeries{
		Series:    series,
		Splits:    model.SortSplits(splits),
		Source:    source,
		FetchedAt: p.now(),
	}, nil
}
