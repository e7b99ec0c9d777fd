package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"VRSentinel/internal/metrics"
	"VRSentinel/internal/model"
)

// SourceAttempt records one provider's answer for a symbol.
type SourceAttempt struct {
	Source string
	Bars   int
	Err    error
}

// ChainError is returned when no provider produced bars.
type ChainError struct {
	Symbol   string
	Attempts []SourceAttempt
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", a.Source, a.Err))
		} else {
			parts = append(parts, fmt.Sprintf("%s: empty", a.Source))
		}
	}
	return fmt.Sprintf("no source returned data for %s (%s)", e.Symbol, strings.Join(parts, "; "))
}

// Unwrap exposes context errors so callers can tell a timeout from missing data.
func (e *ChainError) Unwrap() []error {
	var errs []error
	for _, a := range e.Attempts {
		if a.Err != nil && (errors.Is(a.Err, context.DeadlineExceeded) || errors.Is(a.Err, context.Canceled)) {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Chain tries providers in order; the first non-empty answer wins.
type Chain struct {
	providers []PriceProvider
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func NewChain(log zerolog.Logger, m *metrics.Metrics, providers ...PriceProvider) *Chain {
	return &Chain{providers: providers, metrics: m, log: log}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// FetchDailyBars returns bars from the first provider that has any.
func (c *Chain) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	bars, _, err := c.FetchDailyBarsFrom(ctx, symbol, from, to)
	return bars, err
}

// FetchDailyBarsFrom also reports which provider answered.
func (c *Chain) FetchDailyBarsFrom(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, string, error) {
	attempts := make([]SourceAttempt, 0, len(c.providers))
	for _, p := range c.providers {
		if ctx.Err() != nil {
			attempts = append(attempts, SourceAttempt{Source: p.Name(), Err: ctx.Err()})
			break
		}
		bars, err := p.FetchDailyBars(ctx, symbol, from, to)
		c.metrics.ObserveFetch(p.Name(), err)
		attempts = append(attempts, SourceAttempt{Source: p.Name(), Bars: len(bars), Err: err})
		if err != nil {
			c.log.Warn().Err(err).Str("source", p.Name()).Str("symbol", symbol).Msg("price source failed")
			continue
		}
		if len(bars) == 0 {
			c.log.Debug().Str("source", p.Name()).Str("symbol", symbol).Msg("price source returned no bars")
			continue
		}
		return bars, p.Name(), nil
	}
	return nil, "", &ChainError{Symbol: symbol, Attempts: attempts}
}

// FetchSplits returns the first successful split answer, even if empty.
func (c *Chain) FetchSplits(ctx context.Context, symbol string, from, to time.Time) ([]model.SplitEvent, error) {
	var errs []error
	for _, p := range c.providers {
		splits, err := p.FetchSplits(ctx, symbol, from, to)
		if err == nil {
			return splits, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}
