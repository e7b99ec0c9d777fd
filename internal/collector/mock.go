package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"VRSentinel/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Symbols without an entry in Bars get synthetic bars when Price is set.
type MockProvider struct {
	Label  string
	Price  float64
	Bars   map[string][]model.PricePoint
	Splits map[string][]model.SplitEvent
	Err    map[string]error
	Delay  time.Duration

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockProvider) Name() string {
	if m.Label != "" {
		return m.Label
	}
	return "mock"
}

// Calls returns how many bar fetches were made for symbol.
func (m *MockProvider) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockProvider) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.Delay):
		return nil
	}
}

func (m *MockProvider) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err, ok := m.Err[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		out := make([]model.PricePoint, 0, len(bars))
		for _, b := range bars {
			d := model.Day(b.Date)
			if d.Before(model.Day(from)) || d.After(model.Day(to)) {
				continue
			}
			out = append(out, b)
		}
		return out, nil
	}
	if m.Price > 0 {
		return generateMockBars(symbol, m.Price, from, to), nil
	}
	return nil, fmt.Errorf("mock: no data for %s", symbol)
}

func (m *MockProvider) FetchSplits(ctx context.Context, symbol string, _, _ time.Time) ([]model.SplitEvent, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.Splits[symbol], nil
}

// generateMockBars produces deterministic weekday bars between from and to.
// The symbol seeds the oscillation so different tickers are not perfectly correlated.
func generateMockBars(symbol string, basePrice float64, from, to time.Time) []model.PricePoint {
	seed := 0
	for _, r := range symbol {
		seed += int(r)
	}
	amp := 0.01 + float64(seed%7)*0.002

	var bars []model.PricePoint
	i := 0
	for d := model.Day(from); !d.After(model.Day(to)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + amp*math.Sin(float64(i+seed)/3) + float64(i)*0.0002)
		bars = append(bars, model.PricePoint{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}
