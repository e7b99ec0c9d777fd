package calculator

import (
	"errors"

	"VRSentinel/internal/model"
)

// CalculateEMA returns the last value of the exponential moving average with span period
// (alpha = 2/(period+1), seeded with the first value). Requires at least period values.
func CalculateEMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for EMA calculation")
	}
	alpha := 2.0 / float64(period+1)
	ema := values[0]
	for _, v := range values[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	return ema, nil
}

// CalculateEMA10w returns the 10-week EMA of weekly closes.
func CalculateEMA10w(weeklyBars []model.PricePoint) (float64, error) {
	return CalculateEMA(extractCloses(weeklyBars), 10)
}

// CalculateEMA20w returns the 20-week EMA of weekly closes.
func CalculateEMA20w(weeklyBars []model.PricePoint) (float64, error) {
	return CalculateEMA(extractCloses(weeklyBars), 20)
}

func extractCloses(bars []model.PricePoint) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
