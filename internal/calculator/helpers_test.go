package calculator

import (
	"math"
	"time"

	"VRSentinel/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday

func dayN(n int) time.Time { return day0.AddDate(0, 0, n) }

func seriesFromCloses(symbol string, closes ...float64) model.PriceSeries {
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: dayN(i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return model.PriceSeries{Symbol: symbol, Points: points}
}

// returnsFromValues builds a return series dated on consecutive days starting at day offset.
func returnsFromValues(symbol string, offset int, values []float64) model.ReturnSeries {
	points := make([]model.ReturnPoint, len(values))
	for i, v := range values {
		points[i] = model.ReturnPoint{Date: dayN(offset + i), LogReturn: v}
	}
	return model.ReturnSeries{Symbol: symbol, Points: points}
}

// pricesFromReturns compounds log returns on top of base.
func pricesFromReturns(symbol string, base float64, returns []float64) model.PriceSeries {
	closes := make([]float64, len(returns)+1)
	closes[0] = base
	for i, r := range returns {
		closes[i+1] = closes[i] * math.Exp(r)
	}
	return seriesFromCloses(symbol, closes...)
}

func repeatPattern(pattern []float64, times int, scale float64) []float64 {
	out := make([]float64, 0, len(pattern)*times)
	for i := 0; i < times; i++ {
		for _, v := range pattern {
			out = append(out, v*scale)
		}
	}
	return out
}
