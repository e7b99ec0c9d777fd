package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VRSentinel/internal/model"
)

func TestBuildReturns_LogReturns(t *testing.T) {
	adj := AdjustForSplits(seriesFromCloses("X", 100, 101, 99.5, 102), nil)
	r := BuildReturns(adj, nil)

	require.Equal(t, 3, r.Len())
	assert.Equal(t, dayN(1), r.Points[0].Date)
	assert.InDelta(t, math.Log(101.0/100), r.Points[0].LogReturn, 1e-15)
	assert.InDelta(t, math.Log(99.5/101), r.Points[1].LogReturn, 1e-15)
	assert.InDelta(t, math.Log(102/99.5), r.Points[2].LogReturn, 1e-15)
}

func TestBuildReturns_DropsSplitDaysAndOutliers(t *testing.T) {
	adj := AdjustForSplits(seriesFromCloses("X", 100, 110, 99, 200, 100, 101), nil)
	splitDay := dayN(2)

	r := BuildReturns(adj, []time.Time{splitDay.Add(15 * time.Hour)})

	require.Equal(t, 2, r.Len())
	assert.Equal(t, dayN(1), r.Points[0].Date)
	assert.Equal(t, dayN(5), r.Points[1].Date)
	for _, p := range r.Points {
		assert.NotEqual(t, splitDay, p.Date)
		assert.LessOrEqual(t, math.Abs(p.LogReturn), MaxAbsLogReturn)
	}
}

func TestBuildReturns_ShortInputIsEmpty(t *testing.T) {
	for _, closes := range [][]float64{nil, {100}} {
		r := BuildReturns(AdjustForSplits(seriesFromCloses("X", closes...), nil), nil)
		assert.Equal(t, 0, r.Len())
	}
}

func TestBuildReturns_SkipsNonPositivePrices(t *testing.T) {
	adj := AdjustedSeries{
		Symbol: "X",
		Dates:  []time.Time{dayN(0), dayN(1), dayN(2), dayN(3)},
		Closes: []float64{10, 0, 10, 10.5},
	}
	r := BuildReturns(adj, nil)
	require.Equal(t, 1, r.Len())
	assert.Equal(t, dayN(3), r.Points[0].Date)
}

func TestAlign_StrictDateIntersection(t *testing.T) {
	asset := returnsFromValues("A", 0, []float64{0.01, 0.02, 0.03, 0.04, 0.05})
	bench := model.ReturnSeries{Symbol: "SPY", Points: []model.ReturnPoint{
		{Date: dayN(1), LogReturn: -0.1},
		{Date: dayN(2), LogReturn: -0.2},
		{Date: dayN(4), LogReturn: -0.4},
		{Date: dayN(9), LogReturn: -0.9},
	}}
	assetCopy := append([]model.ReturnPoint(nil), asset.Points...)
	benchCopy := append([]model.ReturnPoint(nil), bench.Points...)

	p := Align(asset, bench)

	require.Equal(t, 3, p.Len())
	assert.Equal(t, "A", p.Asset)
	assert.Equal(t, "SPY", p.Benchmark)
	assert.Equal(t, []float64{0.02, 0.03, 0.05}, p.AssetReturns())
	assert.Equal(t, []float64{-0.1, -0.2, -0.4}, p.BenchmarkReturns())
	for i := 1; i < p.Len(); i++ {
		assert.True(t, p.Points[i].Date.After(p.Points[i-1].Date))
	}
	assert.LessOrEqual(t, p.Len(), min(asset.Len(), bench.Len()))
	assert.Equal(t, assetCopy, asset.Points)
	assert.Equal(t, benchCopy, bench.Points)
}

func TestAlign_NoOverlap(t *testing.T) {
	asset := returnsFromValues("A", 0, []float64{0.01, 0.02})
	bench := returnsFromValues("SPY", 10, []float64{0.01, 0.02})
	assert.Equal(t, 0, Align(asset, bench).Len())
}
