package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VRSentinel/internal/model"
)

var scenarioPattern = []float64{0.01, -0.01, 0.02, -0.02, 0.01}

func TestAnnualizedStatistics(t *testing.T) {
	r := []float64{0.01, -0.01, 0.01, -0.01}
	// sample stdev of ±0.01 over 4 points = sqrt(4*0.0001/3)
	assert.InDelta(t, math.Sqrt(0.0004/3)*math.Sqrt(252), AnnualizedVolatility(r), 1e-12)
	assert.InDelta(t, 0.01*math.Sqrt(252), AnnualizedMeanAbs(r), 1e-12)

	assert.True(t, math.IsNaN(AnnualizedVolatility([]float64{0.01})))
	assert.True(t, math.IsNaN(AnnualizedMeanAbs(nil)))
}

func TestRelativeRatio_NaNPropagation(t *testing.T) {
	assert.True(t, math.IsNaN(RelativeRatio(1, 0)))
	assert.True(t, math.IsNaN(RelativeRatio(1, math.NaN())))
	assert.True(t, math.IsNaN(RelativeRatio(math.NaN(), 1)))
	assert.Equal(t, 2.0, RelativeRatio(4, 2))
}

func TestComputeRatios_InsufficientSamples(t *testing.T) {
	asset := returnsFromValues("A", 0, repeatPattern(scenarioPattern, 20, 1))
	bench := returnsFromValues("SPY", 0, repeatPattern(scenarioPattern, 20, 0.5))
	sample := Align(asset, bench)
	require.Equal(t, 100, sample.Len())

	_, err := ComputeRatios(sample, 150)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientSamples))
	var ise *model.InsufficientSamplesError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 100, ise.Got)
	assert.Equal(t, 150, ise.Min)
}

func TestComputeRatios_DefaultThreshold(t *testing.T) {
	sample := Align(
		returnsFromValues("A", 0, repeatPattern(scenarioPattern, 29, 1)),
		returnsFromValues("SPY", 0, repeatPattern(scenarioPattern, 29, 0.5)),
	)
	_, err := ComputeRatios(sample, 0)
	assert.ErrorIs(t, err, model.ErrInsufficientSamples)
}

func TestComputeRatios_FlatBenchmarkIsComputationError(t *testing.T) {
	n := 200
	sample := Align(
		returnsFromValues("A", 0, repeatPattern(scenarioPattern, n/5, 1)),
		returnsFromValues("SPY", 0, make([]float64, n)),
	)
	_, err := ComputeRatios(sample, 150)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrComputation)
	assert.Equal(t, model.KindComputation, model.KindOf(err))
}

func TestComputeRatios_EndToEndScenario(t *testing.T) {
	assetReturns := repeatPattern(scenarioPattern, 40, 1)
	benchReturns := repeatPattern(scenarioPattern, 40, 0.5)

	asset := BuildReturns(AdjustForSplits(pricesFromReturns("A", 100, assetReturns), nil), nil)
	bench := BuildReturns(AdjustForSplits(pricesFromReturns("SPY", 400, benchReturns), nil), nil)
	sample := Align(asset, bench)
	require.Equal(t, 200, sample.Len())

	r, err := ComputeRatios(sample, DefaultMinObservations)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, r.DERI, 1e-9)
	assert.InDelta(t, 2.0, r.MEVAR, 1e-9)
	assert.Greater(t, ScoreVR(r.DERI, r.MEVAR), 50.0)
}

func TestComputeRatios_Deterministic(t *testing.T) {
	assetReturns := repeatPattern([]float64{0.013, -0.007, 0.021, -0.018, 0.004, 0.009}, 40, 1)
	benchReturns := repeatPattern([]float64{0.006, -0.004, 0.008, -0.011, 0.002, 0.003}, 40, 1)
	run := func() (Ratios, float64) {
		asset := BuildReturns(AdjustForSplits(pricesFromReturns("A", 50, assetReturns), nil), nil)
		bench := BuildReturns(AdjustForSplits(pricesFromReturns("SPY", 300, benchReturns), nil), nil)
		r, err := ComputeRatios(Align(asset, bench), 150)
		require.NoError(t, err)
		return r, ScoreVR(r.DERI, r.MEVAR)
	}
	r1, vr1 := run()
	r2, vr2 := run()
	assert.Equal(t, math.Float64bits(r1.DERI), math.Float64bits(r2.DERI))
	assert.Equal(t, math.Float64bits(r1.MEVAR), math.Float64bits(r2.MEVAR))
	assert.Equal(t, math.Float64bits(vr1), math.Float64bits(vr2))
}

func TestScoreVR(t *testing.T) {
	assert.InDelta(t, 125.0, deriPart(1.15), 1e-12)
	assert.InDelta(t, 100.0, mevarPart(0.75), 1e-12)
	assert.InDelta(t, 50.0, ScoreVR(1.15, 0.75), 1e-12)

	assert.Less(t, ScoreVR(0.5, 0.3), 50.0)
	assert.Greater(t, ScoreVR(2, 1.5), 50.0)
	assert.Less(t, ScoreVR(-10, -10), 0.1)
	assert.Greater(t, ScoreVR(10, 10), 99.9)

	assert.True(t, math.IsNaN(ScoreVR(math.NaN(), 1)))
	assert.True(t, math.IsNaN(ScoreVR(1, math.NaN())))
}
