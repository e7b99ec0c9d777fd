package calculator

import "math"

// VR blend parameters. Each logistic is centred on its midpoint ratio; the ln(1.5)/width
// slope sets how fast the part saturates. DERI carries 2.5 of the 4.5 total weight.
const (
	deriWeight   = 2.5
	deriCenter   = 1.15
	deriWidth    = 0.35
	mevarWeight  = 2.0
	mevarCenter  = 0.75
	mevarWidth   = 0.25
	vrNormalizer = deriWeight + mevarWeight
)

// ScoreVR blends DERI and MEVAR into a risk score that saturates near 0 and 100.
// NaN in either input yields NaN.
func ScoreVR(deri, mevar float64) float64 {
	if math.IsNaN(deri) || math.IsNaN(mevar) {
		return math.NaN()
	}
	return (deriPart(deri) + mevarPart(mevar)) / vrNormalizer
}

func deriPart(deri float64) float64 {
	return deriWeight * logistic100(math.Log(1.5)/deriWidth, deri-deriCenter)
}

func mevarPart(mevar float64) float64 {
	return mevarWeight * logistic100(math.Log(1.5)/mevarWidth, mevar-mevarCenter)
}

func logistic100(slope, x float64) float64 {
	return 100 / (1 + math.Exp(-slope*x))
}
