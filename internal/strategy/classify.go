package strategy

import (
	"math"

	"VRSentinel/internal/model"
)

// Bucket maps a ratio at or above MinRatio (strictly above when Exclusive) to Class.
type Bucket struct {
	MinRatio  float64
	Exclusive bool
	Class     model.RiskClass
}

// DERIBuckets classifies relative volatility, most aggressive first.
var DERIBuckets = []Bucket{
	{1.5, true, model.ClassAggressive},
	{0.8, false, model.ClassModerate},
}

// MEVARBuckets classifies relative mean absolute move, most aggressive first.
var MEVARBuckets = []Bucket{
	{1.0, true, model.ClassAggressive},
	{0.5, false, model.ClassModerate},
}

// mapBucket maps a ratio to a class; anything below every bucket is conservative.
func mapBucket(ratio float64, buckets []Bucket) model.RiskClass {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return model.ClassUnclassified
	}
	for _, b := range buckets {
		if ratio > b.MinRatio || (!b.Exclusive && ratio == b.MinRatio) {
			return b.Class
		}
	}
	return model.ClassConservative
}

var rank = map[model.RiskClass]int{
	model.ClassUnclassified: 0,
	model.ClassConservative: 1,
	model.ClassModerate:     2,
	model.ClassAggressive:   3,
}

// Classify buckets both ratios; Overall is the more aggressive of the two,
// and unclassified if either ratio is undefined.
func Classify(deri, mevar float64) model.Classification {
	c := model.Classification{
		DERI:  mapBucket(deri, DERIBuckets),
		MEVAR: mapBucket(mevar, MEVARBuckets),
	}
	switch {
	case c.DERI == model.ClassUnclassified || c.MEVAR == model.ClassUnclassified:
		c.Overall = model.ClassUnclassified
	case rank[c.DERI] >= rank[c.MEVAR]:
		c.Overall = c.DERI
	default:
		c.Overall = c.MEVAR
	}
	return c
}

// Unclassified is the classification attached to failed symbols.
func Unclassified() model.Classification {
	return model.Classification{
		DERI:    model.ClassUnclassified,
		MEVAR:   model.ClassUnclassified,
		Overall: model.ClassUnclassified,
	}
}
