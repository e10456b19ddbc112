// Package score holds the shared scoring-dimension math used by both the
// segment aggregator and the personal scorer, so the two never drift apart.
package score

import "math"

// Clamp01 clamps v to [0,1]. Used for importance, confidence, and weights.
func Clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

// ClampScore clamps v to the [1,10] score range used by every dimension.
func ClampScore(v float64) float64 {
	return math.Max(1.0, math.Min(10.0, v))
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// DepthFromTechnicalSegments rises with the count of segments that carried
// technical detail, relative to the segment total.
func DepthFromTechnicalSegments(technical, total int) float64 {
	if total == 0 {
		return ClampScore(5.0)
	}
	frac := float64(technical) / float64(total)
	// Baseline 4; a fully technical article reaches 10.
	return ClampScore(4.0 + frac*6.0)
}

// QualityFromSentiment rises with the fraction of positive-sentiment segments.
func QualityFromSentiment(positiveFrac float64) float64 {
	return ClampScore(5.0 + Clamp01(positiveFrac)*4.0)
}

// Practicality derives from depth, quality, and the mean segment importance.
func Practicality(depth, quality, avgImportance float64) float64 {
	return ClampScore(0.4*depth + 0.3*quality + 3.0*Clamp01(avgImportance))
}

// Novelty derives from depth and the mean segment importance.
func Novelty(depth, avgImportance float64) float64 {
	return ClampScore(0.5*depth + 4.0*Clamp01(avgImportance) + 1.0)
}

// WeightedOverall combines the five personalized dimensions with fixed
// weights summing to 1.
func WeightedOverall(depth, quality, practicality, novelty, relevance float64) float64 {
	overall := 0.2*depth + 0.2*quality + 0.2*practicality + 0.15*novelty + 0.25*relevance
	return ClampScore(Round1(overall))
}
