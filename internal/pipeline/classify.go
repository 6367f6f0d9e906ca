package pipeline

import (
	"fmt"
	"math"
)

// Fixed classification thresholds, boundary-inclusive on both sides.
const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// Classify maps a sentiment score onto a band. Scores outside [-1, 1] are
// permitted and classify like any other value. NaN is rejected rather than
// silently treated as neutral so upstream data-quality problems surface.
func Classify(score float64) (Band, error) {
	if math.IsNaN(score) {
		return "", fmt.Errorf("%w: NaN", ErrInvalidScore)
	}
	return bandOf(score), nil
}

// bandOf assumes a validated score.
func bandOf(score float64) Band {
	switch {
	case score >= positiveThreshold:
		return BandPositive
	case score <= negativeThreshold:
		return BandNegative
	default:
		return BandNeutral
	}
}
