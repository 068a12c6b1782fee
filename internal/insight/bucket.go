// Package insight buckets correlation percentages and writes the analysis report.
package insight

import "math"

// Bucket is a qualitative correlation strength.
type Bucket int

const (
	Neutral Bucket = iota
	StrongPositive
	ModeratePositive
	ModerateNegative
	StrongNegative
)

// Classify buckets a correlation percentage:
//
//	(70, +inf)   strong positive
//	(30, 70]     moderate positive
//	[-30, 30]    neutral
//	[-70, -30)   moderate negative
//	(-inf, -70)  strong negative
//
// NaN is neutral.
func Classify(pct float64) Bucket {
	switch {
	case math.IsNaN(pct):
		return Neutral
	case pct > 70:
		return StrongPositive
	case pct > 30:
		return ModeratePositive
	case pct >= -30:
		return Neutral
	case pct >= -70:
		return ModerateNegative
	default:
		return StrongNegative
	}
}

func (b Bucket) String() string {
	switch b {
	case StrongPositive:
		return "strong_positive"
	case ModeratePositive:
		return "moderate_positive"
	case ModerateNegative:
		return "moderate_negative"
	case StrongNegative:
		return "strong_negative"
	default:
		return "neutral"
	}
}

// Label is the sentence used in the narrative.
func (b Bucket) Label() string {
	switch b {
	case StrongPositive:
		return "Strong positive correlation."
	case ModeratePositive:
		return "Moderate positive correlation."
	case ModerateNegative:
		return "Moderate negative correlation."
	case StrongNegative:
		return "Strong negative correlation."
	default:
		return "Little to no correlation."
	}
}
