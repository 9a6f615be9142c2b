package scoring

import "math"

// Bucket thresholds. Scores up to LowMax are low risk, HighMin and above
// are high risk, anything between is medium.
const (
	LowMax  = 0.49
	HighMin = 0.70
)

// Bucket labels and their stable numeric codes.
const (
	BucketLow    = "low"
	BucketMedium = "medium"
	BucketHigh   = "high"
)

var bucketCodes = map[string]int{
	BucketLow:    0,
	BucketMedium: 1,
	BucketHigh:   2,
}

// Risk is a fully interpreted score: the 3-decimal blended value, its
// bucket, the bucket's numeric code, and a distance-from-midpoint
// confidence in [0,1].
type Risk struct {
	Score      float64 `json:"risk_score"`
	Bucket     string  `json:"risk_bucket"`
	Code       int     `json:"risk_code"`
	Confidence float64 `json:"confidence"`
}

// Blend combines a model score and a rule score using mixing weight alpha.
// alpha=0 is pure model, alpha=1 is pure rules. Result is clipped to [0,1].
func Blend(modelScore, ruleScore, alpha float64) float64 {
	return clip01((1.0-alpha)*modelScore + alpha*ruleScore)
}

// BucketFor maps a score to its risk bucket label.
func BucketFor(score float64) string {
	switch {
	case score <= LowMax:
		return BucketLow
	case score >= HighMin:
		return BucketHigh
	default:
		return BucketMedium
	}
}

// Confidence measures how far a score sits from the maximally ambiguous
// midpoint 0.5, scaled so the extremes map to 1.
func Confidence(score float64) float64 {
	return math.Min(1.0, math.Abs(score-0.5)*2.0)
}

// RiskFromScore interprets a raw score in [0,1]. The score is rounded to
// three decimals first so the bucket and confidence always agree with the
// reported value.
func RiskFromScore(score float64) Risk {
	rounded := round3(clip01(score))
	return Risk{
		Score:      rounded,
		Bucket:     BucketFor(rounded),
		Code:       bucketCodes[BucketFor(rounded)],
		Confidence: round3(Confidence(rounded)),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
