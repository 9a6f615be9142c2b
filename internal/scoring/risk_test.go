package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend(t *testing.T) {
	tests := []struct {
		name       string
		modelScore float64
		ruleScore  float64
		alpha      float64
		want       float64
	}{
		{"pure model at alpha zero", 0.8, 0.2, 0.0, 0.8},
		{"pure rules at alpha one", 0.8, 0.2, 1.0, 0.2},
		{"even mix", 0.9, 0.1, 0.5, 0.5},
		{"clipped high", 1.5, 1.5, 0.5, 1.0},
		{"clipped low", -0.5, -0.5, 0.5, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Blend(tt.modelScore, tt.ruleScore, tt.alpha), 1e-12)
		})
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.0, BucketLow},
		{0.49, BucketLow},
		{0.491, BucketMedium},
		{0.5, BucketMedium},
		{0.699, BucketMedium},
		{0.70, BucketHigh},
		{1.0, BucketHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.score), "score %v", tt.score)
	}
}

func TestConfidenceSymmetry(t *testing.T) {
	for _, d := range []float64{0.0, 0.1, 0.25, 0.5} {
		assert.InDelta(t, Confidence(0.5+d), Confidence(0.5-d), 1e-12)
	}
	assert.InDelta(t, 0.0, Confidence(0.5), 1e-12)
	assert.InDelta(t, 1.0, Confidence(0.0), 1e-12)
	assert.InDelta(t, 1.0, Confidence(1.0), 1e-12)
}

func TestRiskFromScore(t *testing.T) {
	t.Run("rounds to three decimals before bucketing", func(t *testing.T) {
		risk := RiskFromScore(0.48951)
		assert.InDelta(t, 0.49, risk.Score, 1e-12)
		assert.Equal(t, BucketLow, risk.Bucket)
		assert.Equal(t, 0, risk.Code)
	})

	t.Run("midpoint gives zero confidence", func(t *testing.T) {
		risk := RiskFromScore(Blend(0.9, 0.1, 0.5))
		assert.InDelta(t, 0.5, risk.Score, 1e-12)
		assert.Equal(t, BucketMedium, risk.Bucket)
		assert.Equal(t, 1, risk.Code)
		assert.InDelta(t, 0.0, risk.Confidence, 1e-12)
	})

	t.Run("extreme score is fully confident", func(t *testing.T) {
		risk := RiskFromScore(0.97)
		assert.Equal(t, BucketHigh, risk.Bucket)
		assert.Equal(t, 2, risk.Code)
		assert.InDelta(t, 0.94, risk.Confidence, 1e-12)
	})

	t.Run("out of range input is clipped", func(t *testing.T) {
		assert.InDelta(t, 1.0, RiskFromScore(3.0).Score, 1e-12)
		assert.InDelta(t, 0.0, RiskFromScore(-0.2).Score, 1e-12)
	})
}
