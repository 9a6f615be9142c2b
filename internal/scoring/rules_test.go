package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"riskserve/internal/features"
)

func TestRuleComponentsCoreWeights(t *testing.T) {
	rec := features.Record{
		PullingSeverity:         8,
		PullingFrequencyEncoded: 5,
		AwarenessLevelEncoded:   0,
	}

	c := RuleComponents(rec)

	assert.InDelta(t, 0.8, c.SeverityNorm, 1e-12)
	assert.InDelta(t, 1.0, c.FrequencyNorm, 1e-12)
	assert.InDelta(t, 1.0, c.InverseAwareness, 1e-12)

	// 0.30*0.8 + 0.15*1.0 + 0.10*1.0
	assert.InDelta(t, 0.49, c.FinalScoreRaw, 1e-12)
	assert.InDelta(t, 0.49, c.FinalScore, 1e-12)
}

func TestRuleComponentsUrgeSpike(t *testing.T) {
	t.Run("positive spike counts", func(t *testing.T) {
		c := RuleComponents(features.Record{AvgUrge7d: 8, AvgUrge30d: 4})
		assert.InDelta(t, 0.4, c.RecentUrgeSpike, 1e-12)
	})

	t.Run("declining urges contribute nothing", func(t *testing.T) {
		c := RuleComponents(features.Record{AvgUrge7d: 3, AvgUrge30d: 7})
		assert.Zero(t, c.RecentUrgeSpike)
	})
}

func TestRuleComponentsSleep(t *testing.T) {
	t.Run("no sleep data is neutral", func(t *testing.T) {
		c := RuleComponents(features.Record{})
		assert.Zero(t, c.LowSleep)
	})

	t.Run("short sleep raises risk", func(t *testing.T) {
		c := RuleComponents(features.Record{AvgSleep7d: 4.5})
		assert.InDelta(t, 0.25, c.LowSleep, 1e-12)
	})

	t.Run("long sleep is clipped to zero", func(t *testing.T) {
		c := RuleComponents(features.Record{AvgSleep7d: 9})
		assert.Zero(t, c.LowSleep)
	})
}

func TestRuleComponentsProtection(t *testing.T) {
	rec := features.Record{HowLongStoppedDaysEst: 180}
	c := RuleComponents(rec)

	assert.InDelta(t, 1.0, c.ProtectionFromDaysStopped, 1e-12)
	assert.InDelta(t, -0.20, c.FinalScoreRaw, 1e-12)
	assert.Zero(t, c.FinalScore, "negative raw score clips to zero")

	risk := RiskFromScore(c.FinalScore)
	assert.Equal(t, BucketLow, risk.Bucket)
	assert.InDelta(t, 1.0, risk.Confidence, 1e-12)
}

func TestRuleComponentsAllNormsClipped(t *testing.T) {
	rec := features.Record{
		PullingSeverity:          40,
		PullingFrequencyEncoded:  12,
		AwarenessLevelEncoded:    -3,
		AvgUrge7d:                25,
		HighStressDays7d:         20,
		HighUrgeHighStressDays7d: 9,
	}

	c := RuleComponents(rec)

	for name, v := range map[string]float64{
		"severity":    c.SeverityNorm,
		"frequency":   c.FrequencyNorm,
		"awareness":   c.InverseAwareness,
		"urge":        c.AvgUrge7dNorm,
		"stress_days": c.HighStressDensity,
		"combo":       c.ComboIntensity,
		"final_score": c.FinalScore,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}
}

func TestRuleScoreMatchesComponents(t *testing.T) {
	rec := features.Record{
		PullingSeverity:         6,
		PullingFrequencyEncoded: 3,
		AvgUrge7d:               5,
		AvgHealthStress7d:       7,
	}
	assert.InDelta(t, RuleComponents(rec).FinalScore, RuleScore(rec), 1e-12)
}
