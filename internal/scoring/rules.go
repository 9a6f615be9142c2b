package scoring

import "riskserve/internal/features"

// Rule engine weights. The magnitudes do not sum to 1; the final score is
// clipped instead, and the raw pre-clip sum is kept for explainability.
const (
	weightSeverity         = 0.30
	weightFrequency        = 0.15
	weightInverseAwareness = 0.10

	weightAvgUrge7d = 0.15
	weightUrgeSpike = 0.05

	weightLowSleep          = 0.10
	weightShortSleepDensity = 0.05

	weightAvgStress         = 0.08
	weightHighStressDensity = 0.07

	weightComboIntensity = 0.05

	weightProtection = 0.20
)

// Components holds every normalized term of the rule score plus the raw and
// clipped totals. Each component is deterministic given the record and in
// [0,1] after clipping; none depends on model artifacts.
type Components struct {
	SeverityNorm     float64 `json:"severity_norm"`
	FrequencyNorm    float64 `json:"frequency_norm"`
	InverseAwareness float64 `json:"inverse_awareness"`

	AvgUrge7dNorm   float64 `json:"avg_urge_7d_norm"`
	AvgUrge30dNorm  float64 `json:"avg_urge_30d_norm"`
	RecentUrgeSpike float64 `json:"recent_urge_spike"`

	LowSleep          float64 `json:"low_sleep"`
	ShortSleepDensity float64 `json:"short_sleep_density"`

	AvgStress7dNorm   float64 `json:"avg_stress_7d_norm"`
	HighStressDensity float64 `json:"high_stress_density"`

	ComboIntensity float64 `json:"combo_intensity"`

	ProtectionFromDaysStopped float64 `json:"protection_from_days_stopped"`

	FinalScoreRaw float64 `json:"final_score_raw"`
	FinalScore    float64 `json:"final_score"`
}

// RuleComponents computes the clinical heuristic breakdown for one record.
// Pure function: no I/O, no model artifacts, never fails. Absent optional
// fields are zero on the canonical record, which normalizes to a zero
// contribution.
func RuleComponents(rec features.Record) Components {
	c := Components{
		SeverityNorm:     clip01(rec.PullingSeverity / 10.0),
		FrequencyNorm:    clip01(rec.PullingFrequencyEncoded / 5.0),
		InverseAwareness: clip01(1.0 - rec.AwarenessLevelEncoded),

		AvgUrge7dNorm:  clip01(rec.AvgUrge7d / 10.0),
		AvgUrge30dNorm: clip01(rec.AvgUrge30d / 10.0),

		ShortSleepDensity: clip01(rec.ShortSleepNights7d / 7.0),

		AvgStress7dNorm:   clip01(rec.AvgHealthStress7d / 10.0),
		HighStressDensity: clip01(rec.HighStressDays7d / 7.0),

		ComboIntensity: clip01(rec.HighUrgeHighStressDays7d / 3.0),

		ProtectionFromDaysStopped: clip01(rec.HowLongStoppedDaysEst / 90.0),
	}

	// Only a positive short-window spike over the 30-day baseline counts.
	if spike := c.AvgUrge7dNorm - c.AvgUrge30dNorm; spike > 0 {
		c.RecentUrgeSpike = spike
	}

	// Sleep below six hours trends risky; no sleep data contributes zero.
	if rec.AvgSleep7d > 0 {
		c.LowSleep = clip01((6.0 - rec.AvgSleep7d) / 6.0)
	}

	raw := 0.0
	raw += weightSeverity * c.SeverityNorm
	raw += weightFrequency * c.FrequencyNorm
	raw += weightInverseAwareness * c.InverseAwareness

	raw += weightAvgUrge7d * c.AvgUrge7dNorm
	raw += weightUrgeSpike * c.RecentUrgeSpike

	raw += weightLowSleep * c.LowSleep
	raw += weightShortSleepDensity * c.ShortSleepDensity
	raw += weightAvgStress * c.AvgStress7dNorm
	raw += weightHighStressDensity * c.HighStressDensity

	raw += weightComboIntensity * c.ComboIntensity
	raw -= weightProtection * c.ProtectionFromDaysStopped

	c.FinalScoreRaw = raw
	c.FinalScore = clip01(raw)
	return c
}

// RuleScore computes just the clipped rule score for one record.
func RuleScore(rec features.Record) float64 {
	return RuleComponents(rec).FinalScore
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
