// Package features normalizes client input into the fixed-width, fixed-order
// numeric matrix the active model expects.
package features

// Canonical feature names. The trained feature list is the source of truth
// for which of these (and in what order) actually reach the model; these
// constants only keep the handlers and the rule engine in agreement.
const (
	FeatPullingSeverity            = "pulling_severity"
	FeatPullingFrequencyEncoded    = "pulling_frequency_encoded"
	FeatAwarenessLevelEncoded      = "awareness_level_encoded"
	FeatHowLongStoppedDaysEst      = "how_long_stopped_days_est"
	FeatSuccessfullyStoppedEncoded = "successfully_stopped_encoded"
	FeatYearsSinceOnset            = "years_since_onset"
	FeatAge                        = "age"
	FeatAgeOfOnset                 = "age_of_onset"
	FeatEmotionEncoded             = "emotion_encoded"
	FeatEmotionIntensitySum        = "emotion_intensity_sum"
	FeatAnxietyLevel               = "anxiety_level"
	FeatDepressionLevel            = "depression_level"
	FeatCopingEffective            = "coping_strategies_effective"
	FeatSleepQualityScore          = "sleep_quality_score"

	FeatAvgUrge7d        = "avg_urge_7d"
	FeatAvgUrge30d       = "avg_urge_30d"
	FeatMaxUrge7d        = "max_urge_7d"
	FeatHighUrgeEvents7d = "high_urge_events_7d"

	FeatAvgSleep7d         = "avg_sleep_7d"
	FeatShortSleepNights7d = "short_sleep_nights_7d"

	FeatAvgHealthStress7d = "avg_health_stress_7d"
	FeatHighStressDays7d  = "high_stress_days_7d"

	FeatHighUrgeHighStressDays7d = "high_urge_and_high_stress_days_7d"
)

// Record is the canonical, fully encoded scoring record. Every request shape
// converts into this via an explicit, total conversion; nothing downstream
// branches on field presence.
type Record struct {
	PullingSeverity            float64
	PullingFrequencyEncoded    float64
	AwarenessLevelEncoded      float64
	HowLongStoppedDaysEst      float64
	SuccessfullyStoppedEncoded float64
	YearsSinceOnset            float64
	Age                        float64
	AgeOfOnset                 float64
	EmotionEncoded             float64
	EmotionIntensitySum        float64
	AnxietyLevel               float64
	DepressionLevel            float64
	CopingEffective            float64
	SleepQualityScore          float64

	AvgUrge7d        float64
	AvgUrge30d       float64
	MaxUrge7d        float64
	HighUrgeEvents7d float64

	AvgSleep7d         float64
	ShortSleepNights7d float64

	AvgHealthStress7d float64
	HighStressDays7d  float64

	HighUrgeHighStressDays7d float64
}

// Features returns the record as a name-to-value map, the input shape the
// frame builder consumes.
func (r Record) Features() map[string]float64 {
	return map[string]float64{
		FeatPullingSeverity:            r.PullingSeverity,
		FeatPullingFrequencyEncoded:    r.PullingFrequencyEncoded,
		FeatAwarenessLevelEncoded:      r.AwarenessLevelEncoded,
		FeatHowLongStoppedDaysEst:      r.HowLongStoppedDaysEst,
		FeatSuccessfullyStoppedEncoded: r.SuccessfullyStoppedEncoded,
		FeatYearsSinceOnset:            r.YearsSinceOnset,
		FeatAge:                        r.Age,
		FeatAgeOfOnset:                 r.AgeOfOnset,
		FeatEmotionEncoded:             r.EmotionEncoded,
		FeatEmotionIntensitySum:        r.EmotionIntensitySum,
		FeatAnxietyLevel:               r.AnxietyLevel,
		FeatDepressionLevel:            r.DepressionLevel,
		FeatCopingEffective:            r.CopingEffective,
		FeatSleepQualityScore:          r.SleepQualityScore,

		FeatAvgUrge7d:        r.AvgUrge7d,
		FeatAvgUrge30d:       r.AvgUrge30d,
		FeatMaxUrge7d:        r.MaxUrge7d,
		FeatHighUrgeEvents7d: r.HighUrgeEvents7d,

		FeatAvgSleep7d:         r.AvgSleep7d,
		FeatShortSleepNights7d: r.ShortSleepNights7d,

		FeatAvgHealthStress7d: r.AvgHealthStress7d,
		FeatHighStressDays7d:  r.HighStressDays7d,

		FeatHighUrgeHighStressDays7d: r.HighUrgeHighStressDays7d,
	}
}
