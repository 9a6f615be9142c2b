package features

import "strings"

// Frequency labels recognized by the friendly input shape, in ascending
// severity order.
var frequencyCodes = map[string]float64{
	"daily":                5,
	"several times a week": 4,
	"weekly":               3,
	"monthly":              2,
	"rarely":               1,
}

var awarenessCodes = map[string]float64{
	"yes":       1.0,
	"sometimes": 0.5,
	"no":        0.0,
}

// Normalize lowercases, trims, and collapses internal whitespace.
func Normalize(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(v))), " ")
}

// NormalizeFrequency maps free-form frequency phrasing onto the canonical
// label set by substring matching, so "Every day!" and "twice a week" land on
// a recognized label instead of failing.
func NormalizeFrequency(raw string) string {
	v := Normalize(raw)
	if v == "" {
		return ""
	}
	switch {
	case strings.Contains(v, "several") && strings.Contains(v, "week"):
		return "several times a week"
	case strings.Contains(v, "every") && strings.Contains(v, "day"):
		return "daily"
	case strings.Contains(v, "day"):
		return "daily"
	case strings.Contains(v, "week"):
		return "weekly"
	case strings.Contains(v, "month"):
		return "monthly"
	case strings.Contains(v, "rare"):
		return "rarely"
	}
	return v
}

// FrequencyCode encodes a qualitative frequency string. Unrecognized input
// maps to the neutral code 0 rather than erroring.
func FrequencyCode(raw string) float64 {
	return frequencyCodes[NormalizeFrequency(raw)]
}

// AwarenessCode encodes a yes/sometimes/no awareness answer. Unrecognized
// input maps to 0.
func AwarenessCode(raw string) float64 {
	return awarenessCodes[Normalize(raw)]
}

// Boolish interprets loosely typed yes/no answers. Anything not clearly
// affirmative is false.
func Boolish(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch Normalize(x) {
		case "1", "true", "yes", "y":
			return true
		}
	case float64:
		return x != 0
	}
	return false
}

// YearsSinceOnset derives the elapsed-years feature when the caller did not
// supply it. Negative differences clamp to zero.
func YearsSinceOnset(age, ageOfOnset float64) float64 {
	if d := age - ageOfOnset; d > 0 {
		return d
	}
	return 0
}

// RecordFromMap builds a canonical record from a loosely typed row using the
// same coercion as the frame builder. Unknown keys are ignored.
func RecordFromMap(row map[string]any) Record {
	get := func(name string) float64 {
		v, ok := row[name]
		if !ok {
			return 0
		}
		return coerceFloat(v)
	}

	return Record{
		PullingSeverity:            get(FeatPullingSeverity),
		PullingFrequencyEncoded:    get(FeatPullingFrequencyEncoded),
		AwarenessLevelEncoded:      get(FeatAwarenessLevelEncoded),
		HowLongStoppedDaysEst:      get(FeatHowLongStoppedDaysEst),
		SuccessfullyStoppedEncoded: get(FeatSuccessfullyStoppedEncoded),
		YearsSinceOnset:            get(FeatYearsSinceOnset),
		Age:                        get(FeatAge),
		AgeOfOnset:                 get(FeatAgeOfOnset),
		EmotionEncoded:             get(FeatEmotionEncoded),
		EmotionIntensitySum:        get(FeatEmotionIntensitySum),
		AnxietyLevel:               get(FeatAnxietyLevel),
		DepressionLevel:            get(FeatDepressionLevel),
		CopingEffective:            get(FeatCopingEffective),
		SleepQualityScore:          get(FeatSleepQualityScore),

		AvgUrge7d:        get(FeatAvgUrge7d),
		AvgUrge30d:       get(FeatAvgUrge30d),
		MaxUrge7d:        get(FeatMaxUrge7d),
		HighUrgeEvents7d: get(FeatHighUrgeEvents7d),

		AvgSleep7d:         get(FeatAvgSleep7d),
		ShortSleepNights7d: get(FeatShortSleepNights7d),

		AvgHealthStress7d: get(FeatAvgHealthStress7d),
		HighStressDays7d:  get(FeatHighStressDays7d),

		HighUrgeHighStressDays7d: get(FeatHighUrgeHighStressDays7d),
	}
}
