package handler

import (
	"strings"

	"riskserve/internal/features"
	dErrors "riskserve/pkg/domain-errors"
)

// PredictRequest is the low-level request body for POST /predict: already
// encoded numeric features matching the internal schema. Required fields are
// pointers so an absent field is distinguishable from a zero.
type PredictRequest struct {
	PullingSeverity            *float64 `json:"pulling_severity"`
	PullingFrequencyEncoded    *float64 `json:"pulling_frequency_encoded"`
	AwarenessLevelEncoded      *float64 `json:"awareness_level_encoded"`
	HowLongStoppedDaysEst      *float64 `json:"how_long_stopped_days_est"`
	SuccessfullyStoppedEncoded *float64 `json:"successfully_stopped_encoded"`
	YearsSinceOnset            *float64 `json:"years_since_onset"`
	Age                        *float64 `json:"age"`
	AgeOfOnset                 *float64 `json:"age_of_onset"`

	EmotionIntensitySum *float64 `json:"emotion_intensity_sum"`
	AnxietyLevel        *float64 `json:"anxiety_level"`
	DepressionLevel     *float64 `json:"depression_level"`
	CopingEffective     *float64 `json:"coping_strategies_effective"`
	SleepQualityScore   *float64 `json:"sleep_quality_score"`

	AvgUrge7d        float64 `json:"avg_urge_7d"`
	AvgUrge30d       float64 `json:"avg_urge_30d"`
	MaxUrge7d        float64 `json:"max_urge_7d"`
	HighUrgeEvents7d float64 `json:"high_urge_events_7d"`

	AvgSleep7d         float64 `json:"avg_sleep_7d"`
	ShortSleepNights7d float64 `json:"short_sleep_nights_7d"`

	AvgHealthStress7d float64 `json:"avg_health_stress_7d"`
	HighStressDays7d  float64 `json:"high_stress_days_7d"`

	HighUrgeHighStressDays7d float64 `json:"high_urge_and_high_stress_days_7d"`
}

func requireRange(v *float64, name string, min, max float64) (float64, error) {
	if v == nil {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s is required", name)
	}
	if *v < min || *v > max {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be between %g and %g", name, min, max)
	}
	return *v, nil
}

func optionalRange(v *float64, name string, min, max, def float64) (float64, error) {
	if v == nil {
		return def, nil
	}
	if *v < min || *v > max {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be between %g and %g", name, min, max)
	}
	return *v, nil
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *PredictRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	checks := []struct {
		v        *float64
		name     string
		min, max float64
	}{
		{r.PullingSeverity, "pulling_severity", 0, 10},
		{r.PullingFrequencyEncoded, "pulling_frequency_encoded", 0, 5},
		{r.AwarenessLevelEncoded, "awareness_level_encoded", 0, 1},
		{r.HowLongStoppedDaysEst, "how_long_stopped_days_est", 0, 36500},
		{r.SuccessfullyStoppedEncoded, "successfully_stopped_encoded", 0, 1},
		{r.YearsSinceOnset, "years_since_onset", 0, 120},
		{r.Age, "age", 0, 120},
		{r.AgeOfOnset, "age_of_onset", 0, 120},
	}
	for _, c := range checks {
		if _, err := requireRange(c.v, c.name, c.min, c.max); err != nil {
			return err
		}
	}

	var err error
	if r.EmotionIntensitySum, err = defaulted(r.EmotionIntensitySum, 0); err != nil {
		return err
	}
	if r.AnxietyLevel, err = defaultedRange(r.AnxietyLevel, "anxiety_level", 0, 1, 0.5); err != nil {
		return err
	}
	if r.DepressionLevel, err = defaultedRange(r.DepressionLevel, "depression_level", 0, 1, 0.5); err != nil {
		return err
	}
	if r.CopingEffective, err = defaultedRange(r.CopingEffective, "coping_strategies_effective", 0, 1, 0); err != nil {
		return err
	}
	if r.SleepQualityScore, err = defaultedRange(r.SleepQualityScore, "sleep_quality_score", 0, 10, 5); err != nil {
		return err
	}
	return nil
}

func defaulted(v *float64, def float64) (*float64, error) {
	if v == nil {
		return &def, nil
	}
	return v, nil
}

func defaultedRange(v *float64, name string, min, max, def float64) (*float64, error) {
	out, err := optionalRange(v, name, min, max, def)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Row converts the validated request into a canonical feature row.
func (r *PredictRequest) Row() map[string]any {
	return map[string]any{
		features.FeatPullingSeverity:            *r.PullingSeverity,
		features.FeatPullingFrequencyEncoded:    *r.PullingFrequencyEncoded,
		features.FeatAwarenessLevelEncoded:      *r.AwarenessLevelEncoded,
		features.FeatHowLongStoppedDaysEst:      *r.HowLongStoppedDaysEst,
		features.FeatSuccessfullyStoppedEncoded: *r.SuccessfullyStoppedEncoded,
		features.FeatYearsSinceOnset:            *r.YearsSinceOnset,
		features.FeatAge:                        *r.Age,
		features.FeatAgeOfOnset:                 *r.AgeOfOnset,

		features.FeatEmotionIntensitySum: *r.EmotionIntensitySum,
		features.FeatAnxietyLevel:        *r.AnxietyLevel,
		features.FeatDepressionLevel:     *r.DepressionLevel,
		features.FeatCopingEffective:     *r.CopingEffective,
		features.FeatSleepQualityScore:   *r.SleepQualityScore,

		features.FeatAvgUrge7d:        r.AvgUrge7d,
		features.FeatAvgUrge30d:       r.AvgUrge30d,
		features.FeatMaxUrge7d:        r.MaxUrge7d,
		features.FeatHighUrgeEvents7d: r.HighUrgeEvents7d,

		features.FeatAvgSleep7d:         r.AvgSleep7d,
		features.FeatShortSleepNights7d: r.ShortSleepNights7d,

		features.FeatAvgHealthStress7d: r.AvgHealthStress7d,
		features.FeatHighStressDays7d:  r.HighStressDays7d,

		features.FeatHighUrgeHighStressDays7d: r.HighUrgeHighStressDays7d,
	}
}

// PredictFriendlyRequest accepts readable frontend inputs and encodes them
// internally via the fixed lookup tables.
type PredictFriendlyRequest struct {
	Age             *float64 `json:"age"`
	AgeOfOnset      *float64 `json:"age_of_onset"`
	YearsSinceOnset *float64 `json:"years_since_onset"`

	PullingSeverity     *float64 `json:"pulling_severity"`
	PullingFrequency    string   `json:"pulling_frequency"`
	PullingAwareness    string   `json:"pulling_awareness"`
	SuccessfullyStopped any      `json:"successfully_stopped"`
	HowLongStoppedDays  *float64 `json:"how_long_stopped_days"`
	Emotion             string   `json:"emotion"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *PredictFriendlyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	checks := []struct {
		v        *float64
		name     string
		min, max float64
	}{
		{r.Age, "age", 0, 120},
		{r.AgeOfOnset, "age_of_onset", 0, 120},
		{r.PullingSeverity, "pulling_severity", 0, 10},
		{r.HowLongStoppedDays, "how_long_stopped_days", 0, 36500},
	}
	for _, c := range checks {
		if _, err := requireRange(c.v, c.name, c.min, c.max); err != nil {
			return err
		}
	}
	if r.YearsSinceOnset != nil && (*r.YearsSinceOnset < 0 || *r.YearsSinceOnset > 120) {
		return dErrors.New(dErrors.CodeValidation, "years_since_onset must be between 0 and 120")
	}
	if strings.TrimSpace(r.PullingFrequency) == "" {
		return dErrors.New(dErrors.CodeValidation, "pulling_frequency is required")
	}
	if strings.TrimSpace(r.PullingAwareness) == "" {
		return dErrors.New(dErrors.CodeValidation, "pulling_awareness is required")
	}
	return nil
}

// Row encodes the friendly fields into a canonical feature row. Unrecognized
// categorical strings map to neutral codes; psychological sub-scores the
// friendly shape does not collect get their neutral defaults.
func (r *PredictFriendlyRequest) Row() map[string]any {
	yso := features.YearsSinceOnset(*r.Age, *r.AgeOfOnset)
	if r.YearsSinceOnset != nil {
		yso = *r.YearsSinceOnset
	}

	stopped := 0.0
	if features.Boolish(r.SuccessfullyStopped) {
		stopped = 1.0
	}

	row := map[string]any{
		features.FeatPullingSeverity:            *r.PullingSeverity,
		features.FeatPullingFrequencyEncoded:    features.FrequencyCode(r.PullingFrequency),
		features.FeatAwarenessLevelEncoded:      features.AwarenessCode(r.PullingAwareness),
		features.FeatHowLongStoppedDaysEst:      *r.HowLongStoppedDays,
		features.FeatSuccessfullyStoppedEncoded: stopped,
		features.FeatYearsSinceOnset:            yso,
		features.FeatAge:                        *r.Age,
		features.FeatAgeOfOnset:                 *r.AgeOfOnset,

		features.FeatEmotionIntensitySum: 0.0,
		features.FeatAnxietyLevel:        0.5,
		features.FeatDepressionLevel:     0.5,
		features.FeatCopingEffective:     0.0,
		features.FeatSleepQualityScore:   5.0,
	}

	// The raw emotion string rides along; the frame builder encodes it
	// with the trained label encoder.
	if strings.TrimSpace(r.Emotion) != "" {
		row[features.FeatEmotionEncoded] = r.Emotion
	}
	return row
}

// OverviewRequest is the richer scoring shape carrying rolling-window
// aggregates alongside the friendly profile fields. Unknown extra keys in
// the body are ignored; missing aggregates default to zero.
type OverviewRequest struct {
	PredictFriendlyRequest

	AvgUrge7d        float64 `json:"avg_urge_7d"`
	AvgUrge30d       float64 `json:"avg_urge_30d"`
	MaxUrge7d        float64 `json:"max_urge_7d"`
	HighUrgeEvents7d float64 `json:"high_urge_events_7d"`

	AvgSleep7d         float64 `json:"avg_sleep_7d"`
	ShortSleepNights7d float64 `json:"short_sleep_nights_7d"`

	AvgHealthStress7d float64 `json:"avg_health_stress_7d"`
	HighStressDays7d  float64 `json:"high_stress_days_7d"`

	HighUrgeHighStressDays7d float64 `json:"high_urge_and_high_stress_days_7d"`
}

// Row extends the friendly encoding with the aggregates the rule engine
// consumes.
func (r *OverviewRequest) Row() map[string]any {
	row := r.PredictFriendlyRequest.Row()

	row[features.FeatAvgUrge7d] = r.AvgUrge7d
	row[features.FeatAvgUrge30d] = r.AvgUrge30d
	row[features.FeatMaxUrge7d] = r.MaxUrge7d
	row[features.FeatHighUrgeEvents7d] = r.HighUrgeEvents7d

	row[features.FeatAvgSleep7d] = r.AvgSleep7d
	row[features.FeatShortSleepNights7d] = r.ShortSleepNights7d

	row[features.FeatAvgHealthStress7d] = r.AvgHealthStress7d
	row[features.FeatHighStressDays7d] = r.HighStressDays7d

	row[features.FeatHighUrgeHighStressDays7d] = r.HighUrgeHighStressDays7d
	return row
}

// BatchPredictRequest wraps a list of raw records for POST /batch_predict.
type BatchPredictRequest struct {
	Records []PredictRequest `json:"records"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *BatchPredictRequest) Validate() error {
	if r == nil || len(r.Records) == 0 {
		return dErrors.New(dErrors.CodeValidation, "records must contain at least one record")
	}
	if len(r.Records) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "records must contain at most 1000 records")
	}
	for i := range r.Records {
		if err := r.Records[i].Validate(); err != nil {
			return dErrors.Newf(dErrors.CodeValidation, "records[%d]: %s", i, dErrors.MessageOf(err))
		}
	}
	return nil
}

// Rows converts every validated record into a canonical feature row.
func (r *BatchPredictRequest) Rows() []map[string]any {
	rows := make([]map[string]any, len(r.Records))
	for i := range r.Records {
		rows[i] = r.Records[i].Row()
	}
	return rows
}
