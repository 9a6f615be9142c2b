package handler

import (
	"fmt"

	"riskserve/internal/scoring"
)

// DebugScores carries the sub-scores behind a blended result.
type DebugScores struct {
	ModelScore float64 `json:"model_score"`
	RuleScore  float64 `json:"rule_score"`
	Alpha      float64 `json:"alpha"`
}

// PredictResponse is the HTTP response for the single-record scoring
// endpoints.
type PredictResponse struct {
	RiskScore         float64     `json:"risk_score"`
	RiskBucket        string      `json:"risk_bucket"`
	RiskCode          int         `json:"risk_code"`
	Confidence        float64     `json:"confidence"`
	NFeaturesUsed     int         `json:"n_features_used"`
	ModelVersion      string      `json:"model_version"`
	RuntimeSec        float64     `json:"runtime_sec"`
	DefaultedFeatures []string    `json:"defaulted_features,omitempty"`
	Debug             DebugScores `json:"debug"`
}

// FromOutput converts a single-record scoring output to an HTTP response.
func FromOutput(out *scoring.Output, alpha float64) *PredictResponse {
	pred := out.Predictions[0]
	return &PredictResponse{
		RiskScore:         pred.Score,
		RiskBucket:        pred.Bucket,
		RiskCode:          pred.Code,
		Confidence:        pred.Confidence,
		NFeaturesUsed:     out.FeaturesUsed,
		ModelVersion:      out.ModelVersion,
		RuntimeSec:        out.Runtime.Seconds(),
		DefaultedFeatures: out.Defaulted,
		Debug: DebugScores{
			ModelScore: pred.ModelScore,
			RuleScore:  pred.RuleScore,
			Alpha:      alpha,
		},
	}
}

// BatchPrediction is one row of a batch response.
type BatchPrediction struct {
	Index      int     `json:"index"`
	RiskScore  float64 `json:"risk_score"`
	RiskBucket string  `json:"risk_bucket"`
	RiskCode   int     `json:"risk_code"`
	Confidence float64 `json:"confidence"`
	ModelScore float64 `json:"model_score"`
	RuleScore  float64 `json:"rule_score"`
}

// BatchPredictResponse is the HTTP response for the batch scoring endpoints.
type BatchPredictResponse struct {
	Count         int               `json:"count"`
	Predictions   []BatchPrediction `json:"predictions"`
	NFeaturesUsed int               `json:"n_features_used"`
	ModelVersion  string            `json:"model_version"`
	RuntimeSec    float64           `json:"runtime_sec"`
}

// FromBatchOutput converts a multi-record scoring output to an HTTP response.
func FromBatchOutput(out *scoring.Output) *BatchPredictResponse {
	preds := make([]BatchPrediction, len(out.Predictions))
	for i, p := range out.Predictions {
		preds[i] = BatchPrediction{
			Index:      i,
			RiskScore:  p.Score,
			RiskBucket: p.Bucket,
			RiskCode:   p.Code,
			Confidence: p.Confidence,
			ModelScore: p.ModelScore,
			RuleScore:  p.RuleScore,
		}
	}
	return &BatchPredictResponse{
		Count:         len(preds),
		Predictions:   preds,
		NFeaturesUsed: out.FeaturesUsed,
		ModelVersion:  out.ModelVersion,
		RuntimeSec:    out.Runtime.Seconds(),
	}
}

// LiveResponse is the liveness payload; it succeeds even before any model
// has loaded.
type LiveResponse struct {
	Status          string         `json:"status"`
	Version         string         `json:"version"`
	ActiveModelPath string         `json:"active_model_path"`
	Scoring         string         `json:"scoring"`
	ModelMeta       map[string]any `json:"model_meta,omitempty"`
}

// NewLiveResponse describes the process and its configured blend. version is
// the API version, not the model's.
func NewLiveResponse(version string, status scoring.Status, alpha float64) *LiveResponse {
	return &LiveResponse{
		Status:          "alive",
		Version:         version,
		ActiveModelPath: status.ModelPath,
		Scoring:         fmt.Sprintf("blend(model=%.2f, rule=%.2f)", 1-alpha, alpha),
		ModelMeta:       status.ModelMeta,
	}
}

// HealthResponse is the readiness payload.
type HealthResponse struct {
	OK           bool   `json:"ok"`
	NFeatures    int    `json:"n_features"`
	ModelVersion string `json:"model_version"`
}

// DebugOverviewResponse exposes the rule-component breakdown.
type DebugOverviewResponse struct {
	RuleScore  float64            `json:"rule_score"`
	RawScore   float64            `json:"raw_score"`
	Components scoring.Components `json:"components"`
}

// DebugVectorResponse exposes the built feature vector's largest entries.
type DebugVectorResponse struct {
	NFeatures      int                    `json:"n_features"`
	TopAbsFeatures []scoring.FeatureValue `json:"top_abs_features"`
}
