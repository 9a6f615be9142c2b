package scoring

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"riskserve/internal/audit"
	"riskserve/internal/features"
	"riskserve/internal/model"
	"riskserve/internal/scoring/metrics"
	dErrors "riskserve/pkg/domain-errors"
	"riskserve/pkg/requestcontext"
)

// Prediction is one scored record together with its debug sub-scores.
type Prediction struct {
	Risk
	ModelScore float64 `json:"model_score"`
	RuleScore  float64 `json:"rule_score"`
}

// Output is the result of one scoring call, covering every record it scored.
type Output struct {
	Predictions  []Prediction
	ModelVersion string
	FeaturesUsed int
	Defaulted    []string
	Runtime      time.Duration
}

// Status reports whether the serving context can score traffic.
type Status struct {
	Ready        bool
	FeatureCount int
	ModelVersion string
	ModelPath    string
	ModelMeta    map[string]any
}

// servingState is the artifact snapshot every request scores against. It is
// replaced wholesale on promote, never mutated, so concurrent scoring calls
// need no coordination beyond reading the current pointer.
type servingState struct {
	artifacts *model.Artifacts
	builder   *features.Builder
}

// Service is the scoring engine: it turns loosely typed input rows into
// scaled feature matrices, runs the model and rule branches, blends them,
// and records every decision in the inference log.
type Service struct {
	alpha     float64
	logger    *slog.Logger
	metrics   *metrics.Metrics
	cache     *Cache
	publisher *audit.Publisher
	tracer    trace.Tracer

	mu    sync.RWMutex
	state servingState
}

// NewService builds a scoring service without artifacts; it starts degraded
// and reports not-ready until SetArtifacts is called. metrics, cache, and
// publisher may all be nil.
func NewService(logger *slog.Logger, alpha float64, m *metrics.Metrics, cache *Cache, publisher *audit.Publisher) *Service {
	return &Service{
		alpha:     alpha,
		logger:    logger,
		metrics:   m,
		cache:     cache,
		publisher: publisher,
		tracer:    otel.Tracer("riskserve/scoring"),
	}
}

// SetArtifacts installs a loaded artifact set as the active serving state.
// Called at startup and again after a registry promote.
func (s *Service) SetArtifacts(arts *model.Artifacts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = servingState{
		artifacts: arts,
		builder:   features.NewBuilder(arts.FeatureNames, arts.Scaler, arts.Encoder),
	}
}

func (s *Service) snapshot() (servingState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.artifacts == nil {
		return servingState{}, dErrors.New(dErrors.CodeNotReady, "model artifacts not loaded")
	}
	return s.state, nil
}

// Alpha returns the configured blend weight.
func (s *Service) Alpha() float64 {
	return s.alpha
}

// Status reports the current serving state for the health surface.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.artifacts == nil {
		return Status{}
	}
	return Status{
		Ready:        true,
		FeatureCount: len(s.state.artifacts.FeatureNames),
		ModelVersion: s.state.artifacts.Version,
		ModelPath:    s.state.artifacts.Path,
		ModelMeta:    s.state.artifacts.Meta,
	}
}

// Score runs the full pipeline for a batch of loosely typed rows: build the
// scaled matrix, run the model and rule branches in parallel, blend, bucket,
// and log. kind tags the request shape for the audit trail and metrics.
func (s *Service) Score(ctx context.Context, kind string, rows []map[string]any) (*Output, error) {
	ctx, span := s.tracer.Start(ctx, "scoring.Score",
		trace.WithAttributes(
			attribute.String("scoring.kind", kind),
			attribute.Int("scoring.records", len(rows)),
		))
	defer span.End()

	start := time.Now()

	state, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	matrix, err := state.builder.BuildRaw(rows)
	if err != nil {
		return nil, err
	}

	if len(rows) == 1 {
		key := CacheKey(state.artifacts.Version, s.alpha, matrix.Data[0])
		if pred, ok := s.cache.Get(ctx, key); ok {
			out := s.finish(ctx, kind, state, matrix, []Prediction{pred}, start)
			span.SetAttributes(attribute.Bool("scoring.cache_hit", true))
			return out, nil
		}
	}

	var modelScores []float64
	ruleScores := make([]float64, len(rows))

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		modelScores = ModelScores(state.artifacts.Classifier, matrix.Data)
		return nil
	})
	g.Go(func() error {
		for i, row := range rows {
			ruleScores[i] = RuleScore(features.RecordFromMap(row))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scoring failed")
	}

	preds := make([]Prediction, len(rows))
	for i := range rows {
		blended := Blend(modelScores[i], ruleScores[i], s.alpha)
		preds[i] = Prediction{
			Risk:       RiskFromScore(blended),
			ModelScore: round3(modelScores[i]),
			RuleScore:  round3(ruleScores[i]),
		}
	}

	if len(rows) == 1 {
		s.cache.Put(ctx, CacheKey(state.artifacts.Version, s.alpha, matrix.Data[0]), preds[0])
	}

	return s.finish(ctx, kind, state, matrix, preds, start), nil
}

// DebugVector builds the scaled feature vector for one row and returns the
// topN entries by absolute magnitude, for operator inspection.
func (s *Service) DebugVector(row map[string]any, topN int) (*features.Matrix, []FeatureValue, error) {
	state, err := s.snapshot()
	if err != nil {
		return nil, nil, err
	}
	matrix, err := state.builder.BuildRaw([]map[string]any{row})
	if err != nil {
		return nil, nil, err
	}
	return matrix, TopAbsolute(matrix.Columns, matrix.Data[0], topN), nil
}

// finish records metrics and the audit row and assembles the output. The
// audit write is best effort: a sink problem never fails the prediction.
func (s *Service) finish(ctx context.Context, kind string, state servingState, matrix *features.Matrix, preds []Prediction, start time.Time) *Output {
	runtime := time.Since(start)

	for _, p := range preds {
		s.metrics.IncrementPrediction(p.Bucket, kind)
	}
	s.metrics.ObserveScoreLatency(kind, runtime)
	if len(preds) > 1 {
		s.metrics.ObserveBatchSize(len(preds))
	}
	if len(matrix.Defaulted) > 0 {
		s.metrics.IncrementDefaultedFeatures()
	}

	rec := audit.Record{
		Timestamp:     time.Now().UTC(),
		RequestID:     requestcontext.RequestID(ctx),
		RequestType:   kind,
		NRecords:      len(preds),
		NFeaturesUsed: len(matrix.Columns),
		ModelVersion:  state.artifacts.Version,
		RuntimeSec:    runtime.Seconds(),
	}
	if len(preds) == 1 {
		rec.RiskScore = preds[0].Score
		rec.RiskBucket = preds[0].Bucket
		rec.RiskCode = preds[0].Code
		rec.Confidence = preds[0].Confidence
	} else {
		var scoreSum, confSum float64
		for _, p := range preds {
			scoreSum += p.Score
			confSum += p.Confidence
		}
		rec.RiskScore = round3(scoreSum / float64(len(preds)))
		rec.Confidence = round3(confSum / float64(len(preds)))
		rec.RiskBucket = "mixed"
		rec.RiskCode = -1
	}
	s.publisher.Emit(ctx, rec)

	return &Output{
		Predictions:  preds,
		ModelVersion: state.artifacts.Version,
		FeaturesUsed: len(matrix.Columns),
		Defaulted:    matrix.Defaulted,
		Runtime:      runtime,
	}
}

// FeatureValue is one named cell of a built feature vector.
type FeatureValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TopAbsolute returns the n entries with the largest absolute value,
// descending.
func TopAbsolute(names []string, values []float64, n int) []FeatureValue {
	out := make([]FeatureValue, 0, len(names))
	for i, name := range names {
		if i < len(values) {
			out = append(out, FeatureValue{Name: name, Value: values[i]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
