package scoring

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskserve/internal/audit"
	"riskserve/internal/audit/store/memory"
	"riskserve/internal/features"
	"riskserve/internal/model"
	dErrors "riskserve/pkg/domain-errors"
)

// constProba scores every row with the same probability vector.
type constProba struct {
	classes []int
	row     []float64
}

func (c *constProba) Classes() []int { return c.classes }

func (c *constProba) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range out {
		out[i] = c.classes[0]
	}
	return out
}

func (c *constProba) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = c.row
	}
	return out
}

type droppingStore struct{}

func (droppingStore) Append(context.Context, audit.Record) error {
	return errors.New("sink unavailable")
}

func testArtifacts(clf model.Classifier) *model.Artifacts {
	names := []string{features.FeatPullingSeverity, features.FeatAvgUrge7d}
	return &model.Artifacts{
		Classifier: clf,
		Scaler: &model.Scaler{
			Kind:  "standard",
			Mean:  []float64{0, 0},
			Scale: []float64{1, 1},
		},
		FeatureNames: names,
		Encoder:      model.NewLabelEncoder([]string{"low", "medium", "high"}),
		Version:      "test_model.json",
		Path:         "artifacts/models/test_model.json",
	}
}

func testService(store audit.Store) *Service {
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(logger, 0.5, nil, nil, audit.NewPublisher(logger, store))
	return svc
}

func TestServiceScoreNotReady(t *testing.T) {
	svc := testService(memory.New())

	_, err := svc.Score(context.Background(), audit.KindRaw, []map[string]any{{}})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotReady))

	status := svc.Status()
	assert.False(t, status.Ready)
}

func TestServiceScoreSingle(t *testing.T) {
	store := memory.New()
	svc := testService(store)

	// Model branch: proba {0.2, 0.8} over classes {0, 1} -> 0.8.
	svc.SetArtifacts(testArtifacts(&constProba{classes: []int{0, 1}, row: []float64{0.2, 0.8}}))

	out, err := svc.Score(context.Background(), audit.KindRaw, []map[string]any{{
		features.FeatPullingSeverity: 8.0,
		features.FeatAvgUrge7d:       0.0,
	}})
	require.NoError(t, err)
	require.Len(t, out.Predictions, 1)

	pred := out.Predictions[0]
	assert.InDelta(t, 0.8, pred.ModelScore, 1e-9)
	// Rule branch: 0.30 * 8/10 only.
	assert.InDelta(t, 0.24, pred.RuleScore, 1e-9)
	// Blend at alpha 0.5.
	assert.InDelta(t, 0.52, pred.Score, 1e-9)
	assert.Equal(t, BucketMedium, pred.Bucket)
	assert.Equal(t, 1, pred.Code)

	assert.Equal(t, "test_model.json", out.ModelVersion)
	assert.Equal(t, 2, out.FeaturesUsed)

	recs, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, audit.KindRaw, recs[0].RequestType)
	assert.Equal(t, 1, recs[0].NRecords)
	assert.InDelta(t, pred.Score, recs[0].RiskScore, 1e-9)
	assert.Equal(t, pred.Bucket, recs[0].RiskBucket)
}

func TestServiceScoreBatchAuditSummary(t *testing.T) {
	store := memory.New()
	svc := testService(store)
	svc.SetArtifacts(testArtifacts(&constProba{classes: []int{0, 1}, row: []float64{1.0, 0.0}}))

	rows := []map[string]any{
		{features.FeatPullingSeverity: 0.0},
		{features.FeatPullingSeverity: 10.0},
	}
	out, err := svc.Score(context.Background(), audit.KindBatch, rows)
	require.NoError(t, err)
	require.Len(t, out.Predictions, 2)

	recs, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1, "one summary row per batch call")
	assert.Equal(t, 2, recs[0].NRecords)
	assert.Equal(t, "mixed", recs[0].RiskBucket)
	assert.Equal(t, -1, recs[0].RiskCode)
}

func TestServiceScoreSurvivesAuditFailure(t *testing.T) {
	svc := testService(droppingStore{})
	svc.SetArtifacts(testArtifacts(&constProba{classes: []int{0, 1}, row: []float64{0.5, 0.5}}))

	out, err := svc.Score(context.Background(), audit.KindRaw, []map[string]any{{
		features.FeatPullingSeverity: 5.0,
	}})
	require.NoError(t, err, "a sink failure never fails the prediction")
	assert.Len(t, out.Predictions, 1)
}

func TestServiceScoreReportsDefaulted(t *testing.T) {
	svc := testService(memory.New())
	svc.SetArtifacts(testArtifacts(&constProba{classes: []int{0, 1}, row: []float64{1.0, 0.0}}))

	out, err := svc.Score(context.Background(), audit.KindRaw, []map[string]any{{
		features.FeatPullingSeverity: 3.0,
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{features.FeatAvgUrge7d}, out.Defaulted)
}

func TestServiceStatusAfterLoad(t *testing.T) {
	svc := testService(memory.New())
	svc.SetArtifacts(testArtifacts(&constProba{classes: []int{0}, row: []float64{1.0}}))

	status := svc.Status()
	assert.True(t, status.Ready)
	assert.Equal(t, 2, status.FeatureCount)
	assert.Equal(t, "test_model.json", status.ModelVersion)
}

func TestServiceDebugVector(t *testing.T) {
	svc := testService(memory.New())
	svc.SetArtifacts(testArtifacts(&constProba{classes: []int{0, 1}, row: []float64{1.0, 0.0}}))

	matrix, top, err := svc.DebugVector(map[string]any{
		features.FeatPullingSeverity: 2.0,
		features.FeatAvgUrge7d:       -9.0,
	}, 1)
	require.NoError(t, err)
	assert.Len(t, matrix.Data, 1)
	require.Len(t, top, 1)
	assert.Equal(t, features.FeatAvgUrge7d, top[0].Name, "ranked by absolute magnitude")
	assert.InDelta(t, -9.0, top[0].Value, 1e-9)
}

func TestCacheKeyDeterministic(t *testing.T) {
	row := []float64{1.5, -2.25, 0}

	a := CacheKey("m1.json", 0.5, row)
	b := CacheKey("m1.json", 0.5, []float64{1.5, -2.25, 0})
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, CacheKey("m2.json", 0.5, row), "model version is part of the key")
	assert.NotEqual(t, a, CacheKey("m1.json", 0.75, row), "blend weight is part of the key")
	assert.NotEqual(t, a, CacheKey("m1.json", 0.5, []float64{1.5, -2.25, 1}))
}
