package features

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"riskserve/internal/model"
	dErrors "riskserve/pkg/domain-errors"
)

// Matrix is a built feature frame: one row per input record, columns exactly
// matching the trained feature list, already passed through the fitted
// scaler.
type Matrix struct {
	Data    [][]float64
	Columns []string

	// Defaulted lists the trained columns that were absent from at least
	// one input record and synthesized as 0.0. Exposed so callers (and
	// tests) can observe the best-effort fill instead of relying on it
	// silently.
	Defaulted []string
}

// Builder turns canonical records into scaled model input. It holds the
// loaded feature list, scaler and label encoder and is safe for concurrent
// use since all are immutable after load.
type Builder struct {
	featureNames []string
	scaler       *model.Scaler
	encoder      *model.LabelEncoder
}

// NewBuilder constructs a builder over the loaded artifacts. Any argument
// may be nil when startup is incomplete; Build reports missing scaler or
// features as a not-ready condition per call. A nil encoder only disables
// categorical emotion encoding.
func NewBuilder(featureNames []string, scaler *model.Scaler, encoder *model.LabelEncoder) *Builder {
	return &Builder{featureNames: featureNames, scaler: scaler, encoder: encoder}
}

// Build converts canonical records into a scaled matrix.
func (b *Builder) Build(records []Record) (*Matrix, error) {
	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		feats := rec.Features()
		row := make(map[string]any, len(feats))
		for k, v := range feats {
			row[k] = v
		}
		rows[i] = row
	}
	return b.BuildRaw(rows)
}

// BuildRaw converts loosely typed rows (CSV cells, JSON numbers, strings)
// into a scaled matrix. Unknown keys are dropped; trained columns missing
// from a row become 0.0; values that cannot be coerced to a finite number
// become 0.0. The permissive policy is deliberate: a degraded prediction
// beats a hard failure when optional engineered aggregates are missing.
func (b *Builder) BuildRaw(rows []map[string]any) (*Matrix, error) {
	if len(b.featureNames) == 0 || b.scaler == nil {
		return nil, dErrors.New(dErrors.CodeNotReady, "model artifacts not loaded (scaler/features missing)")
	}

	defaulted := make(map[string]struct{})
	data := make([][]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(b.featureNames))
		for j, name := range b.featureNames {
			raw, ok := row[name]
			if !ok {
				defaulted[name] = struct{}{}
				continue
			}
			vec[j] = b.coerce(name, raw)
		}
		data[i] = vec
	}

	b.scaler.Transform(data)

	m := &Matrix{
		Data:    data,
		Columns: b.featureNames,
	}
	for name := range defaulted {
		m.Defaulted = append(m.Defaulted, name)
	}
	sort.Strings(m.Defaulted)
	return m, nil
}

// FeatureCount returns the trained feature width, 0 when not loaded.
func (b *Builder) FeatureCount() int {
	return len(b.featureNames)
}

// coerce converts a cell to its numeric feature value. The emotion column
// accepts the raw categorical string and runs it through the trained label
// encoder; every other column takes the numeric coercion path.
func (b *Builder) coerce(name string, v any) float64 {
	if name == FeatEmotionEncoded && b.encoder != nil {
		if s, ok := v.(string); ok {
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				return b.encoder.Transform(s)
			}
		}
	}
	return coerceFloat(v)
}

// coerceFloat converts arbitrary cell values to a finite float64, returning
// 0.0 for anything unparseable or non-finite.
func coerceFloat(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
