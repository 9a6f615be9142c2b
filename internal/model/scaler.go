package model

import "fmt"

// Scaler kinds match what the training pipeline can fit.
const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

// Scaler is a fitted, column-aligned normalization transform. It is applied
// as-is at inference time and never re-fit.
type Scaler struct {
	Kind string `json:"kind"`

	// Standard: (x - Mean) / Scale per column.
	Mean []float64 `json:"mean,omitempty"`

	// MinMax: x * Scale + Min per column (scikit-style precomputed terms).
	Min []float64 `json:"min,omitempty"`

	Scale []float64 `json:"scale"`
}

// Validate checks internal consistency against the trained feature width.
func (s *Scaler) Validate(nFeatures int) error {
	if len(s.Scale) != nFeatures {
		return fmt.Errorf("scaler has %d columns, feature list has %d", len(s.Scale), nFeatures)
	}
	switch s.Kind {
	case ScalerStandard:
		if len(s.Mean) != nFeatures {
			return fmt.Errorf("standard scaler mean has %d columns, want %d", len(s.Mean), nFeatures)
		}
	case ScalerMinMax:
		if len(s.Min) != nFeatures {
			return fmt.Errorf("minmax scaler min has %d columns, want %d", len(s.Min), nFeatures)
		}
	default:
		return fmt.Errorf("unknown scaler kind %q", s.Kind)
	}
	return nil
}

// Transform normalizes the matrix in place and returns it. Zero scale for a
// constant column maps the value to zero instead of dividing by zero.
func (s *Scaler) Transform(X [][]float64) [][]float64 {
	for _, row := range X {
		for j := range row {
			if j >= len(s.Scale) {
				break
			}
			switch s.Kind {
			case ScalerStandard:
				if s.Scale[j] == 0 {
					row[j] = 0
					continue
				}
				row[j] = (row[j] - s.Mean[j]) / s.Scale[j]
			case ScalerMinMax:
				row[j] = row[j]*s.Scale[j] + s.Min[j]
			}
		}
	}
	return X
}
