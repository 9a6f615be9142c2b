package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"riskserve/pkg/platform/sentinel"
)

// Artifacts bundles everything the serving path needs. Loaded once at
// startup and treated as immutable afterwards; concurrent scoring calls read
// it without coordination.
type Artifacts struct {
	Classifier   Classifier
	Scaler       *Scaler
	FeatureNames []string
	Encoder      *LabelEncoder

	// Version is the active model's filename, echoed in responses and
	// audit rows. Path is the full location it was loaded from.
	Version string
	Path    string

	// Meta carries the registry pointer's free-form metadata.
	Meta map[string]any
}

// Paths locates the four artifact files.
type Paths struct {
	Model    string
	Scaler   string
	Features string
	Encoder  string
}

// classifierDoc is the on-disk model artifact.
type classifierDoc struct {
	Type      string      `json:"type"`
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty"`
	Centroids [][]float64 `json:"centroids,omitempty"`
}

// Load reads all four artifacts. Any missing or malformed file fails the
// load as a whole; callers keep serving in a degraded not-ready state rather
// than crash.
func Load(paths Paths, meta map[string]any) (*Artifacts, error) {
	features, err := LoadFeatures(paths.Features)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	clf, err := LoadClassifier(paths.Model)
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}

	scaler, err := LoadScaler(paths.Scaler, len(features))
	if err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}

	encoder, err := LoadEncoder(paths.Encoder)
	if err != nil {
		return nil, fmt.Errorf("load encoder: %w", err)
	}

	return &Artifacts{
		Classifier:   clf,
		Scaler:       scaler,
		FeatureNames: features,
		Encoder:      encoder,
		Version:      filepath.Base(paths.Model),
		Path:         paths.Model,
		Meta:         meta,
	}, nil
}

// LoadClassifier reads a model artifact and constructs the matching
// classifier implementation.
func LoadClassifier(path string) (Classifier, error) {
	var doc classifierDoc
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	if len(doc.Classes) == 0 {
		return nil, fmt.Errorf("%s: model artifact has no classes: %w", path, sentinel.ErrCorrupt)
	}

	switch doc.Type {
	case "softmax_linear":
		if len(doc.Coef) == 0 || len(doc.Intercept) == 0 {
			return nil, fmt.Errorf("%s: softmax_linear artifact missing coef/intercept: %w", path, sentinel.ErrCorrupt)
		}
		return &SoftmaxLinear{classes: doc.Classes, coef: doc.Coef, intercept: doc.Intercept}, nil
	case "nearest_centroid":
		if len(doc.Centroids) != len(doc.Classes) {
			return nil, fmt.Errorf("%s: nearest_centroid artifact has %d centroids for %d classes: %w",
				path, len(doc.Centroids), len(doc.Classes), sentinel.ErrCorrupt)
		}
		return &NearestCentroid{classes: doc.Classes, centroids: doc.Centroids}, nil
	default:
		return nil, fmt.Errorf("%s: unknown model type %q: %w", path, doc.Type, sentinel.ErrCorrupt)
	}
}

// LoadScaler reads the fitted scaler and validates it against the feature
// width.
func LoadScaler(path string, nFeatures int) (*Scaler, error) {
	var s Scaler
	if err := readJSON(path, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(nFeatures); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, err, sentinel.ErrCorrupt)
	}
	return &s, nil
}

// LoadFeatures reads the ordered feature-name list.
func LoadFeatures(path string) ([]string, error) {
	var names []string
	if err := readJSON(path, &names); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: empty feature list: %w", path, sentinel.ErrCorrupt)
	}
	return names, nil
}

// encoderDoc is the on-disk label-encoder artifact.
type encoderDoc struct {
	Classes []string `json:"classes"`
}

// LoadEncoder reads the fitted label encoder.
func LoadEncoder(path string) (*LabelEncoder, error) {
	var doc encoderDoc
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	return NewLabelEncoder(doc.Classes), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, sentinel.ErrNotFound)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, sentinel.ErrCorrupt)
	}
	return nil
}
