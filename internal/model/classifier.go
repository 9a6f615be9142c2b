// Package model loads and evaluates the trained artifacts: classifier,
// scaler, feature list, and label encoder. The classifier is an opaque
// capability; nothing outside this package depends on which algorithm
// produced it.
package model

// Classifier is the minimal capability every trained model exposes: its
// known output classes and hard-label prediction for a feature matrix.
type Classifier interface {
	// Classes returns the class identifiers the model was trained on.
	// Order is whatever the artifact recorded; callers must not assume
	// the identifiers are 0..n-1.
	Classes() []int

	// Predict returns one hard class label per row of X.
	Predict(X [][]float64) []int
}

// ProbabilityClassifier is the wider capability of models that can produce a
// per-class probability distribution. Callers type-assert for it and fall
// back to hard labels when absent.
type ProbabilityClassifier interface {
	Classifier

	// PredictProba returns one probability row per input row, with columns
	// aligned to Classes().
	PredictProba(X [][]float64) [][]float64
}
