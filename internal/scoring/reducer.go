package scoring

import (
	"sort"

	"riskserve/internal/model"
)

// ModelScores reduces classifier output for a feature matrix to one scalar
// per row in [0,1].
//
// When the classifier exposes probabilities, each known class gets a
// rank-based weight evenly spaced over [0,1] (sorted ascending, single class
// weighs 1.0) and the row score is the dot product of the probability row
// with those weights. This turns an arbitrary ordinal labeling into a
// monotonic severity proxy without assuming classes are literally 0/1/2.
//
// Hard-label-only classifiers fall back to the same rank-to-weight mapping
// applied directly to the predicted labels, ranked over the predicted label
// set only. Coarser, but never an error.
func ModelScores(clf model.Classifier, X [][]float64) []float64 {
	if pc, ok := clf.(model.ProbabilityClassifier); ok {
		weights := rankWeights(clf.Classes())
		proba := pc.PredictProba(X)

		out := make([]float64, len(proba))
		classes := clf.Classes()
		for i, row := range proba {
			var s float64
			for j, p := range row {
				if j < len(classes) {
					s += p * weights[classes[j]]
				}
			}
			out[i] = clip01(s)
		}
		return out
	}

	preds := clf.Predict(X)
	weights := rankWeights(preds)

	out := make([]float64, len(preds))
	for i, label := range preds {
		out[i] = weights[label]
	}
	return out
}

// rankWeights maps each distinct class to a weight evenly spaced over [0,1]
// by ascending rank. A single class maps to 1.0. Duplicate and unsorted
// inputs are fine; any class set yields a valid assignment.
func rankWeights(classes []int) map[int]float64 {
	uniq := make(map[int]struct{}, len(classes))
	for _, c := range classes {
		uniq[c] = struct{}{}
	}

	sorted := make([]int, 0, len(uniq))
	for c := range uniq {
		sorted = append(sorted, c)
	}
	sort.Ints(sorted)

	weights := make(map[int]float64, len(sorted))
	if len(sorted) == 1 {
		weights[sorted[0]] = 1.0
		return weights
	}
	for i, c := range sorted {
		weights[c] = float64(i) / float64(len(sorted)-1)
	}
	return weights
}
