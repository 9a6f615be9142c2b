package model

// NearestCentroid predicts the class of the closest training centroid. It
// deliberately does not implement ProbabilityClassifier: distances are not
// calibrated probabilities, so downstream scoring must use its hard-label
// fallback.
type NearestCentroid struct {
	classes   []int
	centroids [][]float64
}

func (m *NearestCentroid) Classes() []int { return m.classes }

// Predict returns the class of the nearest centroid (squared Euclidean) per
// row.
func (m *NearestCentroid) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, row := range X {
		best := 0
		bestDist := sqDist(row, m.centroids[0])
		for c := 1; c < len(m.centroids); c++ {
			if d := sqDist(row, m.centroids[c]); d < bestDist {
				best = c
				bestDist = d
			}
		}
		out[i] = m.classes[best]
	}
	return out
}

func sqDist(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
