package model

import "math"

// SoftmaxLinear is a linear classifier with calibrated probabilities: one
// coefficient row per class (or a single row for the binary case) plus
// intercepts. This is the artifact format the training pipeline emits for
// logistic-family models.
type SoftmaxLinear struct {
	classes   []int
	coef      [][]float64
	intercept []float64
}

func (m *SoftmaxLinear) Classes() []int { return m.classes }

// PredictProba computes class probabilities per row. Binary models stored as
// a single coefficient row use the sigmoid of the positive-class score;
// multi-class models use a row-wise softmax.
func (m *SoftmaxLinear) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(m.classes) == 2 && len(m.coef) == 1 {
			p := sigmoid(dot(row, m.coef[0]) + m.intercept[0])
			out[i] = []float64{1 - p, p}
			continue
		}
		out[i] = softmax(m.scores(row))
	}
	return out
}

// Predict returns the argmax class per row.
func (m *SoftmaxLinear) Predict(X [][]float64) []int {
	proba := m.PredictProba(X)
	out := make([]int, len(proba))
	for i, row := range proba {
		best := 0
		for j := range row {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = m.classes[best]
	}
	return out
}

func (m *SoftmaxLinear) scores(row []float64) []float64 {
	scores := make([]float64, len(m.coef))
	for c := range m.coef {
		scores[c] = dot(row, m.coef[c]) + m.intercept[c]
	}
	return scores
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for i := 0; i < n; i++ {
		s += a[i] * b[i]
	}
	return s
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func softmax(scores []float64) []float64 {
	max := math.Inf(-1)
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	if sum == 0 {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
