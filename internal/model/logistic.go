package model

import "math"

// LogisticRegression is an L2-regularized, class-weighted linear classifier
// trained with batch gradient descent. Gradient-based, so it consumes scaled
// input.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`

	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
	L2           float64 `json:"l2"`
}

// NewLogisticRegression returns a candidate with the default configuration.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: 0.1,
		Epochs:       500,
		L2:           0.01,
	}
}

func (m *LogisticRegression) Name() string                   { return "logistic_regression" }
func (m *LogisticRegression) NeedsScaling() bool             { return true }
func (m *LogisticRegression) ImportanceKind() ImportanceKind { return ImportanceCoefficients }

// Importance is the absolute value of the fitted coefficient vector.
func (m *LogisticRegression) Importance() []float64 {
	if m.Weights == nil {
		return nil
	}
	imp := make([]float64, len(m.Weights))
	for i, w := range m.Weights {
		imp[i] = math.Abs(w)
	}
	return imp
}

// Fit runs batch gradient descent on the weighted cross-entropy loss.
func (m *LogisticRegression) Fit(X [][]float64, y []int, opts FitOptions) error {
	if len(X) == 0 {
		return ErrNotFitted
	}
	nFeatures := len(X[0])
	m.Weights = make([]float64, nFeatures)
	m.Bias = 0

	sampleWeight := func(label int) float64 {
		if opts.ClassWeights == nil {
			return 1
		}
		if w, ok := opts.ClassWeights[label]; ok {
			return w
		}
		return 1
	}

	n := float64(len(X))
	grad := make([]float64, nFeatures)

	for epoch := 0; epoch < m.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64

		for i, row := range X {
			p := sigmoid(m.score(row))
			err := (p - float64(y[i])) * sampleWeight(y[i])
			for j, v := range row {
				grad[j] += err * v
			}
			gradBias += err
		}

		for j := range m.Weights {
			m.Weights[j] -= m.LearningRate * (grad[j]/n + m.L2*m.Weights[j])
		}
		m.Bias -= m.LearningRate * gradBias / n
	}
	return nil
}

// PredictProba returns the positive-class probability for one scaled row.
func (m *LogisticRegression) PredictProba(row []float64) (float64, error) {
	if m.Weights == nil {
		return 0, ErrNotFitted
	}
	return sigmoid(m.score(row)), nil
}

func (m *LogisticRegression) score(row []float64) float64 {
	s := m.Bias
	for j, w := range m.Weights {
		if j < len(row) {
			s += w * row[j]
		}
	}
	return s
}

func sigmoid(z float64) float64 {
	// Clamp to keep exp well-conditioned at extreme scores.
	if z > 35 {
		return 1
	}
	if z < -35 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
