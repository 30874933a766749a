package model

import (
	"math"
	"math/rand"
)

// GradientBoosting fits shallow regression trees to the gradient of the
// logistic loss, shrunk by the learning rate. Consumes unscaled input.
type GradientBoosting struct {
	Trees     []*treeNode `json:"trees"`
	InitScore float64     `json:"init_score"`

	NumTrees       int     `json:"num_trees"`
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`

	FeatureImportance []float64 `json:"feature_importance"`
}

// NewGradientBoosting returns a candidate with the default configuration.
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{
		NumTrees:       100,
		LearningRate:   0.1,
		MaxDepth:       5,
		MinSamplesLeaf: 2,
	}
}

func (m *GradientBoosting) Name() string                   { return "gradient_boosting" }
func (m *GradientBoosting) NeedsScaling() bool             { return false }
func (m *GradientBoosting) ImportanceKind() ImportanceKind { return ImportanceNative }
func (m *GradientBoosting) Importance() []float64          { return m.FeatureImportance }

// Fit runs gradient boosting: start from the prior log-odds, then repeatedly
// fit a tree to the residual (label minus current probability) and add it with
// shrinkage.
func (m *GradientBoosting) Fit(X [][]float64, y []int, opts FitOptions) error {
	if len(X) == 0 {
		return ErrNotFitted
	}
	n := len(X)
	nFeatures := len(X[0])
	rng := rand.New(rand.NewSource(opts.Seed))

	var positives float64
	for _, label := range y {
		positives += float64(label)
	}
	m.InitScore = logOdds(positives / float64(n))

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = m.InitScore
	}

	weight := make([]float64, n)
	for i := range weight {
		weight[i] = 1
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	cfg := treeConfig{
		maxDepth:       m.MaxDepth,
		minSamplesLeaf: m.MinSamplesLeaf,
		rng:            rng,
	}

	residual := make([]float64, n)
	importance := make([]float64, nFeatures)
	m.Trees = make([]*treeNode, 0, m.NumTrees)

	for t := 0; t < m.NumTrees; t++ {
		for i := range residual {
			residual[i] = float64(y[i]) - sigmoid(scores[i])
		}
		tree := growTree(X, residual, weight, idx, 0, cfg, importance)
		m.Trees = append(m.Trees, tree)
		for i, row := range X {
			scores[i] += m.LearningRate * tree.predict(row)
		}
	}

	m.FeatureImportance = normalize(importance)
	return nil
}

// PredictProba accumulates tree outputs on the log-odds scale.
func (m *GradientBoosting) PredictProba(row []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, ErrNotFitted
	}
	score := m.InitScore
	for _, tree := range m.Trees {
		score += m.LearningRate * tree.predict(row)
	}
	return sigmoid(score), nil
}

func logOdds(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}
