package model

import (
	"math"
	"math/rand"
)

// RandomForest is a bagged ensemble of depth-limited trees over bootstrap
// samples, with class weights folded into the sample weights. Tree ensembles
// are scale-invariant, so it consumes unscaled input.
type RandomForest struct {
	Trees []*treeNode `json:"trees"`

	NumTrees       int `json:"num_trees"`
	MaxDepth       int `json:"max_depth"`
	MinSamplesLeaf int `json:"min_samples_leaf"`

	FeatureImportance []float64 `json:"feature_importance"`
}

// NewRandomForest returns a candidate with the default configuration.
func NewRandomForest() *RandomForest {
	return &RandomForest{
		NumTrees:       100,
		MaxDepth:       10,
		MinSamplesLeaf: 2,
	}
}

func (m *RandomForest) Name() string                   { return "random_forest" }
func (m *RandomForest) NeedsScaling() bool             { return false }
func (m *RandomForest) ImportanceKind() ImportanceKind { return ImportanceNative }
func (m *RandomForest) Importance() []float64          { return m.FeatureImportance }

// Fit grows NumTrees trees on bootstrap samples with sqrt-feature subsampling.
func (m *RandomForest) Fit(X [][]float64, y []int, opts FitOptions) error {
	if len(X) == 0 {
		return ErrNotFitted
	}
	n := len(X)
	nFeatures := len(X[0])
	rng := rand.New(rand.NewSource(opts.Seed))

	target := make([]float64, n)
	weight := make([]float64, n)
	for i, label := range y {
		target[i] = float64(label)
		weight[i] = 1
		if opts.ClassWeights != nil {
			if w, ok := opts.ClassWeights[label]; ok {
				weight[i] = w
			}
		}
	}

	cfg := treeConfig{
		maxDepth:       m.MaxDepth,
		minSamplesLeaf: m.MinSamplesLeaf,
		maxFeatures:    int(math.Ceil(math.Sqrt(float64(nFeatures)))),
		rng:            rng,
	}

	importance := make([]float64, nFeatures)
	m.Trees = make([]*treeNode, 0, m.NumTrees)

	for t := 0; t < m.NumTrees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		m.Trees = append(m.Trees, growTree(X, target, weight, idx, 0, cfg, importance))
	}

	m.FeatureImportance = normalize(importance)
	return nil
}

// PredictProba averages the leaf probabilities across trees.
func (m *RandomForest) PredictProba(row []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, ErrNotFitted
	}
	var sum float64
	for _, tree := range m.Trees {
		sum += tree.predict(row)
	}
	p := sum / float64(len(m.Trees))
	return clampProb(p), nil
}

func normalize(v []float64) []float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	if total == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / total
	}
	return out
}

func clampProb(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
