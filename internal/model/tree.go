package model

import (
	"math/rand"
	"sort"
)

// treeNode is one node of a fitted regression tree. Exported fields so trees
// survive the JSON artifact round-trip.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// treeConfig bounds the growth of one tree.
type treeConfig struct {
	maxDepth       int
	minSamplesLeaf int
	// maxFeatures limits the features considered per split (0 means all);
	// bagged ensembles use sqrt(n_features) to decorrelate trees.
	maxFeatures int
	rng         *rand.Rand
}

// growTree fits a weighted regression tree by minimizing weighted squared
// error. For 0/1 targets with sample weights this is equivalent to an
// impurity-based classification split, and the leaf value is the weighted
// positive-class fraction. importance accumulates the impurity decrease per
// split feature.
func growTree(X [][]float64, y, w []float64, idx []int, depth int, cfg treeConfig, importance []float64) *treeNode {
	mean, sse, wsum := weightedStats(y, w, idx)

	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minSamplesLeaf || sse <= 1e-12 {
		return &treeNode{Leaf: true, Value: mean}
	}

	feat, thr, gain, leftIdx, rightIdx := bestSplit(X, y, w, idx, sse, cfg)
	if gain <= 0 || len(leftIdx) < cfg.minSamplesLeaf || len(rightIdx) < cfg.minSamplesLeaf {
		return &treeNode{Leaf: true, Value: mean}
	}

	if importance != nil {
		importance[feat] += gain * wsum
	}

	return &treeNode{
		Feature:   feat,
		Threshold: thr,
		Value:     mean,
		Left:      growTree(X, y, w, leftIdx, depth+1, cfg, importance),
		Right:     growTree(X, y, w, rightIdx, depth+1, cfg, importance),
	}
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// weightedStats returns the weighted mean, weighted SSE around it, and weight
// sum over the index subset.
func weightedStats(y, w []float64, idx []int) (mean, sse, wsum float64) {
	var sum float64
	for _, i := range idx {
		sum += w[i] * y[i]
		wsum += w[i]
	}
	if wsum == 0 {
		return 0, 0, 0
	}
	mean = sum / wsum
	for _, i := range idx {
		d := y[i] - mean
		sse += w[i] * d * d
	}
	return mean, sse, wsum
}

// bestSplit searches (a subsample of) features for the threshold with the
// largest weighted SSE reduction.
func bestSplit(X [][]float64, y, w []float64, idx []int, parentSSE float64, cfg treeConfig) (feat int, thr, gain float64, left, right []int) {
	nFeatures := len(X[idx[0]])
	candidates := featureCandidates(nFeatures, cfg)

	feat = -1
	sorted := make([]int, len(idx))

	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		var lw, lsum, lsq float64
		var rw, rsum, rsq float64
		for _, i := range sorted {
			rw += w[i]
			rsum += w[i] * y[i]
			rsq += w[i] * y[i] * y[i]
		}

		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			lw += w[i]
			lsum += w[i] * y[i]
			lsq += w[i] * y[i] * y[i]
			rw -= w[i]
			rsum -= w[i] * y[i]
			rsq -= w[i] * y[i] * y[i]

			cur, next := X[i][f], X[sorted[k+1]][f]
			if cur == next {
				continue
			}
			if k+1 < cfg.minSamplesLeaf || len(sorted)-k-1 < cfg.minSamplesLeaf {
				continue
			}

			childSSE := (lsq - lsum*lsum/lw) + (rsq - rsum*rsum/rw)
			if g := parentSSE - childSSE; g > gain {
				gain = g
				feat = f
				thr = (cur + next) / 2
			}
		}
	}

	if feat < 0 {
		return -1, 0, 0, nil, nil
	}
	for _, i := range idx {
		if X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return feat, thr, gain, left, right
}

func featureCandidates(nFeatures int, cfg treeConfig) []int {
	if cfg.maxFeatures <= 0 || cfg.maxFeatures >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := cfg.rng.Perm(nFeatures)
	return perm[:cfg.maxFeatures]
}
