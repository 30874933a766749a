package dataset

import (
	"errors"
	"math/rand"

	"github.com/cardiorun/cardiorun/internal/features"
)

// ErrInsufficientData marks a dataset the trainer cannot work with: empty,
// single-class, or missing the target column. Fatal for the training run.
var ErrInsufficientData = errors.New("insufficient data")

// Dataset is the labeled training table.
type Dataset struct {
	Records []features.FeatureVector
	Labels  []int
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Records) }

// Validate rejects datasets the trainer cannot serve from.
func (d *Dataset) Validate() error {
	if d.Len() == 0 {
		return ErrInsufficientData
	}
	first := d.Labels[0]
	for _, l := range d.Labels[1:] {
		if l != first {
			return nil
		}
	}
	return ErrInsufficientData
}

// Subset returns the rows at the given indices.
func (d *Dataset) Subset(idx []int) *Dataset {
	sub := &Dataset{
		Records: make([]features.FeatureVector, len(idx)),
		Labels:  make([]int, len(idx)),
	}
	for i, j := range idx {
		sub.Records[i] = d.Records[j]
		sub.Labels[i] = d.Labels[j]
	}
	return sub
}

// StratifiedSplit partitions the dataset into train/test keeping the label
// proportions of the whole set in both parts. testFraction is the held-out
// share (0.2 for the standard 80/20 split); seed makes the shuffle
// reproducible.
func (d *Dataset) StratifiedSplit(testFraction float64, seed int64) (train, test *Dataset) {
	rng := rand.New(rand.NewSource(seed))

	byLabel := make(map[int][]int)
	for i, l := range d.Labels {
		byLabel[l] = append(byLabel[l], i)
	}

	var trainIdx, testIdx []int
	// Iterate labels deterministically (binary target: 0 then 1).
	for label := 0; label <= maxLabel(d.Labels); label++ {
		idx, ok := byLabel[label]
		if !ok {
			continue
		}
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		cut := int(float64(len(idx)) * testFraction)
		testIdx = append(testIdx, idx[:cut]...)
		trainIdx = append(trainIdx, idx[cut:]...)
	}

	return d.Subset(trainIdx), d.Subset(testIdx)
}

// ClassWeights computes balanced class weights n/(k*count) from the label
// frequencies, the usual correction for an imbalanced target.
func ClassWeights(labels []int) map[int]float64 {
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	weights := make(map[int]float64, len(counts))
	n := float64(len(labels))
	k := float64(len(counts))
	for label, c := range counts {
		weights[label] = n / (k * float64(c))
	}
	return weights
}

func maxLabel(labels []int) int {
	m := 0
	for _, l := range labels {
		if l > m {
			m = l
		}
	}
	return m
}
