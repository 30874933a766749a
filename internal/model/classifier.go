package model

import "errors"

// ImportanceKind declares how a candidate exposes feature importance. It is
// resolved once when the candidate is constructed, so callers never probe at
// runtime.
type ImportanceKind int

const (
	// ImportanceNone means the model exposes no importance vector. Explicitly
	// absent, never synthesized.
	ImportanceNone ImportanceKind = iota
	// ImportanceCoefficients means importance is |fitted coefficients|.
	ImportanceCoefficients
	// ImportanceNative means the model carries its own importance vector
	// (tree ensembles).
	ImportanceNative
)

// ErrNotFitted is returned when prediction is attempted before Fit.
var ErrNotFitted = errors.New("model not fitted")

// FitOptions carries the shared training knobs every candidate understands.
type FitOptions struct {
	// ClassWeights maps label -> weight, computed from training-split label
	// frequencies to correct class imbalance.
	ClassWeights map[int]float64
	// Seed makes bootstrap sampling and feature subsampling reproducible.
	Seed int64
}

// Classifier is one model candidate. Fit is called exactly once per training
// run; PredictProba must be safe for concurrent use afterwards.
type Classifier interface {
	Name() string
	Fit(X [][]float64, y []int, opts FitOptions) error
	// PredictProba returns the positive-class probability for one row.
	PredictProba(row []float64) (float64, error)
	// NeedsScaling reports whether the candidate consumes scaled input. The
	// trainer records this choice and the identical transform is applied at
	// inference.
	NeedsScaling() bool
	ImportanceKind() ImportanceKind
	// Importance returns the per-feature importance vector, nil when
	// ImportanceKind is ImportanceNone.
	Importance() []float64
}
