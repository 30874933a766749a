package train

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/cardiorun/cardiorun/internal/dataset"
	"github.com/cardiorun/cardiorun/internal/features"
	"github.com/cardiorun/cardiorun/internal/model"
)

// defaultSeed keeps splits, bootstraps and feature subsampling reproducible
// across runs.
const defaultSeed = 42

// Candidate is one trained, scored model.
type Candidate struct {
	Name       string
	Model      model.Classifier
	UseScaled  bool
	Metrics    Metrics
	Importance []float64 // nil when the model exposes none
}

// Result is the immutable outcome of one training run: every surviving
// candidate in insertion order, the selected best, and the fitted
// preprocessing state shared by all of them.
type Result struct {
	Candidates []Candidate
	BestName   string
	Scaler     *model.StandardScaler
	Encoders   map[string]*features.LabelEncoder
	Columns    []string
}

// Best returns the selected candidate.
func (r *Result) Best() *Candidate {
	for i := range r.Candidates {
		if r.Candidates[i].Name == r.BestName {
			return &r.Candidates[i]
		}
	}
	return nil
}

// Trainer fits the candidate set on a stratified 80/20 split and selects the
// best by held-out ROC-AUC.
type Trainer struct {
	Seed         int64
	TestFraction float64
	// candidates in insertion order; the order is the selection tie-break.
	candidates []func() model.Classifier
}

// New returns a trainer with the standard candidate set: a class-weighted
// regularized linear model, a bagged tree ensemble, and a boosted tree
// ensemble.
func New() *Trainer {
	return &Trainer{
		Seed:         defaultSeed,
		TestFraction: 0.2,
		candidates: []func() model.Classifier{
			func() model.Classifier { return model.NewLogisticRegression() },
			func() model.Classifier { return model.NewRandomForest() },
			func() model.Classifier { return model.NewGradientBoosting() },
		},
	}
}

// NewWithCandidates returns a trainer over a custom candidate list, in the
// given order. Used for selection tests and experiments.
func NewWithCandidates(builders ...func() model.Classifier) *Trainer {
	return &Trainer{
		Seed:         defaultSeed,
		TestFraction: 0.2,
		candidates:   builders,
	}
}

// Train runs the full selection pipeline. Individual candidate failures are
// logged and the candidate excluded; the run fails only when the dataset is
// unusable or no candidate survives.
func (t *Trainer) Train(ds *dataset.Dataset) (*Result, error) {
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("validate dataset: %w", err)
	}

	encoders := fitEncoders(ds)
	pre := features.NewPreprocessor(features.CanonicalColumns, encoders)

	trainSet, testSet := ds.StratifiedSplit(t.TestFraction, t.Seed)
	log.Info().Int("train", trainSet.Len()).Int("test", testSet.Len()).Msg("stratified split")

	trainX := transformAll(pre, trainSet.Records)
	testX := transformAll(pre, testSet.Records)

	// Scaler is fitted on the training split only.
	scaler := &model.StandardScaler{}
	scaler.Fit(trainX)
	trainXScaled := scaler.TransformAll(trainX)
	testXScaled := scaler.TransformAll(testX)

	opts := model.FitOptions{
		ClassWeights: dataset.ClassWeights(trainSet.Labels),
		Seed:         t.Seed,
	}

	result := &Result{
		Scaler:   scaler,
		Encoders: encoders,
		Columns:  features.CanonicalColumns,
	}
	bestAUC := math.Inf(-1)

	for _, build := range t.candidates {
		clf := build()
		name := clf.Name()

		X, Xtest := trainX, testX
		if clf.NeedsScaling() {
			X, Xtest = trainXScaled, testXScaled
		}

		probs, err := fitAndScore(clf, X, trainSet.Labels, Xtest, opts)
		if err != nil {
			log.Error().Err(err).Str("candidate", name).Msg("candidate training failed, excluding from selection")
			continue
		}

		m := Evaluate(probs, testSet.Labels)
		if math.IsNaN(m.ROCAUC) {
			log.Error().Str("candidate", name).Msg("candidate produced NaN score, excluding from selection")
			continue
		}

		cand := Candidate{
			Name:      name,
			Model:     clf,
			UseScaled: clf.NeedsScaling(),
			Metrics:   m,
		}
		if clf.ImportanceKind() != model.ImportanceNone {
			cand.Importance = clf.Importance()
		}
		result.Candidates = append(result.Candidates, cand)

		log.Info().
			Str("candidate", name).
			Float64("roc_auc", m.ROCAUC).
			Float64("accuracy", m.Accuracy).
			Msg("candidate scored")

		// Strict > keeps the first-trained candidate on ties.
		if m.ROCAUC > bestAUC {
			bestAUC = m.ROCAUC
			result.BestName = name
		}
	}

	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidate survived training: %w", dataset.ErrInsufficientData)
	}

	log.Info().Str("best", result.BestName).Float64("roc_auc", bestAUC).Msg("model selected")
	return result, nil
}

// fitAndScore trains one candidate and returns its held-out probabilities. A
// panic inside a candidate is contained here so one broken model cannot abort
// the whole run.
func fitAndScore(clf model.Classifier, X [][]float64, y []int, Xtest [][]float64, opts model.FitOptions) (probs []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("candidate panic: %v", r)
		}
	}()

	if err = clf.Fit(X, y, opts); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	probs = make([]float64, len(Xtest))
	for i, row := range Xtest {
		p, perr := clf.PredictProba(row)
		if perr != nil {
			return nil, fmt.Errorf("score row %d: %w", i, perr)
		}
		probs[i] = p
	}
	return probs, nil
}

func fitEncoders(ds *dataset.Dataset) map[string]*features.LabelEncoder {
	sex := make([]string, ds.Len())
	diet := make([]string, ds.Len())
	for i, rec := range ds.Records {
		sex[i] = rec.Sex
		diet[i] = rec.Diet
	}
	return map[string]*features.LabelEncoder{
		features.ColSex:  features.FitEncoder(features.ColSex, sex),
		features.ColDiet: features.FitEncoder(features.ColDiet, diet),
	}
}

func transformAll(pre *features.Preprocessor, recs []features.FeatureVector) [][]float64 {
	X := make([][]float64, len(recs))
	for i, rec := range recs {
		X[i] = pre.Transform(rec)
	}
	return X
}
