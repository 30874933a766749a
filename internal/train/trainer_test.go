package train

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiorun/cardiorun/internal/dataset"
	"github.com/cardiorun/cardiorun/internal/features"
	"github.com/cardiorun/cardiorun/internal/model"
)

// trainingSet builds a labeled dataset where cholesterol, systolic pressure
// and age carry the signal.
func trainingSet(n int) *dataset.Dataset {
	rng := rand.New(rand.NewSource(9))
	ds := &dataset.Dataset{}
	sexes := []string{"Male", "Female"}
	diets := []string{"Healthy", "Average", "Unhealthy"}

	for i := 0; i < n; i++ {
		label := 0
		if i%3 == 0 {
			label = 1
		}
		shift := float64(label)
		ds.Records = append(ds.Records, features.FeatureVector{
			Age:           40 + int(shift*15) + rng.Intn(10),
			Sex:           sexes[i%2],
			Cholesterol:   200 + shift*60 + rng.NormFloat64()*15,
			SystolicBP:    120 + shift*30 + rng.NormFloat64()*8,
			DiastolicBP:   75 + shift*10 + rng.NormFloat64()*5,
			HeartRate:     70 + rng.NormFloat64()*8,
			Smoking:       label * (i % 2),
			Diet:          diets[i%3],
			BMI:           24 + shift*6 + rng.NormFloat64()*2,
			ExerciseHours: 4 - shift*2 + rng.Float64(),
			SleepHours:    7,
		})
		ds.Labels = append(ds.Labels, label)
	}
	return ds
}

func TestTrain_ScoresAndSelectsAllCandidates(t *testing.T) {
	result, err := New().Train(trainingSet(300))
	require.NoError(t, err)

	require.Len(t, result.Candidates, 3)
	assert.Equal(t, "logistic_regression", result.Candidates[0].Name)
	assert.Equal(t, "random_forest", result.Candidates[1].Name)
	assert.Equal(t, "gradient_boosting", result.Candidates[2].Name)

	var bestAUC float64
	for _, c := range result.Candidates {
		assert.GreaterOrEqual(t, c.Metrics.ROCAUC, 0.0)
		assert.LessOrEqual(t, c.Metrics.ROCAUC, 1.0)
		assert.Greater(t, c.Metrics.ROCAUC, 0.6, "%s should beat chance on separable data", c.Name)
		if c.Metrics.ROCAUC > bestAUC {
			bestAUC = c.Metrics.ROCAUC
		}
		assert.NotNil(t, c.Importance, "%s declares an importance vector", c.Name)
	}

	best := result.Best()
	require.NotNil(t, best)
	assert.Equal(t, bestAUC, best.Metrics.ROCAUC, "best must carry the highest ROC-AUC")
	assert.Equal(t, features.CanonicalColumns, result.Columns)
	assert.Contains(t, result.Encoders, features.ColSex)
	assert.Contains(t, result.Encoders, features.ColDiet)
}

func TestTrain_RejectsUnusableDatasets(t *testing.T) {
	_, err := New().Train(&dataset.Dataset{})
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)

	single := trainingSet(60)
	for i := range single.Labels {
		single.Labels[i] = 1
	}
	_, err = New().Train(single)
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)
}

// stubModel is a fixed-scoring candidate for selection tests.
type stubModel struct {
	name   string
	score  func(row []float64) float64
	fitErr error
	fitted bool
}

func (s *stubModel) Name() string { return s.name }
func (s *stubModel) Fit(_ [][]float64, _ []int, _ model.FitOptions) error {
	if s.fitErr != nil {
		return s.fitErr
	}
	s.fitted = true
	return nil
}
func (s *stubModel) PredictProba(row []float64) (float64, error) {
	if !s.fitted {
		return 0, model.ErrNotFitted
	}
	return s.score(row), nil
}
func (s *stubModel) NeedsScaling() bool                   { return false }
func (s *stubModel) ImportanceKind() model.ImportanceKind { return model.ImportanceNone }
func (s *stubModel) Importance() []float64                { return nil }

func TestTrain_TieBreakPrefersFirstCandidate(t *testing.T) {
	// Both stubs emit a constant score: identical ROC-AUC of 0.5.
	constant := func(_ []float64) float64 { return 0.5 }
	trainer := NewWithCandidates(
		func() model.Classifier { return &stubModel{name: "alpha", score: constant} },
		func() model.Classifier { return &stubModel{name: "beta", score: constant} },
	)

	result, err := trainer.Train(trainingSet(200))
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, result.Candidates[0].Metrics.ROCAUC, result.Candidates[1].Metrics.ROCAUC)
	assert.Equal(t, "alpha", result.BestName, "first-trained candidate wins ties")
}

func TestTrain_FailingCandidateIsExcluded(t *testing.T) {
	trainer := NewWithCandidates(
		func() model.Classifier { return &stubModel{name: "broken", fitErr: errors.New("boom")} },
		func() model.Classifier {
			return &stubModel{name: "ok", score: func(row []float64) float64 {
				return row[2] / 400 // cholesterol column carries signal
			}}
		},
	)

	result, err := trainer.Train(trainingSet(200))
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "ok", result.BestName)

	noCandidates := NewWithCandidates(
		func() model.Classifier { return &stubModel{name: "broken", fitErr: errors.New("boom")} },
	)
	_, err = noCandidates.Train(trainingSet(200))
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)

	panicky := NewWithCandidates(
		func() model.Classifier {
			return &stubModel{name: "panicky", score: func(_ []float64) float64 { panic("bad math") }}
		},
		func() model.Classifier { return &stubModel{name: "ok", score: func(_ []float64) float64 { return 0.5 }} },
	)
	result, err = panicky.Train(trainingSet(200))
	require.NoError(t, err)
	assert.Equal(t, "ok", result.BestName, "a panicking candidate must not abort the run")
}
