package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiorun/cardiorun/internal/config"
	"github.com/cardiorun/cardiorun/internal/dataset"
	"github.com/cardiorun/cardiorun/internal/features"
	"github.com/cardiorun/cardiorun/internal/risk"
)

// syntheticCohort carries signal in cholesterol, blood pressure and age so all
// three candidates can learn it.
func syntheticCohort(n int) *dataset.Dataset {
	rng := rand.New(rand.NewSource(21))
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
			Age:           42 + int(shift*14) + rng.Intn(8),
			Sex:           sexes[i%2],
			Cholesterol:   195 + shift*70 + rng.NormFloat64()*12,
			SystolicBP:    118 + shift*28 + rng.NormFloat64()*6,
			DiastolicBP:   76 + shift*8 + rng.NormFloat64()*4,
			HeartRate:     72 + rng.NormFloat64()*6,
			Smoking:       label * (i % 2),
			Diet:          diets[i%3],
			BMI:           23 + shift*7 + rng.NormFloat64()*1.5,
			ExerciseHours: 4.5 - shift*2.5 + rng.Float64(),
			SleepHours:    7,
		})
		ds.Labels = append(ds.Labels, label)
	}
	return ds
}

func assessPatient() features.FeatureVector {
	return features.FeatureVector{
		Age: 58, Sex: "Male", Cholesterol: 280, SystolicBP: 160, DiastolicBP: 95,
		HeartRate: 90, Diabetes: 1, FamilyHistory: 1, Smoking: 1,
		Alcohol: 1, ExerciseHours: 1.5, Diet: "Unhealthy",
		MedicationUse: 1, StressLevel: 8, SedentaryHours: 10, Income: 75000,
		BMI: 32.0, Triglycerides: 220, ActivityDays: 2, SleepHours: 6,
	}
}

func TestPredict_FailsBeforeAnyPublish(t *testing.T) {
	e := New(config.Default())
	_, err := e.Predict(assessPatient())
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestTrainAndSelect_PublishesSnapshot(t *testing.T) {
	e := New(config.Default())
	result, err := e.TrainAndSelect(syntheticCohort(300))
	require.NoError(t, err)
	require.NotNil(t, result.Best())

	snap := e.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, result.BestName, snap.ModelName)
	assert.Equal(t, features.CanonicalColumns, snap.Pre.Columns)
}

func TestPredict_FullAssessment(t *testing.T) {
	e := New(config.Default())
	_, err := e.TrainAndSelect(syntheticCohort(300))
	require.NoError(t, err)

	a, err := e.Predict(assessPatient())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.False(t, a.Timestamp.IsZero())
	assert.Equal(t, e.Snapshot().ModelName, a.ModelUsed)
	assert.Contains(t, []int{0, 1}, a.Prediction)

	risks := a.Risks
	for name, p := range map[string]float64{
		"heart_attack":  risks.HeartAttack.Probability,
		"stroke":        risks.Stroke.Probability,
		"heart_failure": risks.HeartFailure.Probability,
		"arrhythmia":    risks.Arrhythmia.Probability,
		"overall":       risks.Overall.Probability,
	} {
		assert.False(t, math.IsNaN(p), name)
		assert.GreaterOrEqual(t, p, 0.0, name)
		assert.LessOrEqual(t, p, 1.0, name)
	}

	// Every stroke heuristic fires for this profile: age>55, systolic>140,
	// diabetic, smoker.
	base := risks.HeartAttack.Probability
	wantStroke := math.Min(base*1.3*1.4*1.6*1.5*0.8, 1.0)
	assert.InDelta(t, wantStroke, risks.Stroke.Probability, 1e-12)

	// A profile this loaded must land at least in the Medium band overall.
	assert.NotEqual(t, risk.LevelLow, risks.Overall.Level)

	// Smoker, BMI>25, <5h exercise, unhealthy diet: all four scenarios apply.
	for _, name := range []string{"quit_smoking", "weight_loss", "increase_exercise", "improve_diet"} {
		assert.Contains(t, a.Scenarios, name)
	}
	assert.Len(t, a.Recommendations, len(a.Scenarios))
	for i := 1; i < len(a.Recommendations); i++ {
		assert.GreaterOrEqual(t, a.Recommendations[i-1].ImpactScore, a.Recommendations[i].ImpactScore)
	}

	if e.Snapshot().Importance != nil {
		assert.NotEmpty(t, a.Analysis.TopFactors)
	}
	assert.Contains(t, a.Analysis.Categories.ModifiableHighRisk, "Smoking")
}

func TestPredict_RisksDeterministicPerSnapshot(t *testing.T) {
	e := New(config.Default())
	_, err := e.TrainAndSelect(syntheticCohort(300))
	require.NoError(t, err)

	a, err := e.Predict(assessPatient())
	require.NoError(t, err)
	b, err := e.Predict(assessPatient())
	require.NoError(t, err)

	assert.Equal(t, a.Risks, b.Risks)
	assert.Equal(t, a.Scenarios, b.Scenarios)
	assert.NotEqual(t, a.ID, b.ID, "assessment identity is per call")
}

func TestPredict_ToleratesSparseRecords(t *testing.T) {
	e := New(config.Default())
	_, err := e.TrainAndSelect(syntheticCohort(300))
	require.NoError(t, err)

	// Only two fields supplied; everything else defaults to zero and the sex
	// value was never seen in training.
	v := features.FromRecord(map[string]any{
		"age": 61,
		"sex": "Other",
	})
	a, err := e.Predict(v)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, a.Risks.Overall.Probability, 0.0)
	assert.LessOrEqual(t, a.Risks.Overall.Probability, 1.0)
}
