package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiorun/cardiorun/internal/config"
	"github.com/cardiorun/cardiorun/internal/features"
	"github.com/cardiorun/cardiorun/internal/risk"
)

// linearPredict is a deterministic stand-in for the full pipeline: risk grows
// with smoking, BMI and inactivity, so every intervention helps.
func linearPredict(v features.FeatureVector) (risk.Composition, error) {
	p := 0.2
	if v.Smoking != 0 {
		p += 0.2
	}
	if v.BMI > 25 {
		p += 0.01 * (v.BMI - 25)
	}
	if v.ExerciseHours < 5 {
		p += 0.02 * (5 - v.ExerciseHours)
	}
	if v.Diet == "Unhealthy" {
		p += 0.05
	}
	c := risk.NewCompositor(config.Default())
	return c.Compose(p, v)
}

// adversePredict reports a higher risk for every modification, exercising the
// non-negative clamp.
func adversePredict(baseline float64) PredictFunc {
	first := true
	return func(v features.FeatureVector) (risk.Composition, error) {
		c := risk.NewCompositor(config.Default())
		p := baseline
		if !first {
			p = baseline + 0.3
		}
		first = false
		return c.Compose(p, v)
	}
}

func highRiskPatient() features.FeatureVector {
	return features.FeatureVector{
		Age: 55, Sex: "Male", Smoking: 1, BMI: 32, ExerciseHours: 1.5,
		Diet: "Unhealthy", SystolicBP: 160, Diabetes: 1, SleepHours: 6,
	}
}

func TestRun_AllApplicableScenariosPresent(t *testing.T) {
	sim := New(linearPredict, config.Default().Priority)
	baseline, err := linearPredict(highRiskPatient())
	require.NoError(t, err)

	scenarios, err := sim.Run(highRiskPatient(), baseline)
	require.NoError(t, err)

	for _, name := range []string{"quit_smoking", "weight_loss", "increase_exercise", "improve_diet"} {
		assert.Contains(t, scenarios, name)
	}
	for name, sc := range scenarios {
		assert.GreaterOrEqual(t, sc.RiskReduction, 0.0, name)
		for sub, red := range sc.SubRiskReduction {
			assert.GreaterOrEqual(t, red, 0.0, "%s/%s", name, sub)
		}
	}
	assert.Greater(t, scenarios["quit_smoking"].RiskReduction, 0.0)
}

func TestRun_InapplicableScenariosOmitted(t *testing.T) {
	sim := New(linearPredict, config.Default().Priority)

	v := features.FeatureVector{
		Age: 30, Smoking: 0, BMI: 23, ExerciseHours: 6, Diet: "Healthy", SleepHours: 8,
	}
	baseline, err := linearPredict(v)
	require.NoError(t, err)

	scenarios, err := sim.Run(v, baseline)
	require.NoError(t, err)
	assert.Empty(t, scenarios, "no rule applies to a clean record")

	// Boundary: BMI exactly 25 must not trigger weight loss.
	v.BMI = 25
	v.Smoking = 0
	baseline, err = linearPredict(v)
	require.NoError(t, err)
	scenarios, err = sim.Run(v, baseline)
	require.NoError(t, err)
	assert.NotContains(t, scenarios, "weight_loss")
	assert.NotContains(t, scenarios, "quit_smoking")
}

func TestRun_ReductionClampedNonNegative(t *testing.T) {
	predict := adversePredict(0.4)
	baseline, err := predict(highRiskPatient())
	require.NoError(t, err)

	sim := New(predict, config.Default().Priority)
	scenarios, err := sim.Run(highRiskPatient(), baseline)
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for name, sc := range scenarios {
		assert.Equal(t, 0.0, sc.RiskReduction, "%s: adverse delta must clamp to zero", name)
	}
}

func TestRun_ModifiesExactlyOneField(t *testing.T) {
	var seen []features.FeatureVector
	capture := func(v features.FeatureVector) (risk.Composition, error) {
		seen = append(seen, v)
		return linearPredict(v)
	}

	orig := highRiskPatient()
	baseline, err := linearPredict(orig)
	require.NoError(t, err)
	_, err = New(capture, config.Default().Priority).Run(orig, baseline)
	require.NoError(t, err)

	require.Len(t, seen, 4)
	for _, v := range seen {
		diffs := 0
		if v.Smoking != orig.Smoking {
			diffs++
		}
		if v.BMI != orig.BMI {
			diffs++
		}
		if v.ExerciseHours != orig.ExerciseHours {
			diffs++
		}
		if v.Diet != orig.Diet {
			diffs++
		}
		assert.Equal(t, 1, diffs, "each scenario modifies exactly one field")
	}
}

func TestWeightLossTargetsFloor(t *testing.T) {
	var got []features.FeatureVector
	capture := func(v features.FeatureVector) (risk.Composition, error) {
		got = append(got, v)
		return linearPredict(v)
	}

	// BMI 32 -> 28.8; BMI 26 -> floor 25.
	for bmi, want := range map[float64]float64{32: 28.8, 26: 25} {
		got = nil
		v := features.FeatureVector{BMI: bmi, ExerciseHours: 6, SleepHours: 8}
		baseline, err := linearPredict(v)
		require.NoError(t, err)
		_, err = New(capture, config.Default().Priority).Run(v, baseline)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, want, got[0].BMI, 1e-9)
	}
}

func TestRecommendations_RankedAndLabeled(t *testing.T) {
	sim := New(linearPredict, config.Default().Priority)
	scenarios := map[string]Scenario{
		"a": {Description: "big win", RiskReduction: 0.15},
		"b": {Description: "modest win", RiskReduction: 0.07},
		"c": {Description: "marginal", RiskReduction: 0.01},
	}

	recs := sim.Recommendations(scenarios)
	require.Len(t, recs, 3)
	assert.Equal(t, "big win", recs[0].Action)
	assert.Equal(t, "High", recs[0].Priority)
	assert.Equal(t, "Medium", recs[1].Priority)
	assert.Equal(t, "Low", recs[2].Priority)
	assert.True(t, recs[0].ImpactScore >= recs[1].ImpactScore && recs[1].ImpactScore >= recs[2].ImpactScore)
}
