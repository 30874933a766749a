package simulate

import (
	"fmt"
	"math"
	"sort"

	"github.com/cardiorun/cardiorun/internal/config"
	"github.com/cardiorun/cardiorun/internal/features"
	"github.com/cardiorun/cardiorun/internal/risk"
)

// PredictFunc runs the full preprocess -> model -> compose pipeline for one
// feature vector. Injected so the simulator stays decoupled from the serving
// engine that wraps it.
type PredictFunc func(features.FeatureVector) (risk.Composition, error)

// Scenario is the estimated effect of one lifestyle intervention. Reductions
// are clamped non-negative: a counterfactual can only ever be reported as an
// improvement or a no-op.
type Scenario struct {
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	RiskReduction    float64            `json:"risk_reduction"`
	NewRiskLevel     risk.Level         `json:"new_risk_level"`
	SubRiskReduction map[string]float64 `json:"cardiovascular_improvement"`
}

// Recommendation ranks one scenario by achievable impact.
type Recommendation struct {
	Action      string  `json:"action"`
	ImpactScore float64 `json:"impact_score"`
	Priority    string  `json:"priority"`
}

// rule is one candidate intervention: a precondition and a single-field
// modification of the input.
type rule struct {
	name        string
	description string
	applies     func(features.FeatureVector) bool
	modify      func(features.FeatureVector) features.FeatureVector
}

// rules are the fixed intervention set. Each modifies exactly one field.
var rules = []rule{
	{
		name:        "quit_smoking",
		description: "Quit smoking",
		applies:     func(v features.FeatureVector) bool { return v.Smoking != 0 },
		modify:      func(v features.FeatureVector) features.FeatureVector { return v.WithSmoking(0) },
	},
	{
		name:        "weight_loss",
		description: "Lose 10% body weight",
		applies:     func(v features.FeatureVector) bool { return v.BMI > 25 },
		modify: func(v features.FeatureVector) features.FeatureVector {
			return v.WithBMI(math.Max(25, v.BMI*0.9))
		},
	},
	{
		name:        "increase_exercise",
		description: "Add 2.5 hours of exercise per week",
		applies:     func(v features.FeatureVector) bool { return v.ExerciseHours < 5 },
		modify: func(v features.FeatureVector) features.FeatureVector {
			return v.WithExerciseHours(math.Min(5, v.ExerciseHours+2.5))
		},
	},
	{
		name:        "improve_diet",
		description: "Switch to healthy diet",
		applies:     func(v features.FeatureVector) bool { return v.Diet == "Unhealthy" },
		modify:      func(v features.FeatureVector) features.FeatureVector { return v.WithDiet("Healthy") },
	},
}

// Simulator estimates risk reduction under hypothetical lifestyle changes by
// re-running full inference on modified copies of the input.
type Simulator struct {
	predict  PredictFunc
	priority config.PriorityThresholds
}

// New wires the simulator to an inference pipeline and priority thresholds.
func New(predict PredictFunc, priority config.PriorityThresholds) *Simulator {
	return &Simulator{predict: predict, priority: priority}
}

// Run evaluates every applicable intervention against the baseline
// composition. Scenarios whose precondition does not hold are omitted
// entirely, not reported with a zero reduction.
func (s *Simulator) Run(v features.FeatureVector, baseline risk.Composition) (map[string]Scenario, error) {
	scenarios := make(map[string]Scenario)
	for _, r := range rules {
		if !r.applies(v) {
			continue
		}
		modified, err := s.predict(r.modify(v))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", r.name, err)
		}
		scenarios[r.name] = Scenario{
			Name:          r.name,
			Description:   r.description,
			RiskReduction: reduction(baseline.Overall, modified.Overall),
			NewRiskLevel:  modified.Overall.Level,
			SubRiskReduction: map[string]float64{
				"heart_attack":           reduction(baseline.HeartAttack, modified.HeartAttack),
				"stroke":                 reduction(baseline.Stroke, modified.Stroke),
				"heart_failure":          reduction(baseline.HeartFailure, modified.HeartFailure),
				"arrhythmia":             reduction(baseline.Arrhythmia, modified.Arrhythmia),
				"overall_cardiovascular": reduction(baseline.Overall, modified.Overall),
			},
		}
	}
	return scenarios, nil
}

// Recommendations ranks scenarios by impact, largest reduction first.
func (s *Simulator) Recommendations(scenarios map[string]Scenario) []Recommendation {
	recs := make([]Recommendation, 0, len(scenarios))
	for _, sc := range scenarios {
		recs = append(recs, Recommendation{
			Action:      sc.Description,
			ImpactScore: sc.RiskReduction,
			Priority:    s.priorityFor(sc.RiskReduction),
		})
	}
	sort.SliceStable(recs, func(a, b int) bool {
		if recs[a].ImpactScore != recs[b].ImpactScore {
			return recs[a].ImpactScore > recs[b].ImpactScore
		}
		return recs[a].Action < recs[b].Action
	})
	return recs
}

func (s *Simulator) priorityFor(impact float64) string {
	switch {
	case impact > s.priority.High:
		return "High"
	case impact > s.priority.Medium:
		return "Medium"
	default:
		return "Low"
	}
}

func reduction(baseline, modified risk.Score) float64 {
	return math.Max(0, baseline.Probability-modified.Probability)
}
