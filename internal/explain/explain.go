package explain

import (
	"math"
	"sort"

	"github.com/cardiorun/cardiorun/internal/features"
)

// TopN is the canonical width of the importance ranking.
const TopN = 10

// Factor is one entry of the feature-importance ranking.
type Factor struct {
	Name       string  `json:"factor"`
	Importance float64 `json:"importance"`
}

// Categories buckets the patient's risk factors by whether they can be acted
// on. The rules are independent and non-exclusive; a record can land in any
// number of buckets.
type Categories struct {
	NonModifiable        []string `json:"non_modifiable"`
	ModifiableHighRisk   []string `json:"modifiable_high_risk"`
	ModifiableMediumRisk []string `json:"modifiable_medium_risk"`
}

// Analysis is the explanation attached to one assessment.
type Analysis struct {
	TopFactors []Factor   `json:"top_risk_factors"`
	Categories Categories `json:"risk_categories"`
}

// Build ranks the model's importance vector and categorizes the patient's risk
// factors. A model with no importance vector yields an empty ranking, never a
// synthesized one.
func Build(v features.FeatureVector, columns []string, importance []float64) Analysis {
	return Analysis{
		TopFactors: topFactors(columns, importance),
		Categories: categorize(v),
	}
}

func topFactors(columns []string, importance []float64) []Factor {
	n := len(importance)
	if n > len(columns) {
		n = len(columns)
	}
	factors := make([]Factor, 0, n)
	for i := 0; i < n; i++ {
		factors = append(factors, Factor{Name: columns[i], Importance: importance[i]})
	}
	sort.SliceStable(factors, func(a, b int) bool {
		return math.Abs(factors[a].Importance) > math.Abs(factors[b].Importance)
	})
	if len(factors) > TopN {
		factors = factors[:TopN]
	}
	return factors
}

func categorize(v features.FeatureVector) Categories {
	var c Categories
	if v.Age > 65 {
		c.NonModifiable = append(c.NonModifiable, "Advanced age (>65)")
	}
	if v.Smoking != 0 {
		c.ModifiableHighRisk = append(c.ModifiableHighRisk, "Smoking")
	}
	if v.BMI > 30 {
		c.ModifiableHighRisk = append(c.ModifiableHighRisk, "Obesity")
	} else if v.BMI > 25 {
		c.ModifiableMediumRisk = append(c.ModifiableMediumRisk, "Overweight")
	}
	if v.SystolicBP > 140 {
		c.ModifiableHighRisk = append(c.ModifiableHighRisk, "High blood pressure")
	}
	if v.Cholesterol > 240 {
		c.ModifiableHighRisk = append(c.ModifiableHighRisk, "High cholesterol")
	}
	if v.ExerciseHours < 2.5 {
		c.ModifiableMediumRisk = append(c.ModifiableMediumRisk, "Insufficient exercise")
	}
	return c
}
