package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/cardiorun/cardiorun/internal/config"
	"github.com/cardiorun/cardiorun/internal/features"
)

// ErrNumericInstability reports a NaN or infinite probability anywhere in the
// composition path. Callers surface it as a model-unavailable condition rather
// than returning a malformed result.
var ErrNumericInstability = errors.New("numeric instability in probability computation")

// Level is the discrete classification of a probability.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Score pairs a probability with its discrete level.
type Score struct {
	Probability float64 `json:"probability"`
	Level       Level   `json:"risk_level"`
}

// Composition is the full set of composed risks for one assessment: the
// primary model's heart-attack probability, three derived sub-risks, and the
// weighted overall score.
type Composition struct {
	HeartAttack  Score `json:"heart_attack"`
	Stroke       Score `json:"stroke"`
	HeartFailure Score `json:"heart_failure"`
	Arrhythmia   Score `json:"arrhythmia"`
	Overall      Score `json:"overall_cardiovascular"`
}

// Compositor derives the secondary risks from the primary model's output via
// fixed multiplicative heuristics. Pure and deterministic: identical inputs
// always produce identical compositions.
type Compositor struct {
	cfg config.RiskConfig
}

// NewCompositor builds a compositor over a validated configuration.
func NewCompositor(cfg config.RiskConfig) *Compositor {
	return &Compositor{cfg: cfg}
}

// Compose derives the sub-risks and overall score from the base heart-attack
// probability. Each derived risk is min(base * multiplier * dampening, 1.0).
func (c *Compositor) Compose(base float64, v features.FeatureVector) (Composition, error) {
	if math.IsNaN(base) || math.IsInf(base, 0) || base < 0 || base > 1 {
		return Composition{}, fmt.Errorf("base probability %v: %w", base, ErrNumericInstability)
	}

	stroke := derived(base, strokeMultiplier(v), c.cfg.Dampening.Stroke)
	heartFailure := derived(base, heartFailureMultiplier(v), c.cfg.Dampening.HeartFailure)
	arrhythmia := derived(base, arrhythmiaMultiplier(v), c.cfg.Dampening.Arrhythmia)

	w := c.cfg.OverallWeights
	overall := base*w.HeartAttack + stroke*w.Stroke + heartFailure*w.HeartFailure + arrhythmia*w.Arrhythmia

	comp := Composition{
		HeartAttack:  c.score(base),
		Stroke:       c.score(stroke),
		HeartFailure: c.score(heartFailure),
		Arrhythmia:   c.score(arrhythmia),
		Overall:      c.score(overall),
	}
	for _, s := range []Score{comp.HeartAttack, comp.Stroke, comp.HeartFailure, comp.Arrhythmia, comp.Overall} {
		if math.IsNaN(s.Probability) || math.IsInf(s.Probability, 0) {
			return Composition{}, fmt.Errorf("composed probability %v: %w", s.Probability, ErrNumericInstability)
		}
	}
	return comp, nil
}

// LevelFor classifies one probability with the configured thresholds.
func (c *Compositor) LevelFor(p float64) Level {
	switch {
	case p > c.cfg.Levels.High:
		return LevelHigh
	case p > c.cfg.Levels.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

func (c *Compositor) score(p float64) Score {
	return Score{Probability: p, Level: c.LevelFor(p)}
}

func derived(base, multiplier, dampening float64) float64 {
	return math.Min(base*multiplier*dampening, 1.0)
}

// strokeMultiplier compounds the stroke risk factors in fixed order: age,
// systolic blood pressure, diabetes, smoking.
func strokeMultiplier(v features.FeatureVector) float64 {
	m := 1.0
	if v.Age > 65 {
		m *= 1.5
	} else if v.Age > 55 {
		m *= 1.3
	}
	if v.SystolicBP > 160 {
		m *= 1.8
	} else if v.SystolicBP > 140 {
		m *= 1.4
	}
	if v.Diabetes != 0 {
		m *= 1.6
	}
	if v.Smoking != 0 {
		m *= 1.5
	}
	return m
}

// heartFailureMultiplier compounds age, BMI, prior heart problems and a
// sedentary lifestyle.
func heartFailureMultiplier(v features.FeatureVector) float64 {
	m := 1.0
	if v.Age > 70 {
		m *= 1.6
	} else if v.Age > 60 {
		m *= 1.3
	}
	if v.BMI > 35 {
		m *= 1.5
	} else if v.BMI > 30 {
		m *= 1.3
	}
	if v.PreviousHeartProblems != 0 {
		m *= 2.0
	}
	if v.SedentaryHours > 10 {
		m *= 1.3
	}
	return m
}

// arrhythmiaMultiplier compounds stress, alcohol, abnormal sleep and abnormal
// resting heart rate.
func arrhythmiaMultiplier(v features.FeatureVector) float64 {
	m := 1.0
	if v.StressLevel > 8 {
		m *= 1.4
	} else if v.StressLevel > 6 {
		m *= 1.2
	}
	if v.Alcohol != 0 {
		m *= 1.3
	}
	if v.SleepHours < 6 || v.SleepHours > 9 {
		m *= 1.2
	}
	if v.HeartRate > 100 || v.HeartRate < 50 {
		m *= 1.4
	}
	return m
}
