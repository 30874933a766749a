package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// RiskConfig holds the tunable constants of the risk compositor. The defaults
// are design heuristics, not values derived from data, which is exactly why
// they live in configuration: tuning them must not require a rebuild.
type RiskConfig struct {
	OverallWeights OverallWeights     `yaml:"overall_weights"`
	Dampening      Dampening          `yaml:"dampening"`
	Levels         LevelThresholds    `yaml:"levels"`
	Priority       PriorityThresholds `yaml:"priority"`
}

// OverallWeights blends the four sub-risks into the overall cardiovascular
// probability. Must sum to 1.0.
type OverallWeights struct {
	HeartAttack  float64 `yaml:"heart_attack"`
	Stroke       float64 `yaml:"stroke"`
	HeartFailure float64 `yaml:"heart_failure"`
	Arrhythmia   float64 `yaml:"arrhythmia"`
}

// Sum returns the weight total.
func (w OverallWeights) Sum() float64 {
	return w.HeartAttack + w.Stroke + w.HeartFailure + w.Arrhythmia
}

// Dampening scales each derived risk below the primary model's calibration
// headroom; derived risks are heuristic, not independently modeled.
type Dampening struct {
	Stroke       float64 `yaml:"stroke"`
	HeartFailure float64 `yaml:"heart_failure"`
	Arrhythmia   float64 `yaml:"arrhythmia"`
}

// LevelThresholds maps probabilities to discrete Low/Medium/High levels. The
// 0.4/0.7 pair is the single canonical pair for every consumer.
type LevelThresholds struct {
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

// PriorityThresholds labels counterfactual recommendations by achievable risk
// reduction.
type PriorityThresholds struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
}

// Default returns the built-in constants.
func Default() RiskConfig {
	return RiskConfig{
		OverallWeights: OverallWeights{
			HeartAttack:  0.40,
			Stroke:       0.25,
			HeartFailure: 0.20,
			Arrhythmia:   0.15,
		},
		Dampening: Dampening{
			Stroke:       0.8,
			HeartFailure: 0.7,
			Arrhythmia:   0.6,
		},
		Levels: LevelThresholds{
			Medium: 0.4,
			High:   0.7,
		},
		Priority: PriorityThresholds{
			High:   0.1,
			Medium: 0.05,
		},
	}
}

// Load reads a YAML override file on top of the defaults and validates the
// result.
func Load(path string) (RiskConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the compositor cannot honor.
func (c RiskConfig) Validate() error {
	if sum := c.OverallWeights.Sum(); math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("overall weights sum to %.3f, expected 1.000", sum)
	}
	for name, d := range map[string]float64{
		"stroke":        c.Dampening.Stroke,
		"heart_failure": c.Dampening.HeartFailure,
		"arrhythmia":    c.Dampening.Arrhythmia,
	} {
		if d <= 0 || d > 1 {
			return fmt.Errorf("dampening %s = %.3f, expected (0, 1]", name, d)
		}
	}
	if c.Levels.Medium <= 0 || c.Levels.High <= c.Levels.Medium || c.Levels.High >= 1 {
		return fmt.Errorf("level thresholds medium=%.2f high=%.2f must satisfy 0 < medium < high < 1",
			c.Levels.Medium, c.Levels.High)
	}
	if c.Priority.Medium <= 0 || c.Priority.High <= c.Priority.Medium {
		return fmt.Errorf("priority thresholds medium=%.3f high=%.3f must satisfy 0 < medium < high",
			c.Priority.Medium, c.Priority.High)
	}
	return nil
}
