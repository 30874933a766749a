package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0, cfg.OverallWeights.Sum(), 1e-9)
	assert.Equal(t, 0.4, cfg.Levels.Medium)
	assert.Equal(t, 0.7, cfg.Levels.High)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RiskConfig)
	}{
		{"weights off by more than tolerance", func(c *RiskConfig) { c.OverallWeights.Stroke = 0.30 }},
		{"zero dampening", func(c *RiskConfig) { c.Dampening.Arrhythmia = 0 }},
		{"dampening above one", func(c *RiskConfig) { c.Dampening.Stroke = 1.2 }},
		{"inverted level thresholds", func(c *RiskConfig) { c.Levels.Medium = 0.8 }},
		{"high level at one", func(c *RiskConfig) { c.Levels.High = 1.0 }},
		{"inverted priority thresholds", func(c *RiskConfig) { c.Priority.High = 0.01 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_WeightTolerance(t *testing.T) {
	cfg := Default()
	cfg.OverallWeights.HeartAttack = 0.4005
	cfg.OverallWeights.Stroke = 0.2500
	assert.NoError(t, cfg.Validate(), "sum within 0.001 of 1.0 passes")
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"levels:\n  medium: 0.3\n  high: 0.6\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Levels.Medium)
	assert.Equal(t, 0.6, cfg.Levels.High)
	// Untouched sections keep the defaults.
	assert.Equal(t, 0.8, cfg.Dampening.Stroke)
	assert.InDelta(t, 1.0, cfg.OverallWeights.Sum(), 1e-9)
}

func TestLoad_Failures(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("levels: [not, a, map]\n"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte(
		"dampening:\n  stroke: 0\n"), 0o644))
	_, err = Load(invalid)
	assert.Error(t, err, "overlay must still pass validation")
}
