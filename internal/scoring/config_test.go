package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9)
}

func TestValidateRejectsBadWeights(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sum above one", func(c *Config) { c.Weights.IC = 0.50 }},
		{"sum below one", func(c *Config) { c.Weights.Consistency = 0.0 }},
		{"negative weight", func(c *Config) {
			c.Weights.IC = -0.10
			c.Weights.Stability = 0.75
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateRejectsUnorderedTiers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IC.Good = 0.09 // above excellent
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Grades.GradeB = 0.85
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	doc := `
weights:
  ic: 0.50
  stability: 0.20
  data_quality: 0.10
  distribution: 0.15
  consistency: 0.05
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.50, cfg.Weights.IC, 1e-9)
	// Sections absent from the file keep their defaults.
	assert.InDelta(t, 0.08, cfg.IC.Excellent, 1e-9)
	assert.InDelta(t, 0.80, cfg.Grades.GradeA, 1e-9)
}

func TestLoadConfigRejectsUnknownFieldsAndBadSums(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("weights:\n  bogus: 1.0\n"), 0o644))
	_, err := LoadConfig(unknown)
	assert.Error(t, err)

	badSum := filepath.Join(dir, "badsum.yaml")
	require.NoError(t, os.WriteFile(badSum, []byte("weights:\n  ic: 0.90\n"), 0o644))
	_, err = LoadConfig(badSum)
	assert.Error(t, err)
}
