package scoring

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// weightTolerance is how far the five weights may drift from summing
// to exactly 1.0 before the configuration is rejected.
const weightTolerance = 0.001

// Weights distribute the composite score across the five sub-scores.
// Each sub-score is bounded above by its weight, so the weights must
// sum to 1.0 for the total to stay in [0, 1].
type Weights struct {
	IC           float64 `yaml:"ic"`
	Stability    float64 `yaml:"stability"`
	DataQuality  float64 `yaml:"data_quality"`
	Distribution float64 `yaml:"distribution"`
	Consistency  float64 `yaml:"consistency"`
}

// Sum returns the total of the five weights.
func (w Weights) Sum() float64 {
	return w.IC + w.Stability + w.DataQuality + w.Distribution + w.Consistency
}

// ICThresholds are the named tiers of the IC strength ramp plus the
// IR and win-rate breakpoints. Strength tiers apply to |IC mean| of
// standardized factors.
type ICThresholds struct {
	Excellent  float64 `yaml:"excellent"`
	Good       float64 `yaml:"good"`
	Fair       float64 `yaml:"fair"`
	Acceptable float64 `yaml:"acceptable"`
	Weak       float64 `yaml:"weak"`

	IRExcellent float64 `yaml:"ir_excellent"`
	IRGood      float64 `yaml:"ir_good"`

	WinRateGood float64 `yaml:"win_rate_good"`
	WinRatePoor float64 `yaml:"win_rate_poor"`
}

// QualityThresholds tier the data quality sub-score.
type QualityThresholds struct {
	MissingPerfect    float64 `yaml:"missing_perfect"`
	MissingExcellent  float64 `yaml:"missing_excellent"`
	MissingGood       float64 `yaml:"missing_good"`
	MissingAcceptable float64 `yaml:"missing_acceptable"`

	OutlierExcellent  float64 `yaml:"outlier_excellent"`
	OutlierGood       float64 `yaml:"outlier_good"`
	OutlierAcceptable float64 `yaml:"outlier_acceptable"`
	OutlierWarning    float64 `yaml:"outlier_warning"`

	CVMin float64 `yaml:"cv_min"`
	CVMax float64 `yaml:"cv_max"`
}

// DistributionThresholds tier the distribution sub-score on absolute
// skewness and absolute excess kurtosis.
type DistributionThresholds struct {
	SkewExcellent  float64 `yaml:"skew_excellent"`
	SkewGood       float64 `yaml:"skew_good"`
	SkewAcceptable float64 `yaml:"skew_acceptable"`
	SkewWarning    float64 `yaml:"skew_warning"`
	SkewPoor       float64 `yaml:"skew_poor"`

	KurtExcellent  float64 `yaml:"kurt_excellent"`
	KurtGood       float64 `yaml:"kurt_good"`
	KurtAcceptable float64 `yaml:"kurt_acceptable"`
	KurtWarning    float64 `yaml:"kurt_warning"`
	KurtPoor       float64 `yaml:"kurt_poor"`
}

// GradeThresholds map total score to letter grades. Anything below
// GradeD is an F.
type GradeThresholds struct {
	GradeA float64 `yaml:"grade_a"`
	GradeB float64 `yaml:"grade_b"`
	GradeC float64 `yaml:"grade_c"`
	GradeD float64 `yaml:"grade_d"`
}

// Config is the full scoring configuration surface.
type Config struct {
	Weights      Weights                `yaml:"weights"`
	IC           ICThresholds           `yaml:"ic_thresholds"`
	Quality      QualityThresholds      `yaml:"quality_thresholds"`
	Distribution DistributionThresholds `yaml:"distribution_thresholds"`
	Grades       GradeThresholds        `yaml:"grade_thresholds"`
}

// DefaultConfig returns the tuned production defaults.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			IC:           0.40,
			Stability:    0.25,
			DataQuality:  0.10,
			Distribution: 0.20,
			Consistency:  0.05,
		},
		IC: ICThresholds{
			Excellent:   0.08,
			Good:        0.05,
			Fair:        0.03,
			Acceptable:  0.02,
			Weak:        0.01,
			IRExcellent: 1.0,
			IRGood:      0.5,
			WinRateGood: 0.6,
			WinRatePoor: 0.4,
		},
		Quality: QualityThresholds{
			MissingPerfect:    0.00,
			MissingExcellent:  0.05,
			MissingGood:       0.10,
			MissingAcceptable: 0.20,
			OutlierExcellent:  0.02,
			OutlierGood:       0.05,
			OutlierAcceptable: 0.10,
			OutlierWarning:    0.20,
			CVMin:             0.01,
			CVMax:             5.0,
		},
		Distribution: DistributionThresholds{
			SkewExcellent:  1.0,
			SkewGood:       2.0,
			SkewAcceptable: 3.0,
			SkewWarning:    5.0,
			SkewPoor:       8.0,
			KurtExcellent:  3.0,
			KurtGood:       5.0,
			KurtAcceptable: 8.0,
			KurtWarning:    12.0,
			KurtPoor:       20.0,
		},
		Grades: GradeThresholds{
			GradeA: 0.80,
			GradeB: 0.65,
			GradeC: 0.45,
			GradeD: 0.30,
		},
	}
}

// Validate rejects weight sets that do not sum to 1.0 and tier tables
// that are not strictly ascending. Violations are fatal at
// construction, never deferred to the first score.
func (c Config) Validate() error {
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.3f", sum)
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"ic", c.Weights.IC},
		{"stability", c.Weights.Stability},
		{"data_quality", c.Weights.DataQuality},
		{"distribution", c.Weights.Distribution},
		{"consistency", c.Weights.Consistency},
	} {
		if w.value < 0 {
			return fmt.Errorf("scoring weight %s must not be negative", w.name)
		}
	}

	if !ascending(c.IC.Weak, c.IC.Acceptable, c.IC.Fair, c.IC.Good, c.IC.Excellent) {
		return fmt.Errorf("ic strength tiers must be strictly ascending")
	}
	if !ascending(c.Grades.GradeD, c.Grades.GradeC, c.Grades.GradeB, c.Grades.GradeA) {
		return fmt.Errorf("grade thresholds must be strictly ascending")
	}
	if !ascending(c.Distribution.SkewExcellent, c.Distribution.SkewGood,
		c.Distribution.SkewAcceptable, c.Distribution.SkewWarning, c.Distribution.SkewPoor) {
		return fmt.Errorf("skewness tiers must be strictly ascending")
	}
	if !ascending(c.Distribution.KurtExcellent, c.Distribution.KurtGood,
		c.Distribution.KurtAcceptable, c.Distribution.KurtWarning, c.Distribution.KurtPoor) {
		return fmt.Errorf("kurtosis tiers must be strictly ascending")
	}
	return nil
}

func ascending(values ...float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return true
}

// LoadConfig reads a scoring configuration from a YAML file. Unknown
// fields are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read scoring config: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scoring config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid scoring config: %w", err)
	}
	return cfg, nil
}
