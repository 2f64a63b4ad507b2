package contracts

import "time"

// ValidationMode identifies how a factor was validated out of sample.
type ValidationMode string

const (
	ValidationSimpleSplit ValidationMode = "simple_split"
	ValidationWalkForward ValidationMode = "walk_forward"
)

// DegradationSeverity labels the average in-sample to out-of-sample
// IC decay rate.
type DegradationSeverity string

const (
	DegradationMild        DegradationSeverity = "mild"        // < 10%
	DegradationModerate    DegradationSeverity = "moderate"    // 10-30%
	DegradationSignificant DegradationSeverity = "significant" // 30-50%
	DegradationSevere      DegradationSeverity = "severe"      // >= 50%
)

// HorizonIC is the IC measured on one data partition for one horizon.
type HorizonIC struct {
	Pearson      float64 `json:"ic_pearson"`
	Spearman     float64 `json:"ic_spearman"`
	RollingStats ICStats `json:"rolling_ic_stats"`
}

// HorizonDegradation compares in-sample and out-of-sample IC for one
// horizon. AbsDegradation is 1.0 (full decay) when the in-sample IC is
// numerically negligible; SignConsistency is 1 when both share a sign.
type HorizonDegradation struct {
	InSampleIC      float64 `json:"in_sample_ic"`
	OutSampleIC     float64 `json:"out_sample_ic"`
	AbsDegradation  float64 `json:"abs_degradation"`
	SignConsistency float64 `json:"sign_consistency"`
}

// DegradationSummary averages the per-horizon degradation metrics.
type DegradationSummary struct {
	AvgAbsDegradation  float64             `json:"avg_abs_degradation"`
	AvgSignConsistency float64             `json:"avg_sign_consistency"`
	Severity           DegradationSeverity `json:"degradation_severity"`
}

// SplitInfo describes one data partition of a validation run.
type SplitInfo struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Length int       `json:"length"`
}

// ValidationResult is the outcome of one out-of-sample validation call.
// Created once per call; immutable afterwards.
type ValidationResult struct {
	FactorName  string                     `json:"factor_name"`
	Mode        ValidationMode             `json:"validation_mode"`
	InSample    map[int]HorizonIC          `json:"in_sample_ic"`
	OutSample   map[int]HorizonIC          `json:"out_sample_ic"`
	Degradation map[int]HorizonDegradation `json:"degradation_metrics"`
	Summary     DegradationSummary         `json:"degradation_summary"`

	RobustnessScore float64 `json:"robustness_score"` // in [0, 1]
	Robust          bool    `json:"is_robust"`

	TrainPeriod SplitInfo `json:"train_period"`
	TestPeriod  SplitInfo `json:"test_period"`

	// Walk-forward detail; zero for simple splits.
	WindowCount int `json:"window_count,omitempty"`
	WindowSize  int `json:"window_size,omitempty"`
	StepSize    int `json:"step_size,omitempty"`

	ValidatedAt time.Time `json:"validated_at"`
}
