package contracts

import "time"

// FactorCategory describes one class of factors and the forward horizons
// appropriate for evaluating it. Categories are static data defined by
// the classifier's rule table and never mutated after construction.
type FactorCategory struct {
	Name            string `json:"name"`
	Horizons        []int  `json:"horizons"`
	PrimaryHorizon  int    `json:"primary_horizon"`
	Description     string `json:"description"`
	EvaluationFocus string `json:"evaluation_focus"`
}

// ICStats summarizes a rolling IC series for one horizon.
type ICStats struct {
	Mean          float64 `json:"ic_mean"`
	Std           float64 `json:"ic_std"`
	IR            float64 `json:"ic_ir"`             // mean/std, 0 when std is 0
	PositiveRatio float64 `json:"ic_positive_ratio"` // fraction of positive ICs
	AbsMean       float64 `json:"ic_abs_mean"`
	SampleSize    int     `json:"sample_size"`
}

// HorizonComparison is the diagnostic comparing classifier-driven horizons
// against the legacy fixed horizon set. Not used by scoring.
type HorizonComparison struct {
	LegacyHorizons   []int   `json:"legacy_horizons"`
	AdaptiveHorizons []int   `json:"adaptive_horizons"`
	LegacyBestIC     float64 `json:"legacy_best_ic"`
	AdaptiveBestIC   float64 `json:"adaptive_best_ic"`
	ImprovementPct   float64 `json:"improvement_pct"`
}

// ICResult is the outcome of an adaptive or traditional IC analysis of a
// single factor. Stats and RollingIC are keyed by horizon; the headline
// result is the primary horizon's statistics.
type ICResult struct {
	FactorName     string             `json:"factor_name"`
	Category       string             `json:"factor_category"`
	Horizons       []int              `json:"horizons"`
	PrimaryHorizon int                `json:"primary_horizon"`
	Stats          map[int]ICStats    `json:"stats"`
	RollingIC      map[int]TimeSeries `json:"rolling_ic"`
	Comparison     *HorizonComparison `json:"comparison,omitempty"`
}

// Headline returns the primary horizon's statistics.
func (r ICResult) Headline() ICStats {
	return r.Stats[r.PrimaryHorizon]
}

// BasicStats are descriptive statistics of a raw factor series.
type BasicStats struct {
	Count        int     `json:"count"`
	MissingRatio float64 `json:"missing_ratio"`
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"` // excess kurtosis
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	IQR          float64 `json:"iqr"`
}

// DistributionStats describe the shape and outlier profile of a factor.
type DistributionStats struct {
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
	IsNormalish  bool    `json:"is_normalish"`
	OutlierCount int     `json:"outlier_count"`
	OutlierRatio float64 `json:"outlier_ratio"`
	LowerBound   float64 `json:"lower_bound"`
	UpperBound   float64 `json:"upper_bound"`
	Range        float64 `json:"range"`
	CV           float64 `json:"coefficient_of_variation"`
}

// StabilityStats summarize how stable a factor's rolling moments are.
type StabilityStats struct {
	StabilityScore  float64         `json:"stability_score"` // 0..1
	MeanStability   float64         `json:"mean_stability"`
	StdStability    float64         `json:"std_stability"`
	TimeCorrelation float64         `json:"time_correlation"`
	HasTrend        bool            `json:"has_trend"`
	Autocorrelation map[int]float64 `json:"autocorrelation"` // by lag
	Window          int             `json:"window"`
	Insufficient    bool            `json:"insufficient"` // too short for the window
}

// Grade is the letter summary of a composite evaluation score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// EvaluationScore holds the five weighted sub-scores and their sum.
// Each sub-score is bounded by its configured weight, and Total is the
// exact sum of the five.
type EvaluationScore struct {
	IC           float64 `json:"ic_score"`
	Stability    float64 `json:"stability_score"`
	DataQuality  float64 `json:"data_quality_score"`
	Distribution float64 `json:"distribution_score"`
	Consistency  float64 `json:"consistency_score"`
	Total        float64 `json:"total_score"`
	Grade        Grade   `json:"grade"`
}

// FactorEvaluation is the full per-factor evaluation result.
type FactorEvaluation struct {
	FactorName   string            `json:"factor_name"`
	Basic        BasicStats        `json:"basic_statistics"`
	Distribution DistributionStats `json:"distribution_analysis"`
	Stability    StabilityStats    `json:"stability_analysis"`
	IC           ICResult          `json:"ic_analysis"`
	Score        EvaluationScore   `json:"evaluation_score"`
	EvaluatedAt  time.Time         `json:"evaluated_at"`
}

// RankedFactor is one row of the ranking table. Rank is 1-based and
// dense; the table is sorted descending by TotalScore.
type RankedFactor struct {
	FactorName string          `json:"factor"`
	TotalScore float64         `json:"total_score"`
	Grade      Grade           `json:"grade"`
	Scores     EvaluationScore `json:"scores"`
	Rank       int             `json:"rank"`
}

// SelectionAdvice is the factor shortlist produced by a batch evaluation.
type SelectionAdvice struct {
	HighQuality    []string `json:"high_quality_factors"`    // grade A/B
	LowPerformance []string `json:"low_performance_factors"` // grade D/F
	Redundant      []string `json:"redundant_factors"`
	Recommended    []string `json:"recommended_factors"`
}

// BatchResult is what a batch evaluation always returns, even when
// individual factors failed. Skipped maps factor name to the reason it
// was excluded.
type BatchResult struct {
	RequestedFactors int                         `json:"requested_factors"`
	EvaluatedFactors int                         `json:"evaluated_factors"`
	DataStart        time.Time                   `json:"data_start"`
	DataEnd          time.Time                   `json:"data_end"`
	Evaluations      map[string]FactorEvaluation `json:"evaluations"`
	Skipped          map[string]string           `json:"skipped"`
	Correlation      *CorrelationAnalysis        `json:"correlation_analysis,omitempty"`
	Ranking          []RankedFactor              `json:"ranking"`
	Selection        SelectionAdvice             `json:"selection_recommendations"`
	EvaluatedAt      time.Time                   `json:"evaluated_at"`
}
