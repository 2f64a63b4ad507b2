package scoring

import (
	"fmt"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

// Engine fuses IC analysis and descriptive statistics into one
// weighted composite score per factor.
type Engine struct {
	cfg    Config
	logger *logger.Logger
}

// NewEngine validates the configuration and returns a scoring engine.
func NewEngine(log *logger.Logger, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scoring engine: %w", err)
	}
	return &Engine{
		cfg:    cfg,
		logger: log.Component("scoring"),
	}, nil
}

// Config returns the active scoring configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes the five weighted sub-scores and their sum, then
// assigns the letter grade. Each sub-score is bounded by its weight;
// Total is the exact sum of the five.
func (e *Engine) Score(ic contracts.ICResult, basic contracts.BasicStats,
	dist contracts.DistributionStats, stability contracts.StabilityStats) contracts.EvaluationScore {

	score := contracts.EvaluationScore{
		IC:           e.icScore(ic),
		Stability:    e.stabilityScore(stability, basic),
		DataQuality:  e.qualityScore(basic, dist),
		Distribution: e.distributionScore(basic),
		Consistency:  e.consistencyScore(basic, stability),
	}
	score.Total = score.IC + score.Stability + score.DataQuality +
		score.Distribution + score.Consistency
	score.Grade = e.AssignGrade(score.Total, ic)

	e.logger.WithFields(map[string]interface{}{
		"factor":      ic.FactorName,
		"ic_score":    fmt.Sprintf("%.3f", score.IC),
		"total_score": fmt.Sprintf("%.3f", score.Total),
		"grade":       score.Grade,
	}).Debug("Factor scored")

	return score
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
