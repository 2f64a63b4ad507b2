package scoring

import (
	"math"

	"github.com/wonny/factorlab/internal/contracts"
)

// stabilityScore blends the rolling-window stability metric (70%)
// with a coefficient-of-variation sanity check on the raw series
// (30%), then applies the stability weight.
func (e *Engine) stabilityScore(stability contracts.StabilityStats, basic contracts.BasicStats) float64 {
	score := stability.StabilityScore * 0.7

	if math.Abs(basic.Mean) > 0.001 {
		cv := basic.Std / math.Abs(basic.Mean)
		switch {
		case cv < 2.0:
			score += 0.3
		case cv < 5.0:
			score += 0.2
		default:
			score += 0.1
		}
	}

	return clamp01(score) * e.cfg.Weights.Stability
}

// consistencyScore checks that data quality and stability agree: a
// clean series should also be a stable one.
func (e *Engine) consistencyScore(basic contracts.BasicStats, stability contracts.StabilityStats) float64 {
	var score float64
	switch {
	case basic.MissingRatio < 0.1 && stability.StabilityScore > 0.7:
		score = 1.0
	case basic.MissingRatio < 0.2 && stability.StabilityScore > 0.5:
		score = 0.8
	default:
		score = 0.6
	}
	return score * e.cfg.Weights.Consistency
}
