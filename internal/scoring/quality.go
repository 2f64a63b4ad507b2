package scoring

import (
	"math"

	"github.com/wonny/factorlab/internal/contracts"
)

// qualityScore tiers missing ratio (50%), outlier ratio (30%) and
// coefficient of variation (20%), then applies the quality weight.
func (e *Engine) qualityScore(basic contracts.BasicStats, dist contracts.DistributionStats) float64 {
	t := e.cfg.Quality
	var score float64

	switch {
	case basic.MissingRatio == t.MissingPerfect:
		score += 0.5
	case basic.MissingRatio < t.MissingExcellent:
		score += 0.45
	case basic.MissingRatio < t.MissingGood:
		score += 0.35
	case basic.MissingRatio < t.MissingAcceptable:
		score += 0.25
	default:
		score += 0.10
	}

	switch {
	case dist.OutlierRatio < t.OutlierExcellent:
		score += 0.30
	case dist.OutlierRatio < t.OutlierGood:
		score += 0.25
	case dist.OutlierRatio < t.OutlierAcceptable:
		score += 0.20
	case dist.OutlierRatio < t.OutlierWarning:
		score += 0.10
	default:
		score += 0.05
	}

	mean := math.Abs(basic.Mean)
	switch {
	case basic.Std > 0 && mean > 0:
		cv := basic.Std / mean
		switch {
		case cv > t.CVMin && cv < t.CVMax:
			score += 0.20
		case cv <= t.CVMin:
			score += 0.05
		default:
			score += 0.10
		}
	case basic.Std > 0:
		// Variation around a zero mean: CV is undefined but the
		// series does move.
		score += 0.15
	}

	return clamp01(score) * e.cfg.Weights.DataQuality
}

// distributionScore tiers |skewness| and |excess kurtosis| jointly.
// Both must clear a tier for the factor to earn it.
func (e *Engine) distributionScore(basic contracts.BasicStats) float64 {
	t := e.cfg.Distribution
	skew := math.Abs(basic.Skewness)
	kurt := math.Abs(basic.Kurtosis)

	var score float64
	switch {
	case skew < t.SkewExcellent && kurt < t.KurtExcellent:
		score = 1.0
	case skew < t.SkewGood && kurt < t.KurtGood:
		score = 0.85
	case skew < t.SkewAcceptable && kurt < t.KurtAcceptable:
		score = 0.65
	case skew < t.SkewWarning && kurt < t.KurtWarning:
		score = 0.45
	case skew < t.SkewPoor && kurt < t.KurtPoor:
		score = 0.25
	default:
		score = 0.10
	}

	return score * e.cfg.Weights.Distribution
}
