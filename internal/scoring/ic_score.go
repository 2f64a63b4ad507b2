package scoring

import (
	"math"

	"github.com/wonny/factorlab/internal/contracts"
)

// negligibleIC is the magnitude below which an IC mean is treated as
// numerically zero.
const negligibleIC = 1e-6

// icScore blends IC strength, information ratio and win rate 50/30/20
// and applies the IC weight. A factor whose IC computation failed
// outright scores 0 here: predictive power is never substituted with
// a proxy.
func (e *Engine) icScore(ic contracts.ICResult) float64 {
	stats := ic.Headline()
	if math.Abs(stats.Mean) <= negligibleIC && stats.AbsMean <= negligibleIC {
		e.logger.WithField("factor", ic.FactorName).Warn("IC unavailable, IC sub-score is 0")
		return 0
	}

	strength := e.strengthScore(math.Abs(stats.Mean))
	ir := e.irScore(stats.IR)
	winRate := e.winRateScore(stats.PositiveRatio)

	blended := strength*0.5 + ir*0.3 + winRate*0.2
	return clamp01(blended) * e.cfg.Weights.IC
}

// strengthScore ramps |IC mean| through the named tiers. Piecewise
// linear and continuous at every tier boundary.
func (e *Engine) strengthScore(absMean float64) float64 {
	t := e.cfg.IC
	switch {
	case absMean >= t.Excellent:
		return 1.0
	case absMean >= t.Good:
		return 0.7 + (absMean-t.Good)/(t.Excellent-t.Good)*0.3
	case absMean >= t.Fair:
		return 0.4 + (absMean-t.Fair)/(t.Good-t.Fair)*0.3
	case absMean >= t.Acceptable:
		return 0.2 + (absMean-t.Acceptable)/(t.Fair-t.Acceptable)*0.2
	case absMean >= t.Weak:
		return 0.1 + (absMean-t.Weak)/(t.Acceptable-t.Weak)*0.1
	default:
		return absMean / t.Weak * 0.1
	}
}

// irScore ramps |IR|. Sign carries direction, not quality.
func (e *Engine) irScore(ir float64) float64 {
	t := e.cfg.IC
	absIR := math.Abs(ir)
	switch {
	case absIR >= t.IRExcellent:
		return 1.0
	case absIR >= t.IRGood:
		return 0.5 + (absIR-t.IRGood)/(t.IRExcellent-t.IRGood)*0.5
	default:
		return absIR / t.IRGood * 0.5
	}
}

// winRateScore rewards directional consistency on either side. A
// ratio near 0.5 means the IC sign is indistinguishable from a coin
// flip, so the score ramps to 0 at exactly 0.5 and meets the outer
// ramps at the good/poor boundaries.
func (e *Engine) winRateScore(positiveRatio float64) float64 {
	t := e.cfg.IC
	switch {
	case positiveRatio >= t.WinRateGood:
		return 0.5 + (positiveRatio-t.WinRateGood)/(1.0-t.WinRateGood)*0.5
	case positiveRatio <= t.WinRatePoor:
		return 0.5 + (t.WinRatePoor-positiveRatio)/t.WinRatePoor*0.5
	default:
		return math.Abs(positiveRatio-0.5) / (t.WinRateGood - 0.5) * 0.5
	}
}
