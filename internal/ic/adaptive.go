package ic

import (
	"fmt"
	"math"

	"github.com/wonny/factorlab/internal/contracts"
)

// LegacyHorizons is the fixed horizon set used before classification
// was introduced. Kept for the traditional mode and the comparison
// diagnostic.
var LegacyHorizons = []int{1, 3, 5, 10}

// Adaptive runs the classifier-driven IC analysis: the factor's
// category decides which horizons to evaluate, and the category's
// primary horizon provides the headline statistics. This is the
// recommended mode.
func (e *Engine) Adaptive(factor, returns contracts.TimeSeries) (contracts.ICResult, error) {
	if e.classifier == nil {
		e.logger.Warn("No classifier configured, falling back to legacy horizons")
		return e.Traditional(factor, returns, nil)
	}

	category := e.classifier.Classify(factor.Name)
	e.logger.WithFields(map[string]interface{}{
		"factor":   factor.Name,
		"category": category.Name,
		"horizons": category.Horizons,
	}).Debug("Adaptive IC analysis")

	result, err := e.analyzeHorizons(factor, returns, category.Horizons, category.PrimaryHorizon)
	if err != nil {
		return contracts.ICResult{}, err
	}
	result.Category = category.Name

	if e.compareLegacy {
		comparison, err := e.compareWithLegacy(factor, returns, category.Horizons)
		if err != nil {
			e.logger.WithError(err).WithField("factor", factor.Name).
				Warn("Legacy comparison failed")
		} else {
			result.Comparison = comparison
		}
	}

	return result, nil
}

// Traditional runs the fixed-horizon IC analysis. A nil horizon list
// selects the legacy default. The first horizon provides the headline
// statistics.
func (e *Engine) Traditional(factor, returns contracts.TimeSeries, horizons []int) (contracts.ICResult, error) {
	if len(horizons) == 0 {
		horizons = LegacyHorizons
	}
	return e.analyzeHorizons(factor, returns, horizons, horizons[0])
}

func (e *Engine) analyzeHorizons(factor, returns contracts.TimeSeries, horizons []int, primary int) (contracts.ICResult, error) {
	result := contracts.ICResult{
		FactorName:     factor.Name,
		Horizons:       append([]int(nil), horizons...),
		PrimaryHorizon: primary,
		Stats:          make(map[int]contracts.ICStats, len(horizons)),
		RollingIC:      make(map[int]contracts.TimeSeries, len(horizons)),
	}

	for _, horizon := range horizons {
		rolling, err := e.RollingIC(factor, returns, e.windows.PrimaryWindow, horizon, MethodPearson)
		if err != nil {
			return contracts.ICResult{}, fmt.Errorf("rolling IC for horizon %d: %w", horizon, err)
		}

		icStats, err := e.Statistics(rolling)
		if err != nil {
			return contracts.ICResult{}, fmt.Errorf("IC statistics for horizon %d: %w", horizon, err)
		}

		result.RollingIC[horizon] = rolling
		result.Stats[horizon] = icStats
	}

	return result, nil
}

// compareWithLegacy measures the best-magnitude single IC achieved
// under the adaptive horizons against the legacy fixed set. Purely
// diagnostic, never consumed by scoring.
func (e *Engine) compareWithLegacy(factor, returns contracts.TimeSeries, adaptiveHorizons []int) (*contracts.HorizonComparison, error) {
	bestLegacy, err := e.bestAbsIC(factor, returns, LegacyHorizons)
	if err != nil {
		return nil, err
	}
	bestAdaptive, err := e.bestAbsIC(factor, returns, adaptiveHorizons)
	if err != nil {
		return nil, err
	}

	improvement := 0.0
	if bestLegacy > 0 {
		improvement = (bestAdaptive - bestLegacy) / bestLegacy * 100
	}

	return &contracts.HorizonComparison{
		LegacyHorizons:   append([]int(nil), LegacyHorizons...),
		AdaptiveHorizons: append([]int(nil), adaptiveHorizons...),
		LegacyBestIC:     bestLegacy,
		AdaptiveBestIC:   bestAdaptive,
		ImprovementPct:   improvement,
	}, nil
}

// bestAbsIC returns the largest |IC| over a horizon set, skipping
// horizons with insufficient data. All-skipped yields 0.
func (e *Engine) bestAbsIC(factor, returns contracts.TimeSeries, horizons []int) (float64, error) {
	best := 0.0
	for _, horizon := range horizons {
		ic, err := e.IC(factor, returns, horizon, MethodPearson)
		if err != nil || math.IsNaN(ic) {
			continue
		}
		if abs := math.Abs(ic); abs > best {
			best = abs
		}
	}
	return best, nil
}
