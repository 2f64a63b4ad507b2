package correlation

import (
	"math"
	"sort"

	"github.com/wonny/factorlab/internal/contracts"
)

// SelectRepresentative picks one factor from a redundancy group. With
// a quality metric the highest-scoring member wins; without one the
// lexicographically first member is chosen so output is reproducible.
func (e *Engine) SelectRepresentative(group contracts.RedundancyGroup, quality map[string]float64) string {
	if len(group) == 0 {
		return ""
	}

	sorted := append([]string(nil), group...)
	sort.Strings(sorted)

	if len(quality) == 0 {
		return sorted[0]
	}

	best := ""
	bestScore := math.Inf(-1)
	for _, factor := range sorted {
		score, ok := quality[factor]
		if !ok || math.IsNaN(score) {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = factor
		}
	}

	if best == "" {
		return sorted[0]
	}
	return best
}

// SuggestSelection returns every factor outside any redundancy group
// plus one representative per group: an approximate independent subset
// under the threshold, not a guaranteed optimum. Output is sorted.
func (e *Engine) SuggestSelection(matrix contracts.CorrelationMatrix, quality map[string]float64) []string {
	if matrix.Empty() {
		e.logger.Warn("Empty correlation matrix, no selection possible")
		return nil
	}

	groups := e.RedundancyGroups(matrix, e.threshold)

	grouped := make(map[string]bool)
	for _, group := range groups {
		for _, factor := range group {
			grouped[factor] = true
		}
	}

	var selected []string
	for _, factor := range matrix.Factors {
		if !grouped[factor] {
			selected = append(selected, factor)
		}
	}

	for _, group := range groups {
		representative := e.SelectRepresentative(group, quality)
		selected = append(selected, representative)
		e.logger.WithFields(map[string]interface{}{
			"group_size":     len(group),
			"representative": representative,
		}).Debug("Redundancy group collapsed")
	}

	sort.Strings(selected)

	e.logger.WithFields(map[string]interface{}{
		"total":    matrix.Size(),
		"selected": len(selected),
	}).Info("Factor selection suggested")

	return selected
}

// ValidateSelection re-checks that no two selected factors exceed the
// threshold. Used as a post-hoc sanity check after selection.
func (e *Engine) ValidateSelection(selected []string, matrix contracts.CorrelationMatrix) contracts.SelectionValidation {
	result := contracts.SelectionValidation{
		Threshold:     e.threshold,
		SelectedCount: len(selected),
	}

	if len(selected) == 0 || matrix.Empty() {
		return result
	}

	for _, factor := range selected {
		if _, ok := matrix.Get(factor, factor); !ok {
			// A factor missing from the matrix cannot be validated.
			return result
		}
	}

	maxCorr := 0.0
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			r, ok := matrix.Get(selected[i], selected[j])
			if !ok || math.IsNaN(r) {
				continue
			}
			if abs := math.Abs(r); abs > maxCorr {
				maxCorr = abs
			}
			if math.Abs(r) > e.threshold {
				result.Violations = append(result.Violations, contracts.CorrelationPair{
					FactorA:     selected[i],
					FactorB:     selected[j],
					Correlation: r,
				})
			}
		}
	}

	result.MaxCorrelation = maxCorr
	result.Valid = maxCorr <= e.threshold
	return result
}
