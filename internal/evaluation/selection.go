package evaluation

import (
	"sort"

	"github.com/wonny/factorlab/internal/contracts"
)

// Suggest builds the factor shortlist from the ranking table and the
// redundancy structure. High quality is grade A/B, low performance is
// D/F, redundant is every non-representative member of a redundancy
// group, and recommended is high quality minus redundant, topped up
// with the best remaining B/C factors when short of the target.
func Suggest(ranking []contracts.RankedFactor, correlation *contracts.CorrelationAnalysis) contracts.SelectionAdvice {
	advice := contracts.SelectionAdvice{
		HighQuality:    []string{},
		LowPerformance: []string{},
		Redundant:      []string{},
		Recommended:    []string{},
	}

	for _, row := range ranking {
		switch row.Grade {
		case contracts.GradeA, contracts.GradeB:
			advice.HighQuality = append(advice.HighQuality, row.FactorName)
		case contracts.GradeD, contracts.GradeF:
			advice.LowPerformance = append(advice.LowPerformance, row.FactorName)
		}
	}

	redundant := make(map[string]bool)
	if correlation != nil {
		// Each group keeps its first member as the representative.
		for _, group := range correlation.Groups["pearson"] {
			for _, name := range group[1:] {
				redundant[name] = true
			}
		}
	}
	for name := range redundant {
		advice.Redundant = append(advice.Redundant, name)
	}
	sort.Strings(advice.Redundant)

	recommended := make(map[string]bool)
	for _, name := range advice.HighQuality {
		if !redundant[name] {
			recommended[name] = true
		}
	}
	if len(recommended) < recommendedTarget {
		for _, row := range ranking {
			if len(recommended) >= recommendedTarget {
				break
			}
			if recommended[row.FactorName] || redundant[row.FactorName] {
				continue
			}
			if row.Grade == contracts.GradeB || row.Grade == contracts.GradeC {
				recommended[row.FactorName] = true
			}
		}
	}
	for name := range recommended {
		advice.Recommended = append(advice.Recommended, name)
	}
	sort.Strings(advice.Recommended)

	return advice
}
