package evaluation

import (
	"sort"

	"github.com/wonny/factorlab/internal/contracts"
)

// Rank orders evaluations by total score descending and assigns
// sequential 1-based ranks. Ties break on factor name so the table is
// deterministic.
func Rank(evaluations map[string]contracts.FactorEvaluation) []contracts.RankedFactor {
	rows := make([]contracts.RankedFactor, 0, len(evaluations))
	for name, evaluation := range evaluations {
		rows = append(rows, contracts.RankedFactor{
			FactorName: name,
			TotalScore: evaluation.Score.Total,
			Grade:      evaluation.Score.Grade,
			Scores:     evaluation.Score,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].FactorName < rows[j].FactorName
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
