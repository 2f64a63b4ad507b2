package evaluation

import (
	"time"

	"github.com/wonny/factorlab/internal/contracts"
)

// BatchSummary condenses a batch result for reporting.
type BatchSummary struct {
	RequestedFactors int                     `json:"requested_factors"`
	EvaluatedFactors int                     `json:"evaluated_factors"`
	SuccessRate      float64                 `json:"success_rate"`
	GradeCounts      map[contracts.Grade]int `json:"grade_counts"`
	BestFactor       string                  `json:"best_factor,omitempty"`
	BestScore        float64                 `json:"best_score"`
	DataStart        time.Time               `json:"data_start"`
	DataEnd          time.Time               `json:"data_end"`
	EvaluatedAt      time.Time               `json:"evaluated_at"`
}

// Summarize computes the grade distribution and success rate of a
// batch result.
func Summarize(result contracts.BatchResult) BatchSummary {
	summary := BatchSummary{
		RequestedFactors: result.RequestedFactors,
		EvaluatedFactors: result.EvaluatedFactors,
		GradeCounts:      make(map[contracts.Grade]int),
		DataStart:        result.DataStart,
		DataEnd:          result.DataEnd,
		EvaluatedAt:      result.EvaluatedAt,
	}
	if result.RequestedFactors > 0 {
		summary.SuccessRate = float64(result.EvaluatedFactors) / float64(result.RequestedFactors)
	}
	for _, evaluation := range result.Evaluations {
		summary.GradeCounts[evaluation.Score.Grade]++
	}
	if len(result.Ranking) > 0 {
		summary.BestFactor = result.Ranking[0].FactorName
		summary.BestScore = result.Ranking[0].TotalScore
	}
	return summary
}
