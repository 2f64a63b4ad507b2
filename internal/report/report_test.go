package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

func sampleResult() contracts.BatchResult {
	scoreA := contracts.EvaluationScore{
		IC: 0.35, Stability: 0.22, DataQuality: 0.09,
		Distribution: 0.18, Consistency: 0.05,
		Total: 0.89, Grade: contracts.GradeA,
	}
	scoreC := contracts.EvaluationScore{
		IC: 0.10, Stability: 0.15, DataQuality: 0.08,
		Distribution: 0.13, Consistency: 0.04,
		Total: 0.50, Grade: contracts.GradeC,
	}

	return contracts.BatchResult{
		RequestedFactors: 3,
		EvaluatedFactors: 2,
		DataStart:        time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		DataEnd:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Evaluations: map[string]contracts.FactorEvaluation{
			"SMA_5":  {FactorName: "SMA_5", Score: scoreA},
			"RSI_14": {FactorName: "RSI_14", Score: scoreC},
		},
		Skipped: map[string]string{"BROKEN": "no data"},
		Ranking: []contracts.RankedFactor{
			{FactorName: "SMA_5", TotalScore: 0.89, Grade: contracts.GradeA, Scores: scoreA, Rank: 1},
			{FactorName: "RSI_14", TotalScore: 0.50, Grade: contracts.GradeC, Scores: scoreC, Rank: 2},
		},
		Selection: contracts.SelectionAdvice{
			HighQuality: []string{"SMA_5"},
			Recommended: []string{"RSI_14", "SMA_5"},
		},
		Correlation: &contracts.CorrelationAnalysis{
			HighPairs: map[string][]contracts.CorrelationPair{
				"pearson": {{FactorA: "SMA_5", FactorB: "RSI_14", Correlation: 0.91}},
			},
		},
		EvaluatedAt: time.Date(2024, 1, 3, 2, 0, 0, 0, time.UTC),
	}
}

func TestMarkdownRendersAllSections(t *testing.T) {
	r := NewRenderer(logger.NewNop())
	doc := r.Markdown(sampleResult())

	assert.Contains(t, doc, "# Factor Evaluation Report")
	assert.Contains(t, doc, "Factors evaluated: 2 (66.7%)")
	assert.Contains(t, doc, "| 1 | SMA_5 | A | 0.890 |")
	assert.Contains(t, doc, "## Grade Distribution")
	assert.Contains(t, doc, "- A: 1")
	assert.Contains(t, doc, "**Recommended**: RSI_14, SMA_5")
	assert.Contains(t, doc, "| SMA_5 | RSI_14 | 0.910 |")
	assert.Contains(t, doc, "- BROKEN: no data")
}

func TestMarkdownOmitsEmptySections(t *testing.T) {
	r := NewRenderer(logger.NewNop())
	result := sampleResult()
	result.Skipped = nil
	result.Correlation = nil

	doc := r.Markdown(result)
	assert.NotContains(t, doc, "## Skipped Factors")
	assert.NotContains(t, doc, "## Correlation Highlights")
}

func TestRankingCSV(t *testing.T) {
	r := NewRenderer(logger.NewNop())
	var buf bytes.Buffer

	require.NoError(t, r.RankingCSV(&buf, sampleResult().Ranking))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, []string{"1", "SMA_5", "A", "0.890", "0.350", "0.220", "0.090", "0.180", "0.050"}, records[1])
}
