package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/pkg/logger"
)

// Renderer turns batch results into human-readable reports.
type Renderer struct {
	logger *logger.Logger
}

// NewRenderer creates a report renderer.
func NewRenderer(log *logger.Logger) *Renderer {
	return &Renderer{logger: log.Component("report")}
}

// Markdown renders a batch result as a Markdown document: overview,
// ranking table, grade distribution, selection advice and the
// correlation highlights.
func (r *Renderer) Markdown(result contracts.BatchResult) string {
	var b strings.Builder
	summary := evaluation.Summarize(result)

	b.WriteString("# Factor Evaluation Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", result.EvaluatedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Factors requested: %d\n", summary.RequestedFactors)
	fmt.Fprintf(&b, "- Factors evaluated: %d (%s)\n", summary.EvaluatedFactors, formatPercent(summary.SuccessRate))
	fmt.Fprintf(&b, "- Data period: %s to %s\n\n",
		result.DataStart.Format("2006-01-02"), result.DataEnd.Format("2006-01-02"))

	r.writeRanking(&b, result.Ranking)
	writeGradeDistribution(&b, summary)
	writeSelection(&b, result.Selection)
	writeCorrelation(&b, result.Correlation)
	writeSkipped(&b, result.Skipped)

	return b.String()
}

func (r *Renderer) writeRanking(b *strings.Builder, ranking []contracts.RankedFactor) {
	if len(ranking) == 0 {
		return
	}

	b.WriteString("## Ranking\n\n")
	b.WriteString("| Rank | Factor | Grade | Total | IC | Stability | Quality | Distribution | Consistency |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, row := range ranking {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			row.Rank, row.FactorName, row.Grade,
			formatNumber(row.TotalScore),
			formatNumber(row.Scores.IC),
			formatNumber(row.Scores.Stability),
			formatNumber(row.Scores.DataQuality),
			formatNumber(row.Scores.Distribution),
			formatNumber(row.Scores.Consistency),
		)
	}
	b.WriteString("\n")
}

func writeGradeDistribution(b *strings.Builder, summary evaluation.BatchSummary) {
	if len(summary.GradeCounts) == 0 {
		return
	}

	b.WriteString("## Grade Distribution\n\n")
	for _, grade := range []contracts.Grade{
		contracts.GradeA, contracts.GradeB, contracts.GradeC, contracts.GradeD, contracts.GradeF,
	} {
		count := summary.GradeCounts[grade]
		if count == 0 {
			continue
		}
		fmt.Fprintf(b, "- %s: %d\n", grade, count)
	}
	b.WriteString("\n")
}

func writeSelection(b *strings.Builder, selection contracts.SelectionAdvice) {
	b.WriteString("## Selection Advice\n\n")
	writeFactorList(b, "Recommended", selection.Recommended)
	writeFactorList(b, "High quality (A/B)", selection.HighQuality)
	writeFactorList(b, "Redundant", selection.Redundant)
	writeFactorList(b, "Low performance (D/F)", selection.LowPerformance)
}

func writeFactorList(b *strings.Builder, title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**: %s\n\n", title, strings.Join(names, ", "))
}

func writeCorrelation(b *strings.Builder, analysis *contracts.CorrelationAnalysis) {
	if analysis == nil {
		return
	}

	b.WriteString("## Correlation Highlights\n\n")
	if analysis.Sampled {
		b.WriteString("Analysis sampled to the top ranked factors.\n\n")
	}

	pairs := analysis.HighPairs["pearson"]
	if len(pairs) == 0 {
		b.WriteString("No highly correlated pairs found.\n\n")
		return
	}
	b.WriteString("| Factor A | Factor B | Correlation |\n")
	b.WriteString("|---|---|---|\n")
	for _, pair := range pairs {
		fmt.Fprintf(b, "| %s | %s | %s |\n",
			pair.FactorA, pair.FactorB, formatNumber(pair.Correlation))
	}
	b.WriteString("\n")
}

func writeSkipped(b *strings.Builder, skipped map[string]string) {
	if len(skipped) == 0 {
		return
	}

	b.WriteString("## Skipped Factors\n\n")
	names := make([]string, 0, len(skipped))
	for name := range skipped {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "- %s: %s\n", name, skipped[name])
	}
	b.WriteString("\n")
}

// formatNumber renders a value to three decimals, N/A for NaN or Inf.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.3f", v)
}

// formatPercent renders a ratio as a percentage with one decimal.
func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
