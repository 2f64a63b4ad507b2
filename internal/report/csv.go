package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/wonny/factorlab/internal/contracts"
)

// RankingCSV writes the ranking table as CSV, one row per factor in
// rank order.
func (r *Renderer) RankingCSV(w io.Writer, ranking []contracts.RankedFactor) error {
	cw := csv.NewWriter(w)

	header := []string{
		"rank", "factor", "grade", "total_score",
		"ic_score", "stability_score", "data_quality_score",
		"distribution_score", "consistency_score",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range ranking {
		record := []string{
			strconv.Itoa(row.Rank),
			row.FactorName,
			string(row.Grade),
			formatNumber(row.TotalScore),
			formatNumber(row.Scores.IC),
			formatNumber(row.Scores.Stability),
			formatNumber(row.Scores.DataQuality),
			formatNumber(row.Scores.Distribution),
			formatNumber(row.Scores.Consistency),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
