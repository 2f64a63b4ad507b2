package ic

import (
	"math"
	"sort"

	"github.com/wonny/factorlab/internal/contracts"
)

// AnalyzeAll runs the adaptive analysis over every column of a factor
// table against one return series. A single factor's failure is logged
// and skipped, never aborting the batch.
func (e *Engine) AnalyzeAll(table contracts.FactorTable, returns contracts.TimeSeries) map[string]contracts.ICResult {
	results := make(map[string]contracts.ICResult, len(table.Columns))

	e.logger.WithField("factors", len(table.Columns)).Info("Starting batch IC analysis")

	for i, name := range table.Columns {
		series, ok := table.Column(name)
		if !ok {
			continue
		}

		result, err := e.Adaptive(series, returns)
		if err != nil {
			e.logger.WithError(err).WithFields(map[string]interface{}{
				"factor":   name,
				"progress": i + 1,
				"total":    len(table.Columns),
			}).Error("Factor IC analysis failed, skipping")
			continue
		}
		results[name] = result
	}

	e.logger.WithFields(map[string]interface{}{
		"analyzed": len(results),
		"total":    len(table.Columns),
	}).Info("Batch IC analysis complete")

	return results
}

// RankMetric selects the statistic used to order factors.
type RankMetric string

const (
	RankByIR            RankMetric = "ic_ir"
	RankByMean          RankMetric = "ic_mean"
	RankByAbsMean       RankMetric = "ic_abs_mean"
	RankByPositiveRatio RankMetric = "ic_positive_ratio"
)

// RankRow is one entry of the IC ranking table.
type RankRow struct {
	Factor string            `json:"factor"`
	Stats  contracts.ICStats `json:"stats"`
	Metric float64           `json:"metric"`
}

// RankByStatistic orders factors descending by the chosen statistic at
// one horizon. Factors without statistics for that horizon sort last.
// An unknown metric falls back to the information ratio.
func (e *Engine) RankByStatistic(results map[string]contracts.ICResult, horizon int, metric RankMetric) []RankRow {
	rows := make([]RankRow, 0, len(results))

	for name, result := range results {
		st, ok := result.Stats[horizon]
		if !ok {
			rows = append(rows, RankRow{Factor: name, Metric: math.NaN()})
			continue
		}
		rows = append(rows, RankRow{
			Factor: name,
			Stats:  st,
			Metric: metricValue(st, metric),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		mi, mj := rows[i].Metric, rows[j].Metric
		switch {
		case math.IsNaN(mi) && math.IsNaN(mj):
			return rows[i].Factor < rows[j].Factor
		case math.IsNaN(mi):
			return false
		case math.IsNaN(mj):
			return true
		case mi != mj:
			return mi > mj
		default:
			return rows[i].Factor < rows[j].Factor
		}
	})

	return rows
}

func metricValue(st contracts.ICStats, metric RankMetric) float64 {
	switch metric {
	case RankByMean:
		return st.Mean
	case RankByAbsMean:
		return st.AbsMean
	case RankByPositiveRatio:
		return st.PositiveRatio
	case RankByIR:
		return st.IR
	default:
		return st.IR
	}
}
