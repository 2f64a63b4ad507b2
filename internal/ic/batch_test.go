package ic

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

func buildTable(n int, columns map[string]func(i int) float64) contracts.FactorTable {
	dates := make([]time.Time, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}

	table := contracts.FactorTable{
		Dates:  dates,
		Values: make(map[string][]float64, len(columns)),
	}
	for name, fn := range columns {
		values := make([]float64, n)
		for i := range values {
			values[i] = fn(i)
		}
		table.Columns = append(table.Columns, name)
		table.Values[name] = values
	}
	return table
}

func TestAnalyzeAll_SkipsFailingFactor(t *testing.T) {
	cls := stubClassifier{category: shortTechCategory()}
	e := NewEngine(logger.NewNop(), cls, testWindows())

	n := 200
	table := buildTable(n, map[string]func(int) float64{
		"GOOD":   func(i int) float64 { return math.Sin(float64(i) * 0.7) },
		"SPARSE": func(i int) float64 { return math.NaN() },
	})

	_, returns := predictiveSeries(n)

	results := e.AnalyzeAll(table, returns)

	// The all-NaN factor fails its analysis; the batch still delivers
	// the healthy one.
	require.Len(t, results, 1)
	assert.Contains(t, results, "GOOD")
}

func TestRankByStatistic_Ordering(t *testing.T) {
	e := NewEngine(logger.NewNop(), nil, testWindows())

	results := map[string]contracts.ICResult{
		"strong": {Stats: map[int]contracts.ICStats{1: {IR: 2.0, Mean: 0.05}}},
		"weak":   {Stats: map[int]contracts.ICStats{1: {IR: 0.3, Mean: 0.01}}},
		"medium": {Stats: map[int]contracts.ICStats{1: {IR: 1.1, Mean: 0.03}}},
	}

	rows := e.RankByStatistic(results, 1, RankByIR)

	require.Len(t, rows, 3)
	assert.Equal(t, "strong", rows[0].Factor)
	assert.Equal(t, "medium", rows[1].Factor)
	assert.Equal(t, "weak", rows[2].Factor)
}

func TestRankByStatistic_MissingHorizonSortsLast(t *testing.T) {
	e := NewEngine(logger.NewNop(), nil, testWindows())

	results := map[string]contracts.ICResult{
		"has":     {Stats: map[int]contracts.ICStats{1: {IR: 0.5}}},
		"missing": {Stats: map[int]contracts.ICStats{5: {IR: 9.9}}},
	}

	rows := e.RankByStatistic(results, 1, RankByIR)

	require.Len(t, rows, 2)
	assert.Equal(t, "has", rows[0].Factor)
	assert.Equal(t, "missing", rows[1].Factor)
	assert.True(t, math.IsNaN(rows[1].Metric))
}

func TestRankByStatistic_UnknownMetricFallsBackToIR(t *testing.T) {
	e := NewEngine(logger.NewNop(), nil, testWindows())

	results := map[string]contracts.ICResult{
		"a": {Stats: map[int]contracts.ICStats{1: {IR: 1.0}}},
		"b": {Stats: map[int]contracts.ICStats{1: {IR: 2.0}}},
	}

	rows := e.RankByStatistic(results, 1, RankMetric("bogus"))

	assert.Equal(t, "b", rows[0].Factor)
}
