package evaluation

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/classifier"
	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/internal/correlation"
	"github.com/wonny/factorlab/internal/ic"
	"github.com/wonny/factorlab/internal/scoring"
	"github.com/wonny/factorlab/internal/stats"
	"github.com/wonny/factorlab/pkg/logger"
)

// memProvider serves an in-memory factor table.
type memProvider struct {
	table   contracts.FactorTable
	returns contracts.TimeSeries
}

func (p *memProvider) GetFactorSeries(_ context.Context, name string) (contracts.TimeSeries, error) {
	series, ok := p.table.Column(name)
	if !ok {
		return contracts.TimeSeries{}, contracts.ErrFactorNotFound
	}
	return series, nil
}

func (p *memProvider) GetReturnSeries(_ context.Context) (contracts.TimeSeries, error) {
	return p.returns, nil
}

func (p *memProvider) GetFactorTable(_ context.Context, names []string) (contracts.FactorTable, error) {
	return p.table.Select(names), nil
}

func (p *memProvider) ListFactors(_ context.Context) ([]string, error) {
	return p.table.Columns, nil
}

func tradingDates(n int) []time.Time {
	dates := make([]time.Time, n)
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = day
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// fixtureProvider builds a table where SMA_5 predicts next-day
// returns exactly, NOISE_3 is unrelated and BROKEN is all NaN.
func fixtureProvider(n int) *memProvider {
	dates := tradingDates(n)

	predictive := make([]float64, n)
	noise := make([]float64, n)
	broken := make([]float64, n)
	returns := make([]float64, n)
	for i := 0; i < n; i++ {
		predictive[i] = math.Sin(0.7 * float64(i))
		noise[i] = math.Sin(5.3*float64(i) + 2.0)
		broken[i] = math.NaN()
		if i > 0 {
			returns[i] = predictive[i-1]
		}
	}

	return &memProvider{
		table: contracts.FactorTable{
			Dates:   dates,
			Columns: []string{"SMA_5", "NOISE_3", "BROKEN"},
			Values: map[string][]float64{
				"SMA_5":   predictive,
				"NOISE_3": noise,
				"BROKEN":  broken,
			},
		},
		returns: contracts.NewTimeSeries("returns", dates, returns),
	}
}

func newTestOrchestrator(t *testing.T, provider contracts.DataProvider) *Orchestrator {
	t.Helper()
	log := logger.NewNop()

	windows, err := ic.WindowConfigFor(ic.StrategyShortTerm)
	require.NoError(t, err)
	icEngine := ic.NewEngine(log, classifier.New(log), windows)

	correlationEngine, err := correlation.NewEngine(log, 0.8)
	require.NoError(t, err)

	scorer, err := scoring.NewEngine(log, scoring.DefaultConfig())
	require.NoError(t, err)

	return NewOrchestrator(log, provider, stats.NewAnalyzer(log), icEngine, correlationEngine, scorer)
}

func TestEvaluateOnePredictiveFactor(t *testing.T) {
	o := newTestOrchestrator(t, fixtureProvider(400))

	evaluation, err := o.EvaluateOne(context.Background(), "SMA_5")
	require.NoError(t, err)

	assert.Equal(t, "SMA_5", evaluation.FactorName)
	assert.Equal(t, "technical_short", evaluation.IC.Category)
	assert.InDelta(t, 1.0, evaluation.IC.Headline().Mean, 0.01)

	score := evaluation.Score
	sum := score.IC + score.Stability + score.DataQuality + score.Distribution + score.Consistency
	assert.InDelta(t, sum, score.Total, 1e-12)
	assert.False(t, evaluation.EvaluatedAt.IsZero())
}

func TestEvaluateOneUnknownFactor(t *testing.T) {
	o := newTestOrchestrator(t, fixtureProvider(400))

	_, err := o.EvaluateOne(context.Background(), "GHOST")
	assert.ErrorIs(t, err, contracts.ErrFactorNotFound)
}

func TestEvaluateAllSkipsBrokenFactorsAndFinishes(t *testing.T) {
	o := newTestOrchestrator(t, fixtureProvider(400))

	result, err := o.EvaluateAll(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.RequestedFactors)
	assert.Equal(t, 2, result.EvaluatedFactors)
	assert.Contains(t, result.Skipped, "BROKEN")
	assert.Contains(t, result.Evaluations, "SMA_5")
	assert.Contains(t, result.Evaluations, "NOISE_3")
	assert.Len(t, result.Ranking, 2)
	assert.False(t, result.DataStart.IsZero())
	assert.True(t, result.DataStart.Before(result.DataEnd))
}

func TestEvaluateAllRankingIsMonotonic(t *testing.T) {
	o := newTestOrchestrator(t, fixtureProvider(400))

	result, err := o.EvaluateAll(context.Background(), []string{"SMA_5", "NOISE_3"})
	require.NoError(t, err)
	require.Len(t, result.Ranking, 2)

	for i, row := range result.Ranking {
		assert.Equal(t, i+1, row.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, result.Ranking[i-1].TotalScore, row.TotalScore)
		}
	}
	// The factor that predicts returns outranks pure noise.
	assert.Equal(t, "SMA_5", result.Ranking[0].FactorName)
}

func TestEvaluateAllCorrelationSampling(t *testing.T) {
	n := 260
	dates := tradingDates(n)
	returns := make([]float64, n)
	table := contracts.FactorTable{Dates: dates, Values: map[string][]float64{}}

	for f := 0; f < samplingThreshold+5; f++ {
		name := fmt.Sprintf("ROC_%d", f+1)
		values := make([]float64, n)
		for i := 0; i < n; i++ {
			values[i] = math.Sin((0.05*float64(f) + 0.3) * float64(i))
		}
		table.Columns = append(table.Columns, name)
		table.Values[name] = values
	}
	for i := 1; i < n; i++ {
		returns[i] = table.Values["ROC_1"][i-1]
	}

	provider := &memProvider{table: table, returns: contracts.NewTimeSeries("returns", dates, returns)}
	o := newTestOrchestrator(t, provider)

	result, err := o.EvaluateAll(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, result.Correlation)
	assert.True(t, result.Correlation.Sampled)

	matrix := result.Correlation.Matrices["pearson"]
	assert.LessOrEqual(t, matrix.Size(), samplingTopN)
}

func TestEvaluateAllNoData(t *testing.T) {
	provider := &memProvider{}
	o := newTestOrchestrator(t, provider)

	_, err := o.EvaluateAll(context.Background(), []string{"X"})
	assert.ErrorIs(t, err, contracts.ErrNoData)
}

func TestSummarize(t *testing.T) {
	o := newTestOrchestrator(t, fixtureProvider(400))

	result, err := o.EvaluateAll(context.Background(), nil)
	require.NoError(t, err)

	summary := Summarize(result)
	assert.Equal(t, 3, summary.RequestedFactors)
	assert.Equal(t, 2, summary.EvaluatedFactors)
	assert.InDelta(t, 2.0/3.0, summary.SuccessRate, 1e-9)
	assert.Equal(t, "SMA_5", summary.BestFactor)

	total := 0
	for _, count := range summary.GradeCounts {
		total += count
	}
	assert.Equal(t, 2, total)
}
