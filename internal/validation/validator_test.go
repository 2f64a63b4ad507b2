package validation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/internal/ic"
	"github.com/wonny/factorlab/pkg/logger"
)

func newTestValidator(t *testing.T, opts ...Option) *Validator {
	t.Helper()
	windows, err := ic.WindowConfigFor(ic.StrategyShortTerm)
	require.NoError(t, err)
	engine := ic.NewEngine(logger.NewNop(), nil, windows)
	return NewValidator(logger.NewNop(), engine, opts...)
}

func seriesDates(n int) []time.Time {
	dates := make([]time.Time, n)
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	return dates
}

// persistentFactor predicts next-day returns across the whole sample.
func persistentFactor(n int) (factor, returns contracts.TimeSeries) {
	dates := seriesDates(n)
	factorValues := make([]float64, n)
	returnValues := make([]float64, n)
	for i := 0; i < n; i++ {
		factorValues[i] = math.Sin(float64(i) * 0.7)
	}
	for i := 1; i < n; i++ {
		returnValues[i] = factorValues[i-1]
	}

	return contracts.NewTimeSeries("PERSISTENT", dates, factorValues),
		contracts.NewTimeSeries("returns", dates, returnValues)
}

// decayingFactor predicts returns in the first part of the sample and
// degenerates to noise afterwards.
func decayingFactor(n, decayAt int) (factor, returns contracts.TimeSeries) {
	dates := seriesDates(n)
	factorValues := make([]float64, n)
	returnValues := make([]float64, n)
	for i := 0; i < n; i++ {
		factorValues[i] = math.Sin(float64(i) * 0.7)
	}
	for i := 1; i < n; i++ {
		if i < decayAt {
			returnValues[i] = factorValues[i-1]
		} else {
			returnValues[i] = math.Sin(float64(i)*5.3 + 1.0)
		}
	}

	return contracts.NewTimeSeries("DECAYING", dates, factorValues),
		contracts.NewTimeSeries("returns", dates, returnValues)
}

func TestTrainTestSplit_Positional(t *testing.T) {
	v := newTestValidator(t, WithMinTrainPeriods(100))
	factor, returns := persistentFactor(300)
	aligned := contracts.Align(factor, returns)

	train, test, err := v.TrainTestSplit(aligned, 0.3)
	require.NoError(t, err)

	assert.Equal(t, 210, train.Len())
	assert.Equal(t, 90, test.Len())
	// Time order preserved: all training dates precede all test dates.
	assert.True(t, train.Dates[train.Len()-1].Before(test.Dates[0]))
	assert.Equal(t, aligned.Len(), train.Len()+test.Len())
}

func TestTrainTestSplit_MinimumTrainLength(t *testing.T) {
	v := newTestValidator(t)
	factor, returns := persistentFactor(300)
	aligned := contracts.Align(factor, returns)

	_, _, err := v.TrainTestSplit(aligned, 0.3)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestValidateSimple_PersistentFactorIsRobust(t *testing.T) {
	v := newTestValidator(t)
	factor, returns := persistentFactor(600)

	result, err := v.ValidateSimple(factor, returns, []int{1, 5, 10})
	require.NoError(t, err)

	assert.Equal(t, contracts.ValidationSimpleSplit, result.Mode)
	assert.True(t, result.Robust)
	assert.Greater(t, result.RobustnessScore, 0.7)
	assert.Equal(t, contracts.DegradationMild, result.Summary.Severity)
	assert.InDelta(t, 1.0, result.Summary.AvgSignConsistency, 1e-12)

	// Partitions cover the aligned sample back to back.
	assert.Equal(t, 600, result.TrainPeriod.Length+result.TestPeriod.Length)
	assert.True(t, result.TrainPeriod.End.Before(result.TestPeriod.Start))
}

func TestValidateSimple_DecayingFactorIsNotRobust(t *testing.T) {
	v := newTestValidator(t)
	// Predictive power dies exactly at the train/test boundary.
	factor, returns := decayingFactor(600, 420)

	result, err := v.ValidateSimple(factor, returns, []int{1, 5, 10})
	require.NoError(t, err)

	assert.False(t, result.Robust)
	assert.Less(t, result.RobustnessScore, 0.35)
	assert.Equal(t, contracts.DegradationSevere, result.Summary.Severity)
	assert.Greater(t, result.Summary.AvgAbsDegradation, 0.5)
}

func TestValidateSimple_InsufficientData(t *testing.T) {
	v := newTestValidator(t)
	factor, returns := persistentFactor(200)

	_, err := v.ValidateSimple(factor, returns, nil)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestValidateSimple_DegradationPerHorizon(t *testing.T) {
	v := newTestValidator(t)
	factor, returns := persistentFactor(600)

	result, err := v.ValidateSimple(factor, returns, []int{1})
	require.NoError(t, err)

	deg, ok := result.Degradation[1]
	require.True(t, ok)
	assert.InDelta(t, 1.0, deg.InSampleIC, 1e-6)
	assert.InDelta(t, 1.0, deg.OutSampleIC, 1e-6)
	assert.InDelta(t, 0.0, deg.AbsDegradation, 1e-6)
	assert.Equal(t, 1.0, deg.SignConsistency)
}

func TestWalkForward_PerfectFactorScoresAtStrictCeiling(t *testing.T) {
	v := newTestValidator(t)
	factor, returns := persistentFactor(600)

	result, err := v.WalkForward(factor, returns, 252, 21, []int{1})
	require.NoError(t, err)

	assert.Equal(t, contracts.ValidationWalkForward, result.Mode)
	assert.Equal(t, 252, result.WindowSize)
	assert.Equal(t, 21, result.StepSize)
	assert.Greater(t, result.WindowCount, 10)

	// The 20% walk-forward haircut caps even a perfect factor at 0.8,
	// which does not clear the strict robust bar.
	assert.InDelta(t, 0.8, result.RobustnessScore, 1e-6)
	assert.False(t, result.Robust)
}

func TestWalkForward_AveragesAcrossWindows(t *testing.T) {
	v := newTestValidator(t)
	factor, returns := persistentFactor(600)

	result, err := v.WalkForward(factor, returns, 252, 21, []int{1})
	require.NoError(t, err)

	in := result.InSample[1]
	out := result.OutSample[1]
	assert.InDelta(t, 1.0, in.Pearson, 1e-6)
	assert.InDelta(t, 1.0, out.Pearson, 1e-6)
	assert.Equal(t, result.WindowCount, in.RollingStats.SampleSize)
}

func TestWalkForward_InsufficientData(t *testing.T) {
	v := newTestValidator(t)
	factor, returns := persistentFactor(100)

	_, err := v.WalkForward(factor, returns, 252, 21, nil)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestBatchValidate_SkipsFailures(t *testing.T) {
	v := newTestValidator(t)

	n := 600
	factor, returns := persistentFactor(n)
	short := make([]float64, n)
	for i := range short {
		if i >= 100 {
			short[i] = math.NaN()
		} else {
			short[i] = float64(i)
		}
	}

	table := contracts.FactorTable{
		Dates:   factor.Dates(),
		Columns: []string{"PERSISTENT", "SHORT"},
		Values: map[string][]float64{
			"PERSISTENT": factor.Values(),
			"SHORT":      short,
		},
	}

	results := v.BatchValidate(table, returns, contracts.ValidationSimpleSplit, []int{1})

	require.Len(t, results, 1)
	assert.Contains(t, results, "PERSISTENT")
}
