package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

func makeSeries(name string, values []float64) contracts.TimeSeries {
	dates := make([]time.Time, len(values))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range values {
		dates[i] = base.AddDate(0, 0, i)
	}
	return contracts.NewTimeSeries(name, dates, values)
}

func TestAnalyzer_Basic(t *testing.T) {
	a := NewAnalyzer(logger.NewNop())
	series := makeSeries("f", []float64{1, 2, math.NaN(), 4, 5})

	basic, err := a.Basic(series)
	require.NoError(t, err)

	assert.Equal(t, 4, basic.Count)
	assert.InDelta(t, 0.2, basic.MissingRatio, 1e-12)
	assert.InDelta(t, 3.0, basic.Mean, 1e-12)
	assert.InDelta(t, 1.0, basic.Min, 1e-12)
	assert.InDelta(t, 5.0, basic.Max, 1e-12)
	assert.InDelta(t, 3.0, basic.Median, 1e-12)
	assert.InDelta(t, basic.Q75-basic.Q25, basic.IQR, 1e-12)
}

func TestAnalyzer_Basic_Empty(t *testing.T) {
	a := NewAnalyzer(logger.NewNop())
	series := makeSeries("f", []float64{math.NaN(), math.NaN()})

	_, err := a.Basic(series)
	assert.ErrorIs(t, err, contracts.ErrNoData)
}

func TestAnalyzer_Distribution_Outliers(t *testing.T) {
	a := NewAnalyzer(logger.NewNop())
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(i % 5)
	}
	values[49] = 1000 // single extreme point

	dist, err := a.Distribution(makeSeries("f", values))
	require.NoError(t, err)

	assert.Equal(t, 1, dist.OutlierCount)
	assert.InDelta(t, 1.0/50.0, dist.OutlierRatio, 1e-12)
	assert.Greater(t, dist.UpperBound, dist.LowerBound)
	assert.False(t, dist.IsNormalish)
}

func TestAnalyzer_Stability_Insufficient(t *testing.T) {
	a := NewAnalyzer(logger.NewNop())

	st := a.Stability(makeSeries("f", []float64{1, 2, 3}), 60)

	assert.True(t, st.Insufficient)
	assert.Equal(t, 0.0, st.StabilityScore)
	assert.Equal(t, 60, st.Window)
}

func TestAnalyzer_Stability_StableSeries(t *testing.T) {
	a := NewAnalyzer(logger.NewNop())

	// Small oscillation around a constant level: rolling moments barely
	// move, so the score should be near the top of the range.
	values := make([]float64, 300)
	for i := range values {
		values[i] = 10 + 0.1*math.Sin(float64(i))
	}

	st := a.Stability(makeSeries("f", values), 60)

	assert.False(t, st.Insufficient)
	assert.Greater(t, st.StabilityScore, 0.9)
	assert.False(t, st.HasTrend)
	assert.Contains(t, st.Autocorrelation, 5)
	assert.Contains(t, st.Autocorrelation, 60)
}

func TestAnalyzer_Stability_TrendingSeries(t *testing.T) {
	a := NewAnalyzer(logger.NewNop())

	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(i)
	}

	st := a.Stability(makeSeries("f", values), 60)

	assert.True(t, st.HasTrend)
	assert.InDelta(t, 1.0, st.TimeCorrelation, 1e-9)
}
