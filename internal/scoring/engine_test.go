package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(logger.NewNop(), DefaultConfig())
	require.NoError(t, err)
	return eng
}

func icFixture(stats contracts.ICStats) contracts.ICResult {
	return contracts.ICResult{
		FactorName:     "SMA_5",
		Category:       "technical_short",
		Horizons:       []int{1, 3, 5},
		PrimaryHorizon: 1,
		Stats:          map[int]contracts.ICStats{1: stats},
	}
}

func cleanBasic() contracts.BasicStats {
	return contracts.BasicStats{
		Count:        500,
		MissingRatio: 0.0,
		Mean:         1.2,
		Std:          0.4,
		Skewness:     0.3,
		Kurtosis:     0.8,
	}
}

func cleanDistribution() contracts.DistributionStats {
	return contracts.DistributionStats{
		Skewness:     0.3,
		Kurtosis:     0.8,
		OutlierRatio: 0.01,
	}
}

func stableStats(score float64) contracts.StabilityStats {
	return contracts.StabilityStats{StabilityScore: score, Window: 60}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.IC = 0.90
	_, err := NewEngine(logger.NewNop(), cfg)
	assert.Error(t, err)
}

func TestStrengthScoreTiers(t *testing.T) {
	eng := newTestEngine(t)
	tests := []struct {
		absMean float64
		want    float64
	}{
		{0.10, 1.0},
		{0.08, 1.0},
		{0.065, 0.85}, // midpoint of the good tier
		{0.05, 0.7},
		{0.04, 0.55},
		{0.03, 0.4},
		{0.025, 0.3},
		{0.02, 0.2},
		{0.015, 0.15},
		{0.01, 0.1},
		{0.005, 0.05},
		{0.0, 0.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, eng.strengthScore(tt.absMean), 1e-9,
			"absMean=%v", tt.absMean)
	}
}

func TestIRScoreUsesMagnitude(t *testing.T) {
	eng := newTestEngine(t)
	assert.InDelta(t, 1.0, eng.irScore(1.5), 1e-9)
	assert.InDelta(t, 1.0, eng.irScore(-1.2), 1e-9)
	assert.InDelta(t, 0.75, eng.irScore(0.75), 1e-9)
	assert.InDelta(t, 0.25, eng.irScore(-0.25), 1e-9)
	assert.InDelta(t, 0.0, eng.irScore(0.0), 1e-9)
}

func TestWinRateScoreRewardsBothDirections(t *testing.T) {
	eng := newTestEngine(t)
	tests := []struct {
		ratio float64
		want  float64
	}{
		{1.0, 1.0},
		{0.8, 0.75},
		{0.6, 0.5},
		{0.55, 0.25},
		{0.5, 0.0}, // coin-flip direction earns nothing
		{0.45, 0.25},
		{0.4, 0.5},
		{0.2, 0.75},
		{0.0, 1.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, eng.winRateScore(tt.ratio), 1e-9,
			"ratio=%v", tt.ratio)
	}
}

func TestICScoreZeroWhenICUnavailable(t *testing.T) {
	eng := newTestEngine(t)

	// Failed IC computation reports zero mean and zero abs mean.
	score := eng.icScore(icFixture(contracts.ICStats{}))
	assert.Zero(t, score)

	// Missing primary horizon stats behave the same way.
	empty := contracts.ICResult{FactorName: "X", PrimaryHorizon: 5}
	assert.Zero(t, eng.icScore(empty))
}

func TestScoreSubScoresBoundedByWeights(t *testing.T) {
	eng := newTestEngine(t)
	w := eng.Config().Weights

	// A deliberately perfect factor pushes every sub-score to its cap.
	ic := icFixture(contracts.ICStats{
		Mean: 0.12, AbsMean: 0.12, IR: 1.5, PositiveRatio: 1.0, SampleSize: 400,
	})
	score := eng.Score(ic, cleanBasic(), cleanDistribution(), stableStats(0.95))

	assert.LessOrEqual(t, score.IC, w.IC+1e-9)
	assert.LessOrEqual(t, score.Stability, w.Stability+1e-9)
	assert.LessOrEqual(t, score.DataQuality, w.DataQuality+1e-9)
	assert.LessOrEqual(t, score.Distribution, w.Distribution+1e-9)
	assert.LessOrEqual(t, score.Consistency, w.Consistency+1e-9)

	sum := score.IC + score.Stability + score.DataQuality +
		score.Distribution + score.Consistency
	assert.InDelta(t, sum, score.Total, 1e-12)

	assert.InDelta(t, w.IC, score.IC, 1e-9)
	assert.InDelta(t, w.Consistency, score.Consistency, 1e-9)
	assert.Equal(t, contracts.GradeA, score.Grade)
}

func TestScoreDegradesWithWeakInputs(t *testing.T) {
	eng := newTestEngine(t)

	strong := eng.Score(
		icFixture(contracts.ICStats{Mean: 0.09, AbsMean: 0.09, IR: 1.2, PositiveRatio: 0.8, SampleSize: 300}),
		cleanBasic(), cleanDistribution(), stableStats(0.9),
	)

	messyBasic := cleanBasic()
	messyBasic.MissingRatio = 0.25
	messyBasic.Skewness = 6.0
	messyBasic.Kurtosis = 15.0
	messyDist := cleanDistribution()
	messyDist.OutlierRatio = 0.3

	weak := eng.Score(
		icFixture(contracts.ICStats{Mean: 0.005, AbsMean: 0.008, IR: 0.1, PositiveRatio: 0.52, SampleSize: 300}),
		messyBasic, messyDist, stableStats(0.2),
	)

	assert.Greater(t, strong.Total, weak.Total)
	assert.Equal(t, contracts.GradeF, weak.Grade)
}

func TestStabilityScoreBlend(t *testing.T) {
	eng := newTestEngine(t)
	w := eng.Config().Weights.Stability

	// Stable metric plus a reasonable CV caps the sub-score.
	got := eng.stabilityScore(stableStats(1.0), cleanBasic())
	assert.InDelta(t, w, got, 1e-9)

	// Zero mean skips the CV bonus entirely.
	noCV := contracts.BasicStats{Mean: 0.0, Std: 0.5}
	got = eng.stabilityScore(stableStats(0.5), noCV)
	assert.InDelta(t, 0.5*0.7*w, got, 1e-9)
}

func TestQualityScoreTiers(t *testing.T) {
	eng := newTestEngine(t)
	w := eng.Config().Weights.DataQuality

	perfect := eng.qualityScore(cleanBasic(), cleanDistribution())
	assert.InDelta(t, w, perfect, 1e-9)

	messy := cleanBasic()
	messy.MissingRatio = 0.5
	messyDist := cleanDistribution()
	messyDist.OutlierRatio = 0.4
	worst := eng.qualityScore(messy, messyDist)
	assert.Less(t, worst, perfect)
	assert.Positive(t, worst)
}

func TestDistributionScoreJointTiers(t *testing.T) {
	eng := newTestEngine(t)
	w := eng.Config().Weights.Distribution

	assert.InDelta(t, 1.0*w, eng.distributionScore(contracts.BasicStats{Skewness: 0.5, Kurtosis: 1.0}), 1e-9)
	// Excellent skewness cannot rescue poor kurtosis.
	assert.InDelta(t, 0.65*w, eng.distributionScore(contracts.BasicStats{Skewness: 0.5, Kurtosis: 6.0}), 1e-9)
	assert.InDelta(t, 0.10*w, eng.distributionScore(contracts.BasicStats{Skewness: 9.0, Kurtosis: 25.0}), 1e-9)
}

func TestConsistencyScoreTiers(t *testing.T) {
	eng := newTestEngine(t)
	w := eng.Config().Weights.Consistency

	assert.InDelta(t, 1.0*w, eng.consistencyScore(contracts.BasicStats{MissingRatio: 0.05}, stableStats(0.8)), 1e-9)
	assert.InDelta(t, 0.8*w, eng.consistencyScore(contracts.BasicStats{MissingRatio: 0.15}, stableStats(0.6)), 1e-9)
	assert.InDelta(t, 0.6*w, eng.consistencyScore(contracts.BasicStats{MissingRatio: 0.5}, stableStats(0.2)), 1e-9)
}

func TestAssignGradeThresholds(t *testing.T) {
	eng := newTestEngine(t)
	ic := icFixture(contracts.ICStats{Mean: 0.05, AbsMean: 0.05, SampleSize: 200})

	tests := []struct {
		total float64
		want  contracts.Grade
	}{
		{0.90, contracts.GradeA},
		{0.80, contracts.GradeA},
		{0.70, contracts.GradeB},
		{0.50, contracts.GradeC},
		{0.35, contracts.GradeD},
		{0.10, contracts.GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, eng.AssignGrade(tt.total, ic), "total=%v", tt.total)
	}
}

func TestAssignGradeThinSampleGuard(t *testing.T) {
	// Lower the A threshold so an A can coexist with a total under 0.8.
	cfg := DefaultConfig()
	cfg.Grades.GradeA = 0.70
	eng, err := NewEngine(logger.NewNop(), cfg)
	require.NoError(t, err)

	thin := icFixture(contracts.ICStats{Mean: 0.05, AbsMean: 0.05, SampleSize: 5})
	assert.Equal(t, contracts.GradeB, eng.AssignGrade(0.75, thin))

	// A very high total keeps the A even on a thin sample.
	assert.Equal(t, contracts.GradeA, eng.AssignGrade(0.85, thin))

	// A wide sample keeps the A regardless.
	wide := icFixture(contracts.ICStats{Mean: 0.05, AbsMean: 0.05, SampleSize: 200})
	assert.Equal(t, contracts.GradeA, eng.AssignGrade(0.75, wide))
}

func TestDetailFor(t *testing.T) {
	assert.Equal(t, "high", DetailFor(contracts.GradeA).Confidence)
	assert.Equal(t, "not recommended", DetailFor(contracts.GradeF).Usage)
	assert.Equal(t, DetailFor(contracts.GradeF), DetailFor(contracts.Grade("?")))
}
