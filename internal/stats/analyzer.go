package stats

import (
	"math"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

// DefaultStabilityWindow is the rolling window for stability analysis,
// roughly one quarter of trading days.
const DefaultStabilityWindow = 60

// autocorrLags are the lags probed during stability analysis:
// week, fortnight, month, quarter.
var autocorrLags = []int{5, 10, 20, 60}

// Analyzer computes descriptive statistics of raw factor series.
type Analyzer struct {
	logger *logger.Logger
}

// NewAnalyzer creates a new statistics analyzer
func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{
		logger: log.Component("stats"),
	}
}

// Basic computes descriptive statistics over the non-NaN observations.
// The missing ratio is measured against the raw series length.
func (a *Analyzer) Basic(series contracts.TimeSeries) (contracts.BasicStats, error) {
	clean := series.DropNaN()
	if clean.Empty() {
		return contracts.BasicStats{}, contracts.ErrNoData
	}

	values := clean.Values()
	q25 := Quantile(values, 0.25)
	q75 := Quantile(values, 0.75)

	missing := 0.0
	if series.Len() > 0 {
		missing = float64(series.Len()-clean.Len()) / float64(series.Len())
	}

	return contracts.BasicStats{
		Count:        clean.Len(),
		MissingRatio: missing,
		Mean:         Mean(values),
		Std:          Std(values),
		Min:          Min(values),
		Max:          Max(values),
		Median:       Median(values),
		Skewness:     Skewness(values),
		Kurtosis:     Kurtosis(values),
		Q25:          q25,
		Q75:          q75,
		IQR:          q75 - q25,
	}, nil
}

// Distribution analyzes the shape, outlier profile and variability of
// a factor series. Outliers use the 1.5*IQR fence.
func (a *Analyzer) Distribution(series contracts.TimeSeries) (contracts.DistributionStats, error) {
	clean := series.DropNaN()
	if clean.Empty() {
		return contracts.DistributionStats{}, contracts.ErrNoData
	}

	values := clean.Values()
	mean := Mean(values)
	std := Std(values)

	q25 := Quantile(values, 0.25)
	q75 := Quantile(values, 0.75)
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	outliers := 0
	for _, v := range values {
		if v < lower || v > upper {
			outliers++
		}
	}

	cv := math.Inf(1)
	if mean != 0 {
		cv = std / math.Abs(mean)
	}

	skew := Skewness(values)
	kurt := Kurtosis(values)

	return contracts.DistributionStats{
		Skewness:     skew,
		Kurtosis:     kurt,
		IsNormalish:  math.Abs(skew) < 0.5 && math.Abs(kurt) < 3,
		OutlierCount: outliers,
		OutlierRatio: float64(outliers) / float64(len(values)),
		LowerBound:   lower,
		UpperBound:   upper,
		Range:        Max(values) - Min(values),
		CV:           cv,
	}, nil
}

// Stability measures how stable the rolling mean and std of a series
// are, whether it trends with time, and its autocorrelation profile.
// A series shorter than the window yields a zero score with the
// Insufficient flag set rather than an error.
func (a *Analyzer) Stability(series contracts.TimeSeries, window int) contracts.StabilityStats {
	if window <= 0 {
		window = DefaultStabilityWindow
	}

	clean := series.DropNaN()
	values := clean.Values()

	if len(values) < window {
		a.logger.WithFields(map[string]interface{}{
			"factor":   series.Name,
			"required": window,
			"actual":   len(values),
		}).Debug("Series too short for stability analysis")
		return contracts.StabilityStats{
			Window:       window,
			Insufficient: true,
		}
	}

	rollingMeans, rollingStds := rollingMoments(values, window)

	meanStability := 0.0
	if m := Mean(rollingMeans); m != 0 {
		meanStability = 1 - Std(rollingMeans)/m
	}
	stdStability := 0.0
	if m := Mean(rollingStds); m != 0 {
		stdStability = 1 - Std(rollingStds)/m
	}

	timeIndex := make([]float64, len(values))
	for i := range timeIndex {
		timeIndex[i] = float64(i)
	}
	timeCorr := Pearson(timeIndex, values)

	autocorr := make(map[int]float64, len(autocorrLags))
	for _, lag := range autocorrLags {
		if len(values) > lag {
			ac := Autocorrelation(values, lag)
			if math.IsNaN(ac) {
				ac = 0
			}
			autocorr[lag] = ac
		}
	}

	score := (meanStability + stdStability) / 2
	score = math.Max(0, math.Min(1, score))

	return contracts.StabilityStats{
		StabilityScore:  score,
		MeanStability:   meanStability,
		StdStability:    stdStability,
		TimeCorrelation: timeCorr,
		HasTrend:        math.Abs(timeCorr) > 0.3,
		Autocorrelation: autocorr,
		Window:          window,
	}
}

// rollingMoments returns the rolling mean and sample std over every
// full window of xs.
func rollingMoments(xs []float64, window int) (means, stds []float64) {
	n := len(xs) - window + 1
	means = make([]float64, 0, n)
	stds = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		w := xs[i : i+window]
		means = append(means, Mean(w))
		stds = append(stds, Std(w))
	}
	return means, stds
}
