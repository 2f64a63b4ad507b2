package ic

import (
	"fmt"
	"math"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/internal/stats"
	"github.com/wonny/factorlab/pkg/logger"
)

// Method selects the correlation statistic.
type Method string

const (
	MethodPearson  Method = "pearson"
	MethodSpearman Method = "spearman"
)

// DefaultMinPeriods is the minimum aligned sample count before any
// horizon shift. The effective requirement for one IC value is
// DefaultMinPeriods + horizon.
const DefaultMinPeriods = 20

// zscoreEpsilon guards standardization against near-zero variance.
const zscoreEpsilon = 1e-8

// FactorClassifier supplies category-appropriate horizons for adaptive
// analysis.
type FactorClassifier interface {
	Classify(factorName string) contracts.FactorCategory
}

// Engine computes information coefficients: the correlation between a
// factor's value today and the return realized over the following
// horizon periods.
type Engine struct {
	classifier    FactorClassifier
	windows       WindowConfig
	minPeriods    int
	compareLegacy bool
	logger        *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinPeriods overrides the minimum aligned sample count.
func WithMinPeriods(n int) Option {
	return func(e *Engine) { e.minPeriods = n }
}

// WithLegacyComparison enables the fixed-horizon comparison diagnostic
// on adaptive analyses.
func WithLegacyComparison(enabled bool) Option {
	return func(e *Engine) { e.compareLegacy = enabled }
}

// NewEngine creates an IC engine. The classifier may be nil, in which
// case adaptive analysis falls back to the legacy fixed horizons.
func NewEngine(log *logger.Logger, cls FactorClassifier, windows WindowConfig, opts ...Option) *Engine {
	e := &Engine{
		classifier: cls,
		windows:    windows,
		minPeriods: DefaultMinPeriods,
		logger:     log.Component("ic"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IC computes a single information coefficient. The factor slice is
// z-score standardized before correlating so factors on different raw
// scales are comparable. Returns NaN with ErrInsufficientData when the
// aligned sample is too short.
func (e *Engine) IC(factor, returns contracts.TimeSeries, horizon int, method Method) (float64, error) {
	if horizon < 1 {
		return math.NaN(), fmt.Errorf("horizon must be positive, got %d", horizon)
	}

	aligned := contracts.Align(factor, returns)
	required := e.minPeriods + horizon
	if aligned.Len() < required {
		e.logger.WithFields(map[string]interface{}{
			"factor":   factor.Name,
			"aligned":  aligned.Len(),
			"required": required,
		}).Warn("Insufficient aligned samples for IC")
		return math.NaN(), fmt.Errorf("aligned samples %d < %d: %w",
			aligned.Len(), required, contracts.ErrInsufficientData)
	}

	n := aligned.Len()
	factorValues := standardize(aligned.Factor[:n-horizon])
	futureReturns := aligned.Returns[horizon:]

	return e.correlate(factorValues, futureReturns, method)
}

// RollingIC slides a fixed window across the aligned series and
// recomputes the IC at each position. The result is indexed by the
// window's right-edge date. Too-short input yields an empty series,
// not an error.
func (e *Engine) RollingIC(factor, returns contracts.TimeSeries, window, horizon int, method Method) (contracts.TimeSeries, error) {
	if window < 2 {
		return contracts.TimeSeries{}, fmt.Errorf("window must be at least 2, got %d", window)
	}
	if horizon < 1 {
		return contracts.TimeSeries{}, fmt.Errorf("horizon must be positive, got %d", horizon)
	}

	name := factor.Name + "_IC"
	aligned := contracts.Align(factor, returns)

	if aligned.Len() < window+horizon {
		e.logger.WithFields(map[string]interface{}{
			"factor":  factor.Name,
			"aligned": aligned.Len(),
			"window":  window,
			"horizon": horizon,
		}).Warn("Insufficient aligned samples for rolling IC")
		return contracts.TimeSeries{Name: name}, nil
	}

	series := contracts.TimeSeries{Name: name}
	for i := window; i <= aligned.Len()-horizon; i++ {
		windowFactor := standardize(aligned.Factor[i-window : i])
		windowReturns := aligned.Returns[i-window+horizon : i+horizon]

		ic, err := e.correlate(windowFactor, windowReturns, method)
		if err != nil {
			return contracts.TimeSeries{}, err
		}
		series.Points = append(series.Points, contracts.Point{
			Date:  aligned.Dates[i],
			Value: ic,
		})
	}

	return series, nil
}

// Statistics summarizes a rolling IC series. NaN entries are ignored;
// an all-NaN or empty series yields ErrNoData.
func (e *Engine) Statistics(icSeries contracts.TimeSeries) (contracts.ICStats, error) {
	clean := icSeries.DropNaN()
	if clean.Empty() {
		return contracts.ICStats{}, contracts.ErrNoData
	}

	values := clean.Values()
	mean := stats.Mean(values)
	std := stats.Std(values)
	if math.IsNaN(std) {
		std = 0
	}

	ir := 0.0
	if std > 0 {
		ir = mean / std
	}

	positive := 0
	absSum := 0.0
	for _, v := range values {
		if v > 0 {
			positive++
		}
		absSum += math.Abs(v)
	}

	return contracts.ICStats{
		Mean:          mean,
		Std:           std,
		IR:            ir,
		PositiveRatio: float64(positive) / float64(len(values)),
		AbsMean:       absSum / float64(len(values)),
		SampleSize:    len(values),
	}, nil
}

// correlate computes the chosen correlation statistic. A degenerate
// (zero variance) pairing maps to 0 rather than NaN so rolling series
// stay dense.
func (e *Engine) correlate(xs, ys []float64, method Method) (float64, error) {
	var r float64
	switch method {
	case MethodPearson:
		r = stats.Pearson(xs, ys)
	case MethodSpearman:
		r = stats.Spearman(xs, ys)
	default:
		return math.NaN(), fmt.Errorf("unsupported correlation method: %s", method)
	}

	if math.IsNaN(r) {
		return 0, nil
	}
	return r, nil
}

// standardize z-scores a slice unless its variance is numerically
// zero, in which case the raw values pass through.
func standardize(xs []float64) []float64 {
	std := stats.Std(xs)
	if math.IsNaN(std) || std <= zscoreEpsilon {
		return xs
	}
	mean := stats.Mean(xs)
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = (x - mean) / std
	}
	return out
}
