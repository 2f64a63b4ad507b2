package validation

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/internal/ic"
	"github.com/wonny/factorlab/internal/stats"
	"github.com/wonny/factorlab/pkg/logger"
)

// Defaults. One trading year of training data, a 30% holdout, and a
// monthly walk-forward step.
const (
	DefaultMinTrainPeriods = 252
	DefaultTestRatio       = 0.3
	DefaultWindowSize      = 252
	DefaultStepSize        = 21

	// rollingWindow is the window for partition rolling-IC statistics.
	rollingWindow = 60

	// minTestSamples is the extra length required beyond the training
	// minimum so the holdout is meaningful.
	minTestSamples = 50

	// negligibleIC marks an in-sample IC too small to measure decay
	// against; such horizons count as fully degraded.
	negligibleIC = 1e-6
)

// defaultHorizons are the horizons validated when the caller passes
// none.
var defaultHorizons = []int{1, 5, 10}

// ICSource is the slice of the IC engine the validator depends on.
type ICSource interface {
	IC(factor, returns contracts.TimeSeries, horizon int, method ic.Method) (float64, error)
	RollingIC(factor, returns contracts.TimeSeries, window, horizon int, method ic.Method) (contracts.TimeSeries, error)
	Statistics(icSeries contracts.TimeSeries) (contracts.ICStats, error)
}

// Validator measures how much of a factor's predictive power survives
// out of sample, via a single time-ordered split or a walk-forward
// schedule.
type Validator struct {
	ics             ICSource
	minTrainPeriods int
	testRatio       float64
	logger          *logger.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithMinTrainPeriods overrides the minimum training length.
func WithMinTrainPeriods(n int) Option {
	return func(v *Validator) { v.minTrainPeriods = n }
}

// WithTestRatio overrides the holdout fraction.
func WithTestRatio(ratio float64) Option {
	return func(v *Validator) { v.testRatio = ratio }
}

// NewValidator creates a cross validator backed by the given IC source.
func NewValidator(log *logger.Logger, ics ICSource, opts ...Option) *Validator {
	v := &Validator{
		ics:             ics,
		minTrainPeriods: DefaultMinTrainPeriods,
		testRatio:       DefaultTestRatio,
		logger:          log.Component("validation"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// TrainTestSplit partitions an aligned series purely by position: time
// order is preserved, nothing is shuffled. The training partition must
// meet the minimum length.
func (v *Validator) TrainTestSplit(aligned contracts.AlignedPair, testRatio float64) (train, test contracts.AlignedPair, err error) {
	if testRatio <= 0 {
		testRatio = v.testRatio
	}

	splitPoint := int(float64(aligned.Len()) * (1 - testRatio))
	if splitPoint < v.minTrainPeriods {
		return contracts.AlignedPair{}, contracts.AlignedPair{},
			fmt.Errorf("train partition %d below minimum %d: %w",
				splitPoint, v.minTrainPeriods, contracts.ErrInsufficientData)
	}

	return aligned.Slice(0, splitPoint), aligned.Slice(splitPoint, aligned.Len()), nil
}

// ValidateSimple splits once and compares in-sample against
// out-of-sample IC statistics per horizon.
func (v *Validator) ValidateSimple(factor, returns contracts.TimeSeries, horizons []int) (contracts.ValidationResult, error) {
	if len(horizons) == 0 {
		horizons = defaultHorizons
	}

	aligned := contracts.Align(factor, returns)
	if aligned.Len() < v.minTrainPeriods+minTestSamples {
		return contracts.ValidationResult{},
			fmt.Errorf("aligned samples %d below %d: %w",
				aligned.Len(), v.minTrainPeriods+minTestSamples, contracts.ErrInsufficientData)
	}

	train, test, err := v.TrainTestSplit(aligned, 0)
	if err != nil {
		return contracts.ValidationResult{}, err
	}

	v.logger.WithFields(map[string]interface{}{
		"factor": factor.Name,
		"train":  train.Len(),
		"test":   test.Len(),
	}).Debug("Simple split validation")

	inSample := v.horizonICs(factor.Name, train, horizons)
	outSample := v.horizonICs(factor.Name, test, horizons)

	degradation, summary := v.degradationMetrics(inSample, outSample, horizons)
	score := v.robustnessScore(summary, false)

	return contracts.ValidationResult{
		FactorName:      factor.Name,
		Mode:            contracts.ValidationSimpleSplit,
		InSample:        inSample,
		OutSample:       outSample,
		Degradation:     degradation,
		Summary:         summary,
		RobustnessScore: score,
		Robust:          score > 0.7,
		TrainPeriod:     splitInfo(train),
		TestPeriod:      splitInfo(test),
		ValidatedAt:     time.Now(),
	}, nil
}

// WalkForward slides a fixed training window forward by a fixed step,
// measuring the immediately following test window at each position.
// Per-horizon ICs are averaged across all window positions before
// degradation is computed, so one bad window cannot dominate. The
// robust bar is stricter than the simple split.
func (v *Validator) WalkForward(factor, returns contracts.TimeSeries, windowSize, stepSize int, horizons []int) (contracts.ValidationResult, error) {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if stepSize <= 0 {
		stepSize = DefaultStepSize
	}
	if len(horizons) == 0 {
		horizons = defaultHorizons
	}

	maxHorizon := horizons[0]
	for _, h := range horizons {
		if h > maxHorizon {
			maxHorizon = h
		}
	}

	aligned := contracts.Align(factor, returns)
	if aligned.Len() < windowSize+stepSize+maxHorizon {
		return contracts.ValidationResult{},
			fmt.Errorf("aligned samples %d below %d: %w",
				aligned.Len(), windowSize+stepSize+maxHorizon, contracts.ErrInsufficientData)
	}

	var trainICs, testICs []map[int]contracts.HorizonIC
	windows := 0

	for start := windowSize; start+stepSize+maxHorizon <= aligned.Len(); start += stepSize {
		trainWindow := aligned.Slice(start-windowSize, start)
		testWindow := aligned.Slice(start, start+stepSize)

		trainICs = append(trainICs, v.horizonICs(factor.Name, trainWindow, horizons))
		testICs = append(testICs, v.horizonICs(factor.Name, testWindow, horizons))
		windows++
	}

	v.logger.WithFields(map[string]interface{}{
		"factor":  factor.Name,
		"windows": windows,
	}).Debug("Walk-forward validation")

	inSample := aggregateWindows(trainICs, horizons)
	outSample := aggregateWindows(testICs, horizons)

	degradation, summary := v.degradationMetrics(inSample, outSample, horizons)
	score := v.robustnessScore(summary, true)

	return contracts.ValidationResult{
		FactorName:      factor.Name,
		Mode:            contracts.ValidationWalkForward,
		InSample:        inSample,
		OutSample:       outSample,
		Degradation:     degradation,
		Summary:         summary,
		RobustnessScore: score,
		Robust:          score > 0.8,
		WindowCount:     windows,
		WindowSize:      windowSize,
		StepSize:        stepSize,
		ValidatedAt:     time.Now(),
	}, nil
}

// BatchValidate runs one validation mode over every table column.
// Per-factor failures are logged and skipped.
func (v *Validator) BatchValidate(table contracts.FactorTable, returns contracts.TimeSeries, mode contracts.ValidationMode, horizons []int) map[string]contracts.ValidationResult {
	results := make(map[string]contracts.ValidationResult, len(table.Columns))

	v.logger.WithFields(map[string]interface{}{
		"factors": len(table.Columns),
		"mode":    mode,
	}).Info("Starting batch validation")

	for i, name := range table.Columns {
		series, ok := table.Column(name)
		if !ok {
			continue
		}

		var result contracts.ValidationResult
		var err error
		switch mode {
		case contracts.ValidationWalkForward:
			result, err = v.WalkForward(series, returns, 0, 0, horizons)
		default:
			result, err = v.ValidateSimple(series, returns, horizons)
		}

		if err != nil {
			v.logger.WithError(err).WithFields(map[string]interface{}{
				"factor":   name,
				"progress": i + 1,
				"total":    len(table.Columns),
			}).Error("Factor validation failed, skipping")
			continue
		}
		results[name] = result
	}

	v.logger.WithFields(map[string]interface{}{
		"validated": len(results),
		"total":     len(table.Columns),
	}).Info("Batch validation complete")

	return results
}

// horizonICs computes single and rolling IC per horizon on one data
// partition. Horizons the partition cannot support yield NaN entries
// rather than aborting the validation.
func (v *Validator) horizonICs(name string, partition contracts.AlignedPair, horizons []int) map[int]contracts.HorizonIC {
	factorSeries := contracts.NewTimeSeries(name, partition.Dates, partition.Factor)
	returnSeries := contracts.NewTimeSeries("returns", partition.Dates, partition.Returns)

	out := make(map[int]contracts.HorizonIC, len(horizons))
	for _, horizon := range horizons {
		entry := contracts.HorizonIC{
			Pearson:  math.NaN(),
			Spearman: math.NaN(),
		}

		if pearson, err := v.ics.IC(factorSeries, returnSeries, horizon, ic.MethodPearson); err == nil {
			entry.Pearson = pearson
		}
		if spearman, err := v.ics.IC(factorSeries, returnSeries, horizon, ic.MethodSpearman); err == nil {
			entry.Spearman = spearman
		}

		if rolling, err := v.ics.RollingIC(factorSeries, returnSeries, rollingWindow, horizon, ic.MethodPearson); err == nil {
			if icStats, err := v.ics.Statistics(rolling); err == nil {
				entry.RollingStats = icStats
			}
		}

		out[horizon] = entry
	}
	return out
}

// degradationMetrics compares in-sample against out-of-sample Pearson
// IC per horizon and averages into a summary.
func (v *Validator) degradationMetrics(inSample, outSample map[int]contracts.HorizonIC, horizons []int) (map[int]contracts.HorizonDegradation, contracts.DegradationSummary) {
	degradation := make(map[int]contracts.HorizonDegradation, len(horizons))

	var degSum, signSum float64
	for _, horizon := range horizons {
		in := inSample[horizon].Pearson
		out := outSample[horizon].Pearson

		entry := contracts.HorizonDegradation{
			InSampleIC:  in,
			OutSampleIC: out,
			// Unmeasurable decay counts as total decay.
			AbsDegradation:  1.0,
			SignConsistency: 0.0,
		}

		if !math.IsNaN(in) && !math.IsNaN(out) && math.Abs(in) > negligibleIC {
			entry.AbsDegradation = (math.Abs(in) - math.Abs(out)) / math.Abs(in)
			if in*out > 0 {
				entry.SignConsistency = 1.0
			}
		}

		degradation[horizon] = entry
		degSum += entry.AbsDegradation
		signSum += entry.SignConsistency
	}

	n := float64(len(horizons))
	summary := contracts.DegradationSummary{
		AvgAbsDegradation:  degSum / n,
		AvgSignConsistency: signSum / n,
	}
	summary.Severity = categorizeDegradation(summary.AvgAbsDegradation)

	return degradation, summary
}

// robustnessScore blends degradation magnitude (70%) with sign
// consistency (30%). Walk-forward runs apply an extra 20% haircut
// since they approximate live deployment.
func (v *Validator) robustnessScore(summary contracts.DegradationSummary, strict bool) float64 {
	degradationScore := 0.0
	if summary.AvgAbsDegradation < 0.7 {
		degradationScore = math.Max(0, 1-summary.AvgAbsDegradation/0.7)
	}

	score := degradationScore*0.7 + summary.AvgSignConsistency*0.3
	if strict {
		score *= 0.8
	}

	return math.Min(1.0, math.Max(0.0, score))
}

func categorizeDegradation(avg float64) contracts.DegradationSeverity {
	switch {
	case avg < 0.1:
		return contracts.DegradationMild
	case avg < 0.3:
		return contracts.DegradationModerate
	case avg < 0.5:
		return contracts.DegradationSignificant
	default:
		return contracts.DegradationSevere
	}
}

// aggregateWindows averages each horizon's IC across all window
// positions, skipping NaN windows. A horizon with no valid window
// stays NaN.
func aggregateWindows(windows []map[int]contracts.HorizonIC, horizons []int) map[int]contracts.HorizonIC {
	out := make(map[int]contracts.HorizonIC, len(horizons))

	for _, horizon := range horizons {
		var pearson, spearman []float64
		for _, window := range windows {
			entry, ok := window[horizon]
			if !ok {
				continue
			}
			if !math.IsNaN(entry.Pearson) {
				pearson = append(pearson, entry.Pearson)
			}
			if !math.IsNaN(entry.Spearman) {
				spearman = append(spearman, entry.Spearman)
			}
		}

		aggregated := contracts.HorizonIC{
			Pearson:  math.NaN(),
			Spearman: math.NaN(),
		}
		if len(pearson) > 0 {
			aggregated.Pearson = stats.Mean(pearson)
			aggregated.RollingStats = contracts.ICStats{
				Mean:       aggregated.Pearson,
				SampleSize: len(pearson),
			}
			if len(pearson) > 1 {
				aggregated.RollingStats.Std = stats.Std(pearson)
			}
		}
		if len(spearman) > 0 {
			aggregated.Spearman = stats.Mean(spearman)
		}

		out[horizon] = aggregated
	}

	return out
}

func splitInfo(partition contracts.AlignedPair) contracts.SplitInfo {
	info := contracts.SplitInfo{Length: partition.Len()}
	if partition.Len() > 0 {
		info.Start = partition.Dates[0]
		info.End = partition.Dates[partition.Len()-1]
	}
	return info
}
