package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

// Correlation analysis is sampled down to the top ranked factors once
// the evaluated set grows past samplingThreshold. A documented
// approximation that keeps the pairwise pass tractable.
const (
	samplingThreshold = 50
	samplingTopN      = 30
)

// recommendedTarget is the shortlist size the selection advice tops
// up to with B/C factors when too few A/B factors survive.
const recommendedTarget = 10

// DefaultStabilityWindow sizes the rolling stability analysis.
const DefaultStabilityWindow = 60

// StatsAnalyzer supplies the descriptive statistics of a raw series.
type StatsAnalyzer interface {
	Basic(series contracts.TimeSeries) (contracts.BasicStats, error)
	Distribution(series contracts.TimeSeries) (contracts.DistributionStats, error)
	Stability(series contracts.TimeSeries, window int) contracts.StabilityStats
}

// ICAnalyzer runs the adaptive IC analysis.
type ICAnalyzer interface {
	Adaptive(factor, returns contracts.TimeSeries) (contracts.ICResult, error)
}

// CorrelationAnalyzer computes the pairwise correlation structure of
// a factor table.
type CorrelationAnalyzer interface {
	AnalyzeStructure(table contracts.FactorTable) contracts.CorrelationAnalysis
}

// Scorer fuses the analyses of one factor into a composite score.
type Scorer interface {
	Score(ic contracts.ICResult, basic contracts.BasicStats,
		dist contracts.DistributionStats, stability contracts.StabilityStats) contracts.EvaluationScore
}

// Orchestrator drives the full evaluation pipeline. Every collaborator
// is injected; the orchestrator owns sequencing and per-factor error
// recovery, never analysis logic.
type Orchestrator struct {
	provider        contracts.DataProvider
	stats           StatsAnalyzer
	ic              ICAnalyzer
	correlation     CorrelationAnalyzer
	scorer          Scorer
	stabilityWindow int
	logger          *logger.Logger
}

// Option adjusts orchestrator behavior.
type Option func(*Orchestrator)

// WithStabilityWindow overrides the rolling stability window.
func WithStabilityWindow(window int) Option {
	return func(o *Orchestrator) { o.stabilityWindow = window }
}

// NewOrchestrator wires the evaluation pipeline.
func NewOrchestrator(log *logger.Logger, provider contracts.DataProvider,
	statsAnalyzer StatsAnalyzer, icAnalyzer ICAnalyzer,
	correlationAnalyzer CorrelationAnalyzer, scorer Scorer, opts ...Option) *Orchestrator {

	o := &Orchestrator{
		provider:        provider,
		stats:           statsAnalyzer,
		ic:              icAnalyzer,
		correlation:     correlationAnalyzer,
		scorer:          scorer,
		stabilityWindow: DefaultStabilityWindow,
		logger:          log.Component("evaluation"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EvaluateOne runs the full single-factor pipeline: descriptive
// statistics, distribution and stability analysis, adaptive IC and
// the composite score.
func (o *Orchestrator) EvaluateOne(ctx context.Context, factorName string) (contracts.FactorEvaluation, error) {
	factor, err := o.provider.GetFactorSeries(ctx, factorName)
	if err != nil {
		return contracts.FactorEvaluation{}, fmt.Errorf("load factor %s: %w", factorName, err)
	}

	returns, err := o.provider.GetReturnSeries(ctx)
	if err != nil {
		return contracts.FactorEvaluation{}, fmt.Errorf("load returns: %w", err)
	}

	return o.evaluateSeries(factor, returns)
}

func (o *Orchestrator) evaluateSeries(factor, returns contracts.TimeSeries) (contracts.FactorEvaluation, error) {
	name := factor.Name
	if factor.Empty() || returns.Empty() {
		return contracts.FactorEvaluation{}, fmt.Errorf("factor %s: %w", name, contracts.ErrNoData)
	}
	if factor.DropNaN().Empty() {
		return contracts.FactorEvaluation{}, fmt.Errorf("factor %s has no numeric values: %w", name, contracts.ErrNoData)
	}

	basic, err := o.stats.Basic(factor)
	if err != nil {
		return contracts.FactorEvaluation{}, fmt.Errorf("basic statistics for %s: %w", name, err)
	}
	dist, err := o.stats.Distribution(factor)
	if err != nil {
		return contracts.FactorEvaluation{}, fmt.Errorf("distribution analysis for %s: %w", name, err)
	}
	stability := o.stats.Stability(factor, o.stabilityWindow)

	icResult, err := o.ic.Adaptive(factor, returns)
	if err != nil {
		return contracts.FactorEvaluation{}, fmt.Errorf("ic analysis for %s: %w", name, err)
	}

	score := o.scorer.Score(icResult, basic, dist, stability)

	o.logger.WithFields(map[string]interface{}{
		"factor": name,
		"grade":  score.Grade,
		"score":  fmt.Sprintf("%.3f", score.Total),
	}).Info("Factor evaluated")

	return contracts.FactorEvaluation{
		FactorName:   name,
		Basic:        basic,
		Distribution: dist,
		Stability:    stability,
		IC:           icResult,
		Score:        score,
		EvaluatedAt:  time.Now().UTC(),
	}, nil
}

// EvaluateAll evaluates every named factor, then layers ranking,
// correlation structure and selection advice on top. Individual factor
// failures are recorded in Skipped and never abort the batch. A nil
// names slice evaluates every factor the provider knows.
func (o *Orchestrator) EvaluateAll(ctx context.Context, names []string) (contracts.BatchResult, error) {
	if len(names) == 0 {
		listed, err := o.provider.ListFactors(ctx)
		if err != nil {
			return contracts.BatchResult{}, fmt.Errorf("list factors: %w", err)
		}
		names = listed
	}

	table, err := o.provider.GetFactorTable(ctx, names)
	if err != nil {
		return contracts.BatchResult{}, fmt.Errorf("load factor table: %w", err)
	}
	returns, err := o.provider.GetReturnSeries(ctx)
	if err != nil {
		return contracts.BatchResult{}, fmt.Errorf("load returns: %w", err)
	}
	if table.Empty() || returns.Empty() {
		return contracts.BatchResult{}, contracts.ErrNoData
	}

	result := contracts.BatchResult{
		RequestedFactors: len(names),
		Evaluations:      make(map[string]contracts.FactorEvaluation, len(names)),
		Skipped:          make(map[string]string),
		EvaluatedAt:      time.Now().UTC(),
	}
	result.DataStart = table.Dates[0]
	result.DataEnd = table.Dates[len(table.Dates)-1]

	for i, name := range names {
		o.logger.WithFields(map[string]interface{}{
			"factor":   name,
			"progress": fmt.Sprintf("%d/%d", i+1, len(names)),
		}).Debug("Evaluating factor")

		column, ok := table.Column(name)
		if !ok {
			result.Skipped[name] = contracts.ErrFactorNotFound.Error()
			continue
		}
		evaluation, err := o.evaluateSeries(column, returns)
		if err != nil {
			o.logger.WithError(err).WithField("factor", name).Warn("Factor evaluation skipped")
			result.Skipped[name] = err.Error()
			continue
		}
		result.Evaluations[name] = evaluation
	}
	result.EvaluatedFactors = len(result.Evaluations)

	result.Ranking = Rank(result.Evaluations)
	result.Correlation = o.analyzeCorrelation(table, result.Ranking)
	result.Selection = Suggest(result.Ranking, result.Correlation)

	o.logger.WithFields(map[string]interface{}{
		"requested": result.RequestedFactors,
		"evaluated": result.EvaluatedFactors,
		"skipped":   len(result.Skipped),
	}).Info("Batch evaluation finished")

	return result, nil
}

// analyzeCorrelation runs the correlation pass, sampling down to the
// top ranked factors when the evaluated set is large.
func (o *Orchestrator) analyzeCorrelation(table contracts.FactorTable, ranking []contracts.RankedFactor) *contracts.CorrelationAnalysis {
	if len(ranking) < 2 {
		return nil
	}

	sampled := false
	if len(ranking) > samplingThreshold {
		top := make([]string, 0, samplingTopN)
		for _, row := range ranking[:samplingTopN] {
			top = append(top, row.FactorName)
		}
		table = table.Select(top)
		sampled = true
		o.logger.WithFields(map[string]interface{}{
			"factors": len(ranking),
			"sampled": samplingTopN,
		}).Info("Large factor set, correlating top ranked factors only")
	} else {
		evaluated := make([]string, 0, len(ranking))
		for _, row := range ranking {
			evaluated = append(evaluated, row.FactorName)
		}
		table = table.Select(evaluated)
	}

	analysis := o.correlation.AnalyzeStructure(table)
	analysis.Sampled = sampled
	return &analysis
}
