package correlation

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/internal/stats"
	"github.com/wonny/factorlab/pkg/logger"
)

// Correlation methods.
const (
	MethodPearson  = "pearson"
	MethodSpearman = "spearman"
)

// DefaultThreshold is the conventional boundary between related and
// interchangeable signals.
const DefaultThreshold = 0.8

// minReliableRows is the observation count below which a correlation
// matrix is flagged as low confidence.
const minReliableRows = 30

// Engine analyzes the correlation structure of a factor set: pairwise
// correlation, redundancy clustering and selection suggestions.
type Engine struct {
	threshold float64
	logger    *logger.Logger
}

// NewEngine creates a correlation engine. The threshold must lie in
// [0.5, 1.0]; anything outside is a construction error.
func NewEngine(log *logger.Logger, threshold float64) (*Engine, error) {
	if threshold < 0.5 || threshold > 1.0 {
		return nil, fmt.Errorf("correlation threshold must be in [0.5, 1.0], got %.2f", threshold)
	}
	return &Engine{
		threshold: threshold,
		logger:    log.Component("correlation"),
	}, nil
}

// Threshold returns the configured high-correlation threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Matrix computes the pairwise correlation matrix over the table's
// columns. Rows with any missing value are dropped first. Degenerate
// (zero variance) columns yield NaN against every column including
// themselves.
func (e *Engine) Matrix(table contracts.FactorTable, method string) (contracts.CorrelationMatrix, error) {
	if method != MethodPearson && method != MethodSpearman {
		return contracts.CorrelationMatrix{}, fmt.Errorf("unsupported correlation method: %s", method)
	}

	complete := table.CompleteCases()
	if complete.Empty() {
		e.logger.Warn("No complete rows, correlation matrix unavailable")
		return contracts.CorrelationMatrix{}, contracts.ErrNoData
	}

	if complete.Len() < minReliableRows {
		e.logger.WithField("rows", complete.Len()).
			Warn("Few complete rows, correlation estimates may be unreliable")
	}

	corr := func(xs, ys []float64) float64 { return stats.Pearson(xs, ys) }
	if method == MethodSpearman {
		corr = func(xs, ys []float64) float64 { return stats.Spearman(xs, ys) }
	}

	matrix := contracts.NewCorrelationMatrix(append([]string(nil), complete.Columns...))
	degenerate := make([]bool, len(complete.Columns))
	for i, col := range complete.Columns {
		std := stats.Std(complete.Values[col])
		degenerate[i] = math.IsNaN(std) || std == 0
	}

	for i, colA := range complete.Columns {
		for j := i; j < len(complete.Columns); j++ {
			switch {
			case degenerate[i] || degenerate[j]:
				matrix.Set(i, j, math.NaN())
			case i == j:
				matrix.Set(i, j, 1)
			default:
				matrix.Set(i, j, corr(complete.Values[colA], complete.Values[complete.Columns[j]]))
			}
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"factors": matrix.Size(),
		"rows":    complete.Len(),
		"method":  method,
	}).Debug("Correlation matrix computed")

	return matrix, nil
}

// HighPairs scans the upper triangle for pairs whose absolute
// correlation meets the threshold, sorted by descending magnitude.
// NaN entries are skipped.
func (e *Engine) HighPairs(matrix contracts.CorrelationMatrix, threshold float64) []contracts.CorrelationPair {
	var pairs []contracts.CorrelationPair

	for i := 0; i < matrix.Size(); i++ {
		for j := i + 1; j < matrix.Size(); j++ {
			r := matrix.At(i, j)
			if math.IsNaN(r) {
				continue
			}
			if math.Abs(r) >= threshold {
				pairs = append(pairs, contracts.CorrelationPair{
					FactorA:     matrix.Factors[i],
					FactorB:     matrix.Factors[j],
					Correlation: r,
				})
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		ra, rb := math.Abs(pairs[a].Correlation), math.Abs(pairs[b].Correlation)
		if ra != rb {
			return ra > rb
		}
		if pairs[a].FactorA != pairs[b].FactorA {
			return pairs[a].FactorA < pairs[b].FactorA
		}
		return pairs[a].FactorB < pairs[b].FactorB
	})

	e.logger.WithFields(map[string]interface{}{
		"pairs":     len(pairs),
		"threshold": threshold,
	}).Debug("High-correlation pairs found")

	return pairs
}

// RedundancyGroups clusters factors via connected components of the
// high-correlation graph. Isolated factors are not groups; every
// reported group has at least two members. Groups and their members
// are sorted so output is deterministic.
func (e *Engine) RedundancyGroups(matrix contracts.CorrelationMatrix, threshold float64) []contracts.RedundancyGroup {
	adjacency := make(map[string][]string)
	for _, pair := range e.HighPairs(matrix, threshold) {
		adjacency[pair.FactorA] = append(adjacency[pair.FactorA], pair.FactorB)
		adjacency[pair.FactorB] = append(adjacency[pair.FactorB], pair.FactorA)
	}

	nodes := make([]string, 0, len(adjacency))
	for node := range adjacency {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	visited := make(map[string]bool, len(nodes))
	var groups []contracts.RedundancyGroup

	for _, start := range nodes {
		if visited[start] {
			continue
		}

		component := dfsComponent(start, adjacency, visited)
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		groups = append(groups, contracts.RedundancyGroup(component))
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0] < groups[j][0]
	})

	e.logger.WithField("groups", len(groups)).Debug("Redundancy groups identified")
	return groups
}

func dfsComponent(start string, adjacency map[string][]string, visited map[string]bool) []string {
	var component []string
	stack := []string{start}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[node] {
			continue
		}
		visited[node] = true
		component = append(component, node)

		for _, neighbor := range adjacency[node] {
			if !visited[neighbor] {
				stack = append(stack, neighbor)
			}
		}
	}

	return component
}

// Summary computes distribution statistics of the matrix's upper
// triangle, skipping NaN entries.
func (e *Engine) Summary(matrix contracts.CorrelationMatrix) (contracts.CorrelationSummary, error) {
	var values []float64
	for i := 0; i < matrix.Size(); i++ {
		for j := i + 1; j < matrix.Size(); j++ {
			if r := matrix.At(i, j); !math.IsNaN(r) {
				values = append(values, r)
			}
		}
	}

	if len(values) == 0 {
		return contracts.CorrelationSummary{}, contracts.ErrNoData
	}

	abs := make([]float64, len(values))
	for i, v := range values {
		abs[i] = math.Abs(v)
	}

	ratios := make(map[string]float64, 5)
	for _, threshold := range []float64{0.3, 0.5, 0.7, 0.8, 0.9} {
		count := 0
		for _, a := range abs {
			if a >= threshold {
				count++
			}
		}
		key := fmt.Sprintf(">=%.1f", threshold)
		ratios[key] = float64(count) / float64(len(abs))
	}

	std := stats.Std(values)
	if math.IsNaN(std) {
		std = 0
	}

	return contracts.CorrelationSummary{
		TotalPairs:     len(values),
		Mean:           stats.Mean(values),
		Std:            std,
		Max:            stats.Max(values),
		Min:            stats.Min(values),
		AbsMean:        stats.Mean(abs),
		Median:         stats.Median(values),
		Q25:            stats.Quantile(values, 0.25),
		Q75:            stats.Quantile(values, 0.75),
		HighCorrRatios: ratios,
	}, nil
}

// AnalyzeStructure runs the full correlation analysis with both
// methods: matrices, high pairs, redundancy groups and summaries.
func (e *Engine) AnalyzeStructure(table contracts.FactorTable) contracts.CorrelationAnalysis {
	analysis := contracts.CorrelationAnalysis{
		Matrices:  make(map[string]contracts.CorrelationMatrix),
		HighPairs: make(map[string][]contracts.CorrelationPair),
		Groups:    make(map[string][]contracts.RedundancyGroup),
		Summaries: make(map[string]contracts.CorrelationSummary),
	}

	for _, method := range []string{MethodPearson, MethodSpearman} {
		matrix, err := e.Matrix(table, method)
		if err != nil {
			e.logger.WithError(err).WithField("method", method).
				Warn("Correlation matrix unavailable")
			continue
		}

		analysis.Matrices[method] = matrix
		analysis.HighPairs[method] = e.HighPairs(matrix, e.threshold)
		analysis.Groups[method] = e.RedundancyGroups(matrix, e.threshold)

		if summary, err := e.Summary(matrix); err == nil {
			analysis.Summaries[method] = summary
		}
	}

	return analysis
}
