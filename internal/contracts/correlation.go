package contracts

import "math"

// CorrelationMatrix is a square, symmetric matrix over a factor set.
// The diagonal is 1 for non-degenerate columns; entries involving a
// zero-variance column are NaN (correlation undefined).
type CorrelationMatrix struct {
	Factors []string    `json:"factors"`
	Values  [][]float64 `json:"values"`
	index   map[string]int
}

// NewCorrelationMatrix allocates an n x n matrix for the given factors.
func NewCorrelationMatrix(factors []string) CorrelationMatrix {
	n := len(factors)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}

	index := make(map[string]int, n)
	for i, f := range factors {
		index[f] = i
	}

	return CorrelationMatrix{Factors: factors, Values: values, index: index}
}

// Size returns the number of factors.
func (m CorrelationMatrix) Size() int {
	return len(m.Factors)
}

// Empty reports whether the matrix covers no factors.
func (m CorrelationMatrix) Empty() bool {
	return len(m.Factors) == 0
}

// At returns the correlation at positions (i, j).
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Set stores a correlation symmetrically.
func (m CorrelationMatrix) Set(i, j int, v float64) {
	m.Values[i][j] = v
	m.Values[j][i] = v
}

// Get looks up the correlation between two named factors. The second
// return is false when either factor is not in the matrix.
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, iok := m.indexOf(a)
	j, jok := m.indexOf(b)
	if !iok || !jok {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m CorrelationMatrix) indexOf(name string) (int, bool) {
	if m.index != nil {
		i, ok := m.index[name]
		return i, ok
	}
	for i, f := range m.Factors {
		if f == name {
			return i, true
		}
	}
	return 0, false
}

// CorrelationPair is one high-correlation factor pair.
type CorrelationPair struct {
	FactorA     string  `json:"factor_a"`
	FactorB     string  `json:"factor_b"`
	Correlation float64 `json:"correlation"`
}

// RedundancyGroup is a connected component of the high-correlation
// graph, always of size >= 2, sorted by factor name.
type RedundancyGroup []string

// CorrelationSummary describes the distribution of upper-triangle
// correlations in a matrix.
type CorrelationSummary struct {
	TotalPairs     int                `json:"total_pairs"`
	Mean           float64            `json:"mean_correlation"`
	Std            float64            `json:"std_correlation"`
	Max            float64            `json:"max_correlation"`
	Min            float64            `json:"min_correlation"`
	AbsMean        float64            `json:"abs_mean_correlation"`
	Median         float64            `json:"median_correlation"`
	Q25            float64            `json:"q25_correlation"`
	Q75            float64            `json:"q75_correlation"`
	HighCorrRatios map[string]float64 `json:"high_corr_ratios"` // e.g. ">=0.8" -> ratio
}

// SelectionValidation reports whether a selected factor set stays below
// the correlation threshold, with the violating pairs when it does not.
type SelectionValidation struct {
	Valid          bool              `json:"valid"`
	MaxCorrelation float64           `json:"max_correlation_found"`
	Threshold      float64           `json:"threshold"`
	SelectedCount  int               `json:"selected_count"`
	Violations     []CorrelationPair `json:"violating_pairs,omitempty"`
}

// CorrelationAnalysis bundles the correlation structure of a factor set
// computed with both linear and rank methods.
type CorrelationAnalysis struct {
	Matrices  map[string]CorrelationMatrix  `json:"matrices"`   // by method
	HighPairs map[string][]CorrelationPair  `json:"high_pairs"` // by method
	Groups    map[string][]RedundancyGroup  `json:"groups"`     // by method
	Summaries map[string]CorrelationSummary `json:"summaries"`  // by method
	Sampled   bool                          `json:"sampled"`    // top-N shortcut applied
}
