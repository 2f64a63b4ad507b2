package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/contracts"
)

func TestSelectRepresentative_QualityWins(t *testing.T) {
	e := newTestEngine(t, 0.8)
	group := contracts.RedundancyGroup{"A", "B", "C"}

	quality := map[string]float64{"A": 0.3, "B": 0.9, "C": 0.5}
	assert.Equal(t, "B", e.SelectRepresentative(group, quality))
}

func TestSelectRepresentative_NoQualityIsDeterministic(t *testing.T) {
	e := newTestEngine(t, 0.8)

	assert.Equal(t, "A", e.SelectRepresentative(contracts.RedundancyGroup{"C", "A", "B"}, nil))
	assert.Equal(t, "A", e.SelectRepresentative(contracts.RedundancyGroup{"B", "C", "A"}, nil))
}

func TestSelectRepresentative_QualityMissingFallsBack(t *testing.T) {
	e := newTestEngine(t, 0.8)
	group := contracts.RedundancyGroup{"B", "A"}

	// Quality known for neither member: lexicographic fallback.
	assert.Equal(t, "A", e.SelectRepresentative(group, map[string]float64{"Z": 1.0}))
}

func TestSuggestSelection(t *testing.T) {
	e := newTestEngine(t, 0.8)
	matrix, err := e.Matrix(correlatedTable(120), MethodPearson)
	require.NoError(t, err)

	quality := map[string]float64{"A": 0.2, "B": 0.8, "C": 0.4, "D": 0.6}
	selected := e.SuggestSelection(matrix, quality)

	// D is independent, B wins its group.
	assert.Equal(t, []string{"B", "D"}, selected)
}

func TestSuggestSelection_EmptyMatrix(t *testing.T) {
	e := newTestEngine(t, 0.8)

	assert.Nil(t, e.SuggestSelection(contracts.CorrelationMatrix{}, nil))
}

func TestValidateSelection(t *testing.T) {
	e := newTestEngine(t, 0.8)
	matrix, err := e.Matrix(correlatedTable(120), MethodPearson)
	require.NoError(t, err)

	good := e.ValidateSelection([]string{"B", "D"}, matrix)
	assert.True(t, good.Valid)
	assert.Equal(t, 2, good.SelectedCount)
	assert.LessOrEqual(t, good.MaxCorrelation, 0.8)
	assert.Empty(t, good.Violations)

	bad := e.ValidateSelection([]string{"A", "B", "D"}, matrix)
	assert.False(t, bad.Valid)
	assert.NotEmpty(t, bad.Violations)
	assert.Greater(t, bad.MaxCorrelation, 0.8)
}

func TestValidateSelection_MissingFactor(t *testing.T) {
	e := newTestEngine(t, 0.8)
	matrix, err := e.Matrix(correlatedTable(120), MethodPearson)
	require.NoError(t, err)

	result := e.ValidateSelection([]string{"A", "GHOST"}, matrix)
	assert.False(t, result.Valid)
}

func TestSuggestSelection_RoundTripValid(t *testing.T) {
	e := newTestEngine(t, 0.8)
	matrix, err := e.Matrix(correlatedTable(120), MethodPearson)
	require.NoError(t, err)

	selected := e.SuggestSelection(matrix, nil)
	result := e.ValidateSelection(selected, matrix)

	assert.True(t, result.Valid)
}
