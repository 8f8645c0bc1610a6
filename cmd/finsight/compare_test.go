package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/model"
)

func TestCompareCommandJSON(t *testing.T) {
	out, err := executeCommand(t, compareCmd(), "jan", "3", "--input", "testdata/months.json", "--json")
	require.NoError(t, err)

	var result comparison
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, model.January, result.Comparison.From.Month)
	assert.Equal(t, model.March, result.Comparison.To.Month)
	assert.InDelta(t, 180.5, result.Comparison.From.Total, 1e-9)
	assert.InDelta(t, 748.1, result.Comparison.To.Total, 1e-9)
	assert.Equal(t, analysis.DirectionIncrease, result.Comparison.Direction)

	assert.Equal(t, 5, result.Stats.TotalTransactions)
	assert.InDelta(t, 650, result.Stats.MaxTransaction, 1e-9)
	assert.InDelta(t, 35.2, result.Stats.MinTransaction, 1e-9)
}

func TestCompareCommandText(t *testing.T) {
	out, err := executeCommand(t, compareCmd(), "mar", "fev", "--input", "testdata/months.json")
	require.NoError(t, err)

	assert.Contains(t, out, "Month Comparison")
	assert.Contains(t, out, "decrease")
	assert.Contains(t, out, "Largest: 650,00 €")
}

func TestCompareCommandInvalidMonth(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad from", args: []string{"janeiro", "fev", "--input", "testdata/months.json"}},
		{name: "bad to", args: []string{"jan", "13", "--input", "testdata/months.json"}},
		{name: "one month", args: []string{"jan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, compareCmd(), tt.args...)
			require.Error(t, err)
		})
	}
}
