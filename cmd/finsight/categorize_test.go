package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
	}{
		{
			name:        "food",
			args:        []string{"Continente", "supermercado"},
			contains:    []string{"Food", "confidence"},
			notContains: []string{"Tips:"},
		},
		{
			name:     "unknown description",
			args:     []string{"xyz123"},
			contains: []string{"Other"},
		},
		{
			name:     "with tips",
			args:     []string{"--tips", "supermercado"},
			contains: []string{"Food", "Tips:", "Cook at home more often"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, categorizeCmd(), tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestCategorizeCommandRequiresDescription(t *testing.T) {
	_, err := executeCommand(t, categorizeCmd())
	require.Error(t, err)
}
