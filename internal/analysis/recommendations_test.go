package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/model"
)

func TestGenerateRecommendations(t *testing.T) {
	data := ProcessedData{
		TotalExpenses: 2000,
		Categories: []CategorySummary{
			{Name: model.CategoryFood, Total: 1000, Percentage: 50, Count: 20},
			{Name: model.CategoryTransport, Total: 400, Percentage: 20, Count: 8},
			{Name: model.CategoryHealth, Total: 200, Percentage: 10, Count: 2},
			{Name: model.CategoryOther, Total: 400, Percentage: 20, Count: 5},
		},
	}

	recs := GenerateRecommendations(data, classification.NewDefaultCategorizer())

	require.Len(t, recs, 3)

	assert.Equal(t, model.CategoryFood, recs[0].Category)
	assert.InDelta(t, 250, recs[0].PotentialSaving, 1e-9)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.InDelta(t, 0.9, recs[0].Confidence, 1e-9)
	assert.Equal(t, "Easy", recs[0].Difficulty)
	assert.NotEmpty(t, recs[0].Tips)

	assert.Equal(t, model.CategoryTransport, recs[1].Category)
	assert.InDelta(t, 140, recs[1].PotentialSaving, 1e-9)
	assert.Equal(t, PriorityMedium, recs[1].Priority)
	assert.InDelta(t, 0.7, recs[1].Confidence, 1e-9)

	assert.Equal(t, model.CategoryOther, recs[2].Category)
	assert.InDelta(t, 40, recs[2].PotentialSaving, 1e-9)
}

func TestGenerateRecommendations_Categorization(t *testing.T) {
	data := ProcessedData{
		TotalExpenses: 1000,
		Categories: []CategorySummary{
			{Name: model.CategoryHousing, Total: 650, Percentage: 65, Count: 1},
			{Name: model.CategoryOther, Total: 350, Percentage: 35, Count: 10},
		},
	}

	recs := GenerateRecommendations(data, classification.NewDefaultCategorizer())

	require.Len(t, recs, 3)
	assert.Equal(t, model.CategoryHousing, recs[0].Category)
	assert.InDelta(t, 97.5, recs[0].PotentialSaving, 1e-9)
	assert.Equal(t, "Hard", recs[0].Difficulty)
	assert.Equal(t, model.CategoryOther, recs[1].Category)
	assert.Equal(t, RecommendationCategorization, recs[2].Type)
	assert.Zero(t, recs[2].PotentialSaving)
	assert.Equal(t, PriorityMedium, recs[2].Priority)
}

func TestGenerateRecommendations_Thresholds(t *testing.T) {
	tests := []struct {
		name     string
		category CategorySummary
		want     int
	}{
		{name: "total at limit", category: CategorySummary{Name: model.CategoryFood, Total: 300, Percentage: 60}, want: 0},
		{name: "share at limit", category: CategorySummary{Name: model.CategoryFood, Total: 900, Percentage: 15}, want: 0},
		{name: "both above", category: CategorySummary{Name: model.CategoryFood, Total: 301, Percentage: 16}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := GenerateRecommendations(ProcessedData{Categories: []CategorySummary{tt.category}},
				classification.NewDefaultCategorizer())
			assert.Len(t, recs, tt.want)
			assert.NotNil(t, recs)
		})
	}
}
