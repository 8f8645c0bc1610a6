package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/model"
)

func TestDataQuality(t *testing.T) {
	withExpenses := func(total int, emptyDescriptions int) ProcessedData {
		data := ProcessedData{TotalTransactions: total}
		for i := 0; i < total; i++ {
			desc := "Supermercado"
			if i < emptyDescriptions {
				desc = "  "
			}
			data.Expenses = append(data.Expenses, model.CategorizedTransaction{
				Transaction: model.Transaction{Description: desc, Amount: 1},
			})
		}
		return data
	}

	tests := []struct {
		name string
		want string
		data ProcessedData
	}{
		{name: "nothing", data: ProcessedData{}, want: QualityNoData},
		{name: "few", data: withExpenses(9, 0), want: QualityFewData},
		{name: "limited", data: withExpenses(10, 0), want: QualityLimited},
		{name: "good", data: withExpenses(30, 0), want: QualityGood},
		{name: "many empty descriptions", data: withExpenses(30, 10), want: QualityEmptyDescriptions},
		{name: "some empty descriptions", data: withExpenses(30, 9), want: QualityGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DataQuality(tt.data))
		})
	}
}

func TestCompareMonths(t *testing.T) {
	monthly := model.MonthlyTransactions{
		model.January:  {tx("a", 100), tx("b", 100)},
		model.February: {tx("a", 250), tx("bad", -10)},
	}

	tests := []struct {
		name      string
		direction string
		from, to  model.MonthKey
		diff      float64
		percent   float64
	}{
		{name: "increase", from: model.January, to: model.February, diff: 50, percent: 25, direction: DirectionIncrease},
		{name: "decrease", from: model.February, to: model.January, diff: -50, percent: -20, direction: DirectionDecrease},
		{name: "same month", from: model.January, to: model.January, diff: 0, percent: 0, direction: DirectionStable},
		{name: "from empty month", from: model.March, to: model.January, diff: 200, percent: 0, direction: DirectionIncrease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CompareMonths(monthly, tt.from, tt.to)
			assert.Equal(t, tt.from, c.From.Month)
			assert.InDelta(t, tt.diff, c.Difference, 1e-9)
			assert.InDelta(t, tt.percent, c.PercentChange, 1e-9)
			assert.Equal(t, tt.direction, c.Direction)
		})
	}
}

func TestComputeGeneralStats(t *testing.T) {
	stats := ComputeGeneralStats(model.MonthlyTransactions{
		model.January: {tx("a", 10), tx("b", 0)},
		model.June:    {tx("c", 90), tx("d", 20)},
		"nope":        {tx("e", 1000)},
	})

	assert.Equal(t, 3, stats.TotalTransactions)
	assert.InDelta(t, 120, stats.TotalAmount, 1e-9)
	assert.InDelta(t, 40, stats.AverageTransaction, 1e-9)
	assert.InDelta(t, 90, stats.MaxTransaction, 1e-9)
	assert.InDelta(t, 10, stats.MinTransaction, 1e-9)

	assert.Equal(t, GeneralStats{}, ComputeGeneralStats(nil))
}

func TestReport_Quick(t *testing.T) {
	report := &Report{
		ProcessedData: ProcessedData{TotalExpenses: 500, TotalTransactions: 4, AverageTransaction: 125},
		Patterns: Patterns{TopCategories: []CategorySummary{
			{Name: model.CategoryFood, Total: 400},
		}},
		Recommendations: []Recommendation{{PotentialSaving: 100}, {PotentialSaving: 20}},
		HealthScore:     HealthScore{Score: 72},
	}

	quick := report.Quick()
	require.NotNil(t, quick.TopCategory)
	assert.Equal(t, model.CategoryFood, quick.TopCategory.Name)
	assert.InDelta(t, 120, quick.PotentialSavings, 1e-9)
	assert.Equal(t, 72, quick.HealthScore)
	assert.Equal(t, 4, quick.TotalTransactions)

	assert.Nil(t, (&Report{}).Quick().TopCategory)
}

func TestReferenceForYear(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2022, time.December, 31, 12, 0, 0, 0, time.UTC), ReferenceForYear(2022, now))
	assert.Equal(t, now, ReferenceForYear(2024, now))
	assert.Equal(t, now, ReferenceForYear(2030, now))
}
