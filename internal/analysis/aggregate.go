package analysis

import (
	"fmt"

	"github.com/Veraticus/finsight/internal/model"
)

// Categorizer assigns a category and confidence to a transaction description.
type Categorizer interface {
	Categorize(description string) (model.Category, float64)
}

// Aggregate categorizes every valid transaction and totals them per month and
// per category. Records with a non-finite or non-positive amount and records
// filed under an unknown month are dropped.
func Aggregate(monthly model.MonthlyTransactions, categorizer Categorizer) ProcessedData {
	data := ProcessedData{
		MonthlyData: make(map[model.MonthKey]MonthlyAggregate),
		Expenses:    []model.CategorizedTransaction{},
		Categories:  []CategorySummary{},
	}

	categoryTotals := make(map[model.Category]*CategorySummary)

	for _, month := range model.Months {
		records, ok := monthly[month]
		if !ok {
			continue
		}

		agg := MonthlyAggregate{CategoryTotals: make(map[model.Category]float64)}
		for i, tx := range records {
			if !tx.Valid() {
				continue
			}

			if tx.ID == "" {
				tx.ID = fmt.Sprintf("%s_%d", month, i)
			}
			tx.Month = month

			category, confidence := categorizer.Categorize(tx.Description)
			if !category.Valid() {
				category = model.CategoryOther
			}
			data.Expenses = append(data.Expenses, model.CategorizedTransaction{
				Transaction: tx,
				Category:    category,
				Confidence:  confidence,
			})

			agg.Total += tx.Amount
			agg.Count++
			agg.CategoryTotals[category] += tx.Amount

			summary, ok := categoryTotals[category]
			if !ok {
				summary = &CategorySummary{Name: category}
				categoryTotals[category] = summary
			}
			summary.Total += tx.Amount
			summary.Count++

			data.TotalExpenses += tx.Amount
			data.TotalTransactions++
		}

		if agg.Count > 0 {
			agg.Average = agg.Total / float64(agg.Count)
		}
		data.MonthlyData[month] = agg
	}

	for _, category := range model.Categories {
		summary, ok := categoryTotals[category]
		if !ok {
			continue
		}
		summary.Percentage = percentOf(summary.Total, data.TotalExpenses)
		data.Categories = append(data.Categories, *summary)
	}

	if data.TotalTransactions > 0 {
		data.AverageTransaction = data.TotalExpenses / float64(data.TotalTransactions)
	}

	return data
}
