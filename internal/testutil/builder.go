package testutil

import (
	"fmt"
	"testing"

	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

// BatchBuilder assembles expenses and income for one year.
type BatchBuilder struct {
	t     *testing.T
	batch service.Batch
	year  int
}

// NewBatchBuilder starts an empty batch for year.
func NewBatchBuilder(t *testing.T, year int) *BatchBuilder {
	t.Helper()
	return &BatchBuilder{t: t, year: year}
}

// Expense adds one expense. The date defaults to the 15th of the month.
func (b *BatchBuilder) Expense(month model.MonthKey, description string, amount float64) *BatchBuilder {
	b.t.Helper()
	b.batch.Expenses = append(b.batch.Expenses, model.Transaction{
		Description: description,
		Amount:      amount,
		Date:        b.date(month),
		Month:       month,
		Year:        b.year,
		Source:      "test",
	})
	return b
}

// Income adds one income record.
func (b *BatchBuilder) Income(month model.MonthKey, source string, amount float64) *BatchBuilder {
	b.t.Helper()
	b.batch.Income = append(b.batch.Income, model.IncomeRecord{
		Source: source,
		Amount: amount,
		Date:   b.date(month),
		Month:  month,
		Year:   b.year,
	})
	return b
}

// EveryMonth adds the same expense to all twelve months.
func (b *BatchBuilder) EveryMonth(description string, amount float64) *BatchBuilder {
	b.t.Helper()
	for _, month := range model.Months {
		b.Expense(month, description, amount)
	}
	return b
}

// Build returns the assembled batch.
func (b *BatchBuilder) Build() service.Batch {
	return service.Batch{
		Expenses: append([]model.Transaction(nil), b.batch.Expenses...),
		Income:   append([]model.IncomeRecord(nil), b.batch.Income...),
	}
}

// Monthly returns the batch grouped by month, the shape the analysis engine
// takes.
func (b *BatchBuilder) Monthly() (model.MonthlyTransactions, model.MonthlyIncome) {
	transactions := make(model.MonthlyTransactions)
	for _, tx := range b.batch.Expenses {
		transactions[tx.Month] = append(transactions[tx.Month], tx)
	}
	income := make(model.MonthlyIncome)
	for _, rec := range b.batch.Income {
		income[rec.Month] = append(income[rec.Month], rec)
	}
	return transactions, income
}

func (b *BatchBuilder) date(month model.MonthKey) string {
	idx := month.Index()
	if idx < 0 {
		b.t.Fatalf("unknown month %q", month)
	}
	return fmt.Sprintf("%04d-%02d-15", b.year, idx+1)
}
