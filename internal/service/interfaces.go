// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/finsight/internal/model"
)

// Storage defines the contract for our persistence layer. Records are kept
// per year and month so a year can be handed to the analysis engine as-is.
type Storage interface {
	// SaveTransactions stores expenses, skipping duplicates, and returns how
	// many were inserted.
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	// SaveIncome stores income records, skipping duplicates, and returns how
	// many were inserted.
	SaveIncome(ctx context.Context, records []model.IncomeRecord) (int, error)

	GetMonthlyTransactions(ctx context.Context, year int) (model.MonthlyTransactions, error)
	GetMonthlyIncome(ctx context.Context, year int) (model.MonthlyIncome, error)
	GetMonthSummaries(ctx context.Context) ([]MonthSummary, error)
	GetYears(ctx context.Context) ([]int, error)
	DeleteMonth(ctx context.Context, year int, month model.MonthKey) (int64, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// MonthSummary describes the stored expenses of one month.
type MonthSummary struct {
	Month model.MonthKey `json:"month"`
	Year  int            `json:"year"`
	Count int            `json:"count"`
	Total float64        `json:"total"`
}

// Batch is a set of records produced by an importer.
type Batch struct {
	Expenses  []model.Transaction
	Income    []model.IncomeRecord
	Transfers int
}

// Add merges another batch into b.
func (b *Batch) Add(other Batch) {
	b.Expenses = append(b.Expenses, other.Expenses...)
	b.Income = append(b.Income, other.Income...)
	b.Transfers += other.Transfers
}

// Empty reports whether the batch holds no records.
func (b Batch) Empty() bool {
	return len(b.Expenses) == 0 && len(b.Income) == 0
}

// TransactionFetcher fetches records from a remote source for a date range.
type TransactionFetcher interface {
	FetchBatch(ctx context.Context, start, end time.Time) (Batch, error)
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
