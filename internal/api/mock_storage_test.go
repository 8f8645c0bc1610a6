package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	args := m.Called(ctx, transactions)
	return args.Int(0), args.Error(1)
}

func (m *mockStorage) SaveIncome(ctx context.Context, records []model.IncomeRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

func (m *mockStorage) GetMonthlyTransactions(ctx context.Context, year int) (model.MonthlyTransactions, error) {
	args := m.Called(ctx, year)
	monthly, _ := args.Get(0).(model.MonthlyTransactions)
	return monthly, args.Error(1)
}

func (m *mockStorage) GetMonthlyIncome(ctx context.Context, year int) (model.MonthlyIncome, error) {
	args := m.Called(ctx, year)
	monthly, _ := args.Get(0).(model.MonthlyIncome)
	return monthly, args.Error(1)
}

func (m *mockStorage) GetMonthSummaries(ctx context.Context) ([]service.MonthSummary, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]service.MonthSummary)
	return summaries, args.Error(1)
}

func (m *mockStorage) GetYears(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	years, _ := args.Get(0).([]int)
	return years, args.Error(1)
}

func (m *mockStorage) DeleteMonth(ctx context.Context, year int, month model.MonthKey) (int64, error) {
	args := m.Called(ctx, year, month)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStorage) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStorage) Close() error {
	return m.Called().Error(0)
}

var _ service.Storage = (*mockStorage)(nil)
