package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/config"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
	"github.com/Veraticus/finsight/internal/storage"
)

// analysisInput is the JSON document accepted by analyze and import-json.
// A bare month map is read as transactions only.
type analysisInput struct {
	Transactions model.MonthlyTransactions `json:"transactions"`
	Income       model.MonthlyIncome       `json:"income"`
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// initStorage opens the database and runs migrations.
func initStorage(ctx context.Context, cfg config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("could not open database %s (set database.path or --db)", cfg.Database.Path), err)
	}

	if err := store.Migrate(ctx); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

func readInputFile(path string) (analysisInput, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided input file
	if err != nil {
		return analysisInput{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close input file", "error", closeErr)
		}
	}()

	return loadAnalysisInput(f)
}

// loadAnalysisInput decodes either {"transactions": ..., "income": ...} or a
// bare month map such as {"jan": [{"desc": "...", "valor": 10}]}.
func loadAnalysisInput(r io.Reader) (analysisInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return analysisInput{}, fmt.Errorf("failed to read input: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return analysisInput{}, fmt.Errorf("invalid input JSON: %w", err)
	}

	_, hasTransactions := probe["transactions"]
	_, hasIncome := probe["income"]
	if hasTransactions || hasIncome {
		var input analysisInput
		if err := json.Unmarshal(data, &input); err != nil {
			return analysisInput{}, fmt.Errorf("invalid input JSON: %w", err)
		}
		return input, nil
	}

	var monthly model.MonthlyTransactions
	if err := json.Unmarshal(data, &monthly); err != nil {
		return analysisInput{}, fmt.Errorf("invalid input JSON: %w", err)
	}
	return analysisInput{Transactions: monthly}, nil
}

// batchFromMonthly stamps records with year and month from their map key so
// they can be stored. Unknown months and non-finite amounts are skipped.
func batchFromMonthly(year int, transactions model.MonthlyTransactions, income model.MonthlyIncome) (service.Batch, int) {
	var batch service.Batch
	skipped := 0

	for _, month := range model.Months {
		for _, tx := range transactions[month] {
			if !isFinite(tx.Amount) {
				skipped++
				continue
			}
			tx.Month = month
			tx.Year = year
			if tx.Source == "" {
				tx.Source = "json"
			}
			batch.Expenses = append(batch.Expenses, tx)
		}
		for _, rec := range income[month] {
			if !isFinite(rec.Amount) {
				skipped++
				continue
			}
			rec.Month = month
			rec.Year = year
			batch.Income = append(batch.Income, rec)
		}
	}

	for key, records := range transactions {
		if !key.Valid() {
			skipped += len(records)
		}
	}
	for key, records := range income {
		if !key.Valid() {
			skipped += len(records)
		}
	}

	return batch, skipped
}

// saveBatch stores a batch and returns how many expenses and income records
// were new.
func saveBatch(ctx context.Context, store service.Storage, batch service.Batch) (int, int, error) {
	var savedExpenses, savedIncome int
	var err error

	if len(batch.Expenses) > 0 {
		savedExpenses, err = store.SaveTransactions(ctx, batch.Expenses)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to save transactions: %w", err)
		}
	}
	if len(batch.Income) > 0 {
		savedIncome, err = store.SaveIncome(ctx, batch.Income)
		if err != nil {
			return savedExpenses, 0, fmt.Errorf("failed to save income: %w", err)
		}
	}

	return savedExpenses, savedIncome, nil
}

// requireRecords reports a batch with nothing to store as common.ErrEmptyImport.
func requireRecords(batch service.Batch, source string) error {
	if !batch.Empty() {
		return nil
	}
	if batch.Transfers > 0 {
		return fmt.Errorf("%w: %s only contains %d transfers", common.ErrEmptyImport, source, batch.Transfers)
	}
	return fmt.Errorf("%w: no valid records in %s", common.ErrEmptyImport, source)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
