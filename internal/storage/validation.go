// Package storage provides the data persistence layer for finsight.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/finsight/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidIncome      = errors.New("invalid income record")
)

const (
	minYear = 1900
	maxYear = 9999
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

func validateMonth(month model.MonthKey) error {
	if !month.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return nil
}

// validateTransactions validates a slice of transactions. Non-positive
// amounts are accepted; the analysis engine drops them.
func validateTransactions(transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validatePeriod(txn.Year, txn.Month); err != nil {
			return fmt.Errorf("transaction at index %d: %w: %w", i, ErrInvalidTransaction, err)
		}
		if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
			return fmt.Errorf("transaction at index %d: %w: amount must be finite", i, ErrInvalidTransaction)
		}
	}
	return nil
}

// validateIncome validates a slice of income records.
func validateIncome(records []model.IncomeRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: income", ErrEmptySlice)
	}

	for i, rec := range records {
		if err := validatePeriod(rec.Year, rec.Month); err != nil {
			return fmt.Errorf("income at index %d: %w: %w", i, ErrInvalidIncome, err)
		}
		if math.IsNaN(rec.Amount) || math.IsInf(rec.Amount, 0) {
			return fmt.Errorf("income at index %d: %w: amount must be finite", i, ErrInvalidIncome)
		}
	}
	return nil
}

func validatePeriod(year int, month model.MonthKey) error {
	if err := validateYear(year); err != nil {
		return err
	}
	return validateMonth(month)
}
