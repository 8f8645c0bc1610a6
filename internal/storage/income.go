package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Veraticus/finsight/internal/model"
)

// SaveIncome saves income records and returns how many were new.
func (s *SQLiteStorage) SaveIncome(ctx context.Context, records []model.IncomeRecord) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateIncome(records); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO income (id, hash, year, month, source, amount, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	hashes := newHashSequence()
	inserted := 0
	for i := range records {
		rec := records[i]
		if rec.Hash == "" {
			rec.Hash = hashes.next(rec.GenerateHash())
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}

		result, execErr := stmt.ExecContext(ctx,
			rec.ID, rec.Hash, rec.Year, string(rec.Month), rec.Source, rec.Amount, rec.Date)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert income %s: %w", rec.ID, execErr)
		}
		affected, affErr := result.RowsAffected()
		if affErr != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", affErr)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit income: %w", err)
	}
	return inserted, nil
}

// GetMonthlyIncome returns the stored income of a year grouped by month.
func (s *SQLiteStorage) GetMonthlyIncome(ctx context.Context, year int) (model.MonthlyIncome, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, year, month, source, amount, date
		FROM income
		WHERE year = ?
		ORDER BY rowid
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query income: %w", err)
	}
	defer func() { _ = rows.Close() }()

	monthly := make(model.MonthlyIncome)
	for rows.Next() {
		var rec model.IncomeRecord
		var month string
		if err := rows.Scan(&rec.ID, &rec.Hash, &rec.Year, &month, &rec.Source, &rec.Amount, &rec.Date); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		rec.Month = model.MonthKey(month)
		monthly[rec.Month] = append(monthly[rec.Month], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate income: %w", err)
	}

	return monthly, nil
}
