package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

// SaveTransactions saves multiple transactions to the database and returns
// how many were new. Records whose hash is already stored are skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, year, month, description, amount, date, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	hashes := newHashSequence()
	inserted := 0
	for i := range transactions {
		txn := transactions[i]
		if txn.Hash == "" {
			txn.Hash = hashes.next(txn.GenerateHash())
		}
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}

		result, execErr := stmt.ExecContext(ctx,
			txn.ID, txn.Hash, txn.Year, string(txn.Month),
			txn.Description, txn.Amount, txn.Date, txn.Source,
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, execErr)
		}
		affected, affErr := result.RowsAffected()
		if affErr != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", affErr)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transactions: %w", err)
	}

	slog.Debug("Saved transactions", "received", len(transactions), "inserted", inserted)
	return inserted, nil
}

// GetMonthlyTransactions returns the stored expenses of a year grouped by month.
// Months without records are absent from the result.
func (s *SQLiteStorage) GetMonthlyTransactions(ctx context.Context, year int) (model.MonthlyTransactions, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, year, month, description, amount, date, source
		FROM transactions
		WHERE year = ?
		ORDER BY rowid
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	monthly := make(model.MonthlyTransactions)
	for rows.Next() {
		var txn model.Transaction
		var month string
		if err := rows.Scan(&txn.ID, &txn.Hash, &txn.Year, &month,
			&txn.Description, &txn.Amount, &txn.Date, &txn.Source); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Month = model.MonthKey(month)
		monthly[txn.Month] = append(monthly[txn.Month], txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return monthly, nil
}

// GetMonthSummaries returns per-month expense totals for every stored month,
// ordered by year and calendar month.
func (s *SQLiteStorage) GetMonthSummaries(ctx context.Context) ([]service.MonthSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month, COUNT(*), COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0)
		FROM transactions
		GROUP BY year, month
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query month summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []service.MonthSummary
	for rows.Next() {
		var summary service.MonthSummary
		var month string
		if err := rows.Scan(&summary.Year, &month, &summary.Count, &summary.Total); err != nil {
			return nil, fmt.Errorf("failed to scan month summary: %w", err)
		}
		summary.Month = model.MonthKey(month)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate month summaries: %w", err)
	}

	sortSummaries(summaries)
	return summaries, nil
}

// GetYears returns the distinct years with stored expenses or income, ascending.
func (s *SQLiteStorage) GetYears(ctx context.Context) ([]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT year FROM transactions
		UNION
		SELECT year FROM income
		ORDER BY year
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate years: %w", err)
	}

	return years, nil
}

// DeleteMonth removes the expenses and income of one month and returns the
// number of deleted rows. A month with no records yields common.ErrNotFound.
func (s *SQLiteStorage) DeleteMonth(ctx context.Context, year int, month model.MonthKey) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validatePeriod(year, month); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var deleted int64
	for _, table := range []string{"transactions", "income"} {
		result, execErr := tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE year = ? AND month = ?", year, string(month))
		if execErr != nil {
			return 0, fmt.Errorf("failed to delete from %s: %w", table, execErr)
		}
		affected, affErr := result.RowsAffected()
		if affErr != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", affErr)
		}
		deleted += affected
	}
	if deleted == 0 {
		return 0, fmt.Errorf("%w: no records for %s %d", common.ErrNotFound, month, year)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return deleted, nil
}

// hashSequence numbers repeated content hashes within one batch so identical
// records in the same month are all kept, while re-importing the same batch
// stays idempotent.
type hashSequence map[string]int

func newHashSequence() hashSequence {
	return make(hashSequence)
}

func (h hashSequence) next(hash string) string {
	n := h[hash]
	h[hash] = n + 1
	if n == 0 {
		return hash
	}
	return fmt.Sprintf("%s-%d", hash, n)
}

func sortSummaries(summaries []service.MonthSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Year != summaries[j].Year {
			return summaries[i].Year < summaries[j].Year
		}
		return summaries[i].Month.Index() < summaries[j].Month.Index()
	})
}

var _ service.Storage = (*SQLiteStorage)(nil)
