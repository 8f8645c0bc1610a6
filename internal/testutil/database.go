// Package testutil provides test helpers shared by command and service
// tests: an isolated in-memory store and a fluent builder for monthly records.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/finsight/internal/service"
	"github.com/Veraticus/finsight/internal/storage"
)

// TestDB is an in-memory store scoped to one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions configures SetupTestDBWithOptions.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Seed           service.Batch
	SkipMigrations bool
}

// SetupTestDB creates a migrated in-memory database that is closed when the
// test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.Seed(testutil.NewBatchBuilder(t, 2024).
//		Expense(model.January, "Continente", 54.3).
//		Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with seed data or a custom
// setup step.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	db := &TestDB{Storage: store, t: t}
	if !opts.Seed.Empty() {
		db.Seed(opts.Seed)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// Seed stores a batch or fails the test.
func (db *TestDB) Seed(batch service.Batch) {
	db.t.Helper()

	ctx := context.Background()
	if len(batch.Expenses) > 0 {
		if _, err := db.Storage.SaveTransactions(ctx, batch.Expenses); err != nil {
			db.t.Fatalf("failed to seed transactions: %v", err)
		}
	}
	if len(batch.Income) > 0 {
		if _, err := db.Storage.SaveIncome(ctx, batch.Income); err != nil {
			db.t.Fatalf("failed to seed income: %v", err)
		}
	}
}
