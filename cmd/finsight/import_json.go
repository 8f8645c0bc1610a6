package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

func importJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-json <file>",
		Short: "Import monthly transactions from a JSON file",
		Long: `Import a JSON file of monthly records into the database under one year.

The file is either a month map of expenses, such as
  {"jan": [{"desc": "Continente", "valor": 54.3}], "fev": [...]}
or an object with "transactions" and "income" month maps.

Records with a non-numeric amount or an unknown month key are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runImportJSON,
	}

	cmd.Flags().IntP("year", "y", time.Now().Year(), "Year the records belong to")

	return cmd
}

func runImportJSON(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	year, _ := cmd.Flags().GetInt("year")

	input, err := readInputFile(args[0])
	if err != nil {
		return err
	}

	batch, skipped := batchFromMonthly(year, input.Transactions, input.Income)
	if err := requireRecords(batch, args[0]); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	savedExpenses, savedIncome, err := saveBatchWithProgress(ctx, cmd.ErrOrStderr(), store, batch)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess("Import complete!"))
	printBatchSummary(out, batch, savedExpenses, savedIncome)
	if skipped > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Skipped %d invalid records", skipped)))
	}
	return nil
}

// saveBatchWithProgress saves the batch one month at a time and advances a
// bar per record. Identical records always share a month, so duplicate
// numbering inside the store is unaffected by the split.
func saveBatchWithProgress(ctx context.Context, w io.Writer, store service.Storage, batch service.Batch) (int, int, error) {
	bar := cli.NewProgressBar(w, len(batch.Expenses)+len(batch.Income), "Saving records")

	expenses := make(map[model.MonthKey][]model.Transaction)
	for _, tx := range batch.Expenses {
		expenses[tx.Month] = append(expenses[tx.Month], tx)
	}
	income := make(map[model.MonthKey][]model.IncomeRecord)
	for _, rec := range batch.Income {
		income[rec.Month] = append(income[rec.Month], rec)
	}

	var savedExpenses, savedIncome int
	for _, month := range model.Months {
		chunk := service.Batch{Expenses: expenses[month], Income: income[month]}
		if chunk.Empty() {
			continue
		}
		e, i, err := saveBatch(ctx, store, chunk)
		savedExpenses += e
		savedIncome += i
		if err != nil {
			return savedExpenses, savedIncome, fmt.Errorf("failed to save %s: %w", month, err)
		}
		if err := bar.Add(len(chunk.Expenses) + len(chunk.Income)); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	return savedExpenses, savedIncome, nil
}

// printBatchSummary prints counts for a batch. Negative saved counts mean
// nothing was written.
func printBatchSummary(w io.Writer, batch service.Batch, savedExpenses, savedIncome int) {
	content := fmt.Sprintf("Expenses: %d\nIncome: %d\nTransfers skipped: %d",
		len(batch.Expenses), len(batch.Income), batch.Transfers)
	if savedExpenses >= 0 && savedIncome >= 0 {
		duplicates := len(batch.Expenses) + len(batch.Income) - savedExpenses - savedIncome
		content += fmt.Sprintf("\nNew records: %d\nAlready stored: %d", savedExpenses+savedIncome, duplicates)
	}
	fmt.Fprintln(w, cli.RenderBox("Import Summary", content))
}
