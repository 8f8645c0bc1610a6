package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/ofx"
	"github.com/Veraticus/finsight/internal/service"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx <files...>",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import bank or credit card statements in OFX or QFX format.

Debits are stored as expenses and credits as income, in the month of their
posting date. Transfers between your own accounts are skipped. Importing the
same file twice does not create duplicates.

Examples:
  # Import a single statement
  finsight import-ofx ~/Downloads/extrato_jan_2024.ofx

  # Import every statement in a directory
  finsight import-ofx ~/Downloads/*.ofx

  # Preview without saving
  finsight import-ofx --dry-run ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import",
		"Files parsed so far were not saved. Run the command again to import them.")
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context())
	defer stop()

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	batch, err := parseOFXFiles(ctx, ofx.NewParser(nil), files)
	if err != nil {
		return err
	}

	if err := requireRecords(batch, strings.Join(files, ", ")); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if dryRun {
		fmt.Fprintln(out, cli.FormatWarning("Dry run mode - not saving to database"))
		printBatchSummary(out, batch, -1, -1)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	savedExpenses, savedIncome, err := saveBatch(ctx, store, batch)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess("Import complete!"))
	printBatchSummary(out, batch, savedExpenses, savedIncome)
	return nil
}

// expandFiles resolves glob patterns. A pattern without matches is kept when
// it names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseOFXFiles parses every file into one batch. Unreadable files are logged
// and skipped; cancellation stops the whole import.
func parseOFXFiles(ctx context.Context, parser *ofx.Parser, files []string) (service.Batch, error) {
	var batch service.Batch

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return service.Batch{}, fmt.Errorf("import canceled: %w", err)
		}

		f, err := os.Open(path) //nolint:gosec // user-provided statement file
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		fileBatch, err := parser.ParseFile(ctx, f)
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close file", "file", path, "error", closeErr)
		}
		if err != nil {
			if ctx.Err() != nil {
				return service.Batch{}, fmt.Errorf("import canceled: %w", ctx.Err())
			}
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"expenses", len(fileBatch.Expenses),
			"income", len(fileBatch.Income),
			"transfers", fileBatch.Transfers)
		batch.Add(fileBatch)
	}

	return batch, nil
}
