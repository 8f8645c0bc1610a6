package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/plaid"
	"github.com/Veraticus/finsight/internal/service"
)

const defaultSyncDays = 30

func syncPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-plaid",
		Short: "Import transactions from Plaid",
		Long: `Fetch transactions from your connected Plaid account and store them.

Outflows are stored as expenses and inflows as income. Transfers between your
own accounts are skipped and already stored transactions are not duplicated.

Plaid credentials are read from plaid.client_id, plaid.secret and
plaid.access_token in the config file, or from PLAID_CLIENT_ID, PLAID_SECRET
and PLAID_ACCESS_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: runSyncPlaid,
	}

	cmd.Flags().StringP("start", "s", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringP("end", "e", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntP("days", "d", defaultSyncDays, "Number of days to fetch when start/end are not given")
	cmd.Flags().Bool("dry-run", false, "Fetch without saving")

	return cmd
}

func runSyncPlaid(cmd *cobra.Command, _ []string) error {
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	days, _ := cmd.Flags().GetInt("days")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	dates, err := parseDateRange(startStr, endStr, days, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := plaid.NewClient(cfg.Plaid)
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Sync", "Nothing was saved. Run the command again to retry.")
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context())
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Syncing transactions from Plaid"))
	slog.Info("Date range", "start", dates.Start.Format(dateLayout), "end", dates.End.Format(dateLayout))

	if dryRun {
		batch, err := client.FetchBatch(ctx, dates.Start, dates.End)
		if err != nil {
			return fmt.Errorf("failed to fetch transactions: %w", err)
		}
		fmt.Fprintln(out, cli.FormatWarning("Dry run mode - not saving to database"))
		printBatchSummary(out, batch, -1, -1)
		return nil
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	batch, savedExpenses, savedIncome, err := syncBatch(ctx, client, store, dates)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess("Sync complete!"))
	printBatchSummary(out, batch, savedExpenses, savedIncome)
	return nil
}

// syncBatch fetches one date range and stores the result.
func syncBatch(
	ctx context.Context,
	fetcher service.TransactionFetcher,
	store service.Storage,
	dates service.DateRange,
) (service.Batch, int, int, error) {
	batch, err := fetcher.FetchBatch(ctx, dates.Start, dates.End)
	if err != nil {
		return service.Batch{}, 0, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	if batch.Empty() {
		return batch, 0, 0, nil
	}

	savedExpenses, savedIncome, err := saveBatch(ctx, store, batch)
	if err != nil {
		return batch, savedExpenses, savedIncome, err
	}
	return batch, savedExpenses, savedIncome, nil
}

// parseDateRange uses explicit dates when given, otherwise the last days
// ending at now.
func parseDateRange(startStr, endStr string, days int, now time.Time) (service.DateRange, error) {
	if days <= 0 {
		days = defaultSyncDays
	}

	end := now
	if endStr != "" {
		parsed, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return service.DateRange{}, fmt.Errorf("invalid end date format (use YYYY-MM-DD): %w", err)
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -days)
	if startStr != "" {
		parsed, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return service.DateRange{}, fmt.Errorf("invalid start date format (use YYYY-MM-DD): %w", err)
		}
		start = parsed
	}

	if start.After(end) {
		return service.DateRange{}, fmt.Errorf("start date %s is after end date %s",
			start.Format(dateLayout), end.Format(dateLayout))
	}

	return service.DateRange{Start: start, End: end}, nil
}
