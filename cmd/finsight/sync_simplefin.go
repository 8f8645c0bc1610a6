package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/simplefin"
)

func syncSimpleFINCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-simplefin",
		Short: "Import transactions from SimpleFIN Bridge",
		Long: `Fetch posted transactions from every account linked to SimpleFIN Bridge and
store them. Pending transactions and transfers between your own accounts are
skipped.

The first run claims the setup token from simplefin.token (or SIMPLEFIN_TOKEN)
and saves the access URL under simplefin.state_dir, so later runs need no token.`,
		Args: cobra.NoArgs,
		RunE: runSyncSimpleFIN,
	}

	cmd.Flags().StringP("start", "s", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringP("end", "e", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntP("days", "d", defaultSyncDays, "Number of days to fetch when start/end are not given")
	cmd.Flags().String("token", "", "SimpleFIN setup token (overrides config)")

	return cmd
}

func runSyncSimpleFIN(cmd *cobra.Command, _ []string) error {
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	days, _ := cmd.Flags().GetInt("days")
	token, _ := cmd.Flags().GetString("token")

	dates, err := parseDateRange(startStr, endStr, days, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if token == "" {
		token = cfg.SimpleFIN.Token
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Sync", "Nothing was saved. Run the command again to retry.")
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context())
	defer stop()

	client, err := simplefin.NewClient(ctx, simplefin.NewAuthStore(cfg.SimpleFIN.StateDir, nil), token)
	if err != nil {
		return fmt.Errorf("failed to create SimpleFIN client: %w", err)
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Syncing transactions from SimpleFIN"))
	slog.Info("Date range", "start", dates.Start.Format(dateLayout), "end", dates.End.Format(dateLayout))

	batch, savedExpenses, savedIncome, err := syncBatch(ctx, client, store, dates)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess("Sync complete!"))
	printBatchSummary(out, batch, savedExpenses, savedIncome)
	return nil
}
