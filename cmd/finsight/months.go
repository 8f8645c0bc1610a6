package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

func monthsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "List or delete stored months",
		Long: `List every stored month with its expense count and total, or delete the
expenses and income of one month.

Examples:
  finsight months
  finsight months --delete --year 2024 --month mar`,
		Args: cobra.NoArgs,
		RunE: runMonths,
	}

	cmd.Flags().Bool("delete", false, "Delete the month given by --year and --month")
	cmd.Flags().IntP("year", "y", 0, "Year of the month to delete")
	cmd.Flags().StringP("month", "m", "", "Month to delete (jan..dez or 1..12)")

	return cmd
}

func runMonths(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	del, _ := cmd.Flags().GetBool("delete")
	year, _ := cmd.Flags().GetInt("year")
	monthStr, _ := cmd.Flags().GetString("month")

	var month model.MonthKey
	if del {
		if year == 0 || monthStr == "" {
			return fmt.Errorf("--delete requires --year and --month")
		}
		parsed, err := model.ParseMonthKey(monthStr)
		if err != nil {
			return fmt.Errorf("invalid month: %w", err)
		}
		month = parsed
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

	if del {
		return deleteMonth(ctx, cmd.OutOrStdout(), store, year, month)
	}
	return listMonths(ctx, cmd.OutOrStdout(), store)
}

func listMonths(ctx context.Context, w io.Writer, store service.Storage) error {
	summaries, err := store.GetMonthSummaries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list months: %w", err)
	}

	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatWarning("No stored months"))
		return err
	}

	var b strings.Builder
	currentYear := 0
	for _, s := range summaries {
		if s.Year != currentYear {
			if currentYear != 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%d\n", s.Year)
			currentYear = s.Year
		}
		fmt.Fprintf(&b, "  %-4s %4d transactions  %14s\n", s.Month, s.Count, analysis.FormatCurrency(s.Total))
	}

	_, err = fmt.Fprintln(w, cli.RenderBox("📅 Stored Months", strings.TrimRight(b.String(), "\n")))
	return err
}

func deleteMonth(ctx context.Context, w io.Writer, store service.Storage, year int, month model.MonthKey) error {
	deleted, err := store.DeleteMonth(ctx, year, month)
	if errors.Is(err, common.ErrNotFound) {
		_, err = fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("Nothing stored for %s %d", month, year)))
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete month: %w", err)
	}
	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Deleted %d records from %s %d", deleted, month, year)))
	return err
}
