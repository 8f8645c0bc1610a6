package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/model"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <from-month> <to-month>",
		Short: "Compare spending between two months",
		Long: `Compare the total spending of two months of the same year and print overall
transaction statistics.

Months may be given as jan..dez or as numbers 1..12.

Examples:
  finsight compare jan fev --year 2024
  finsight compare 3 4 --input months.json`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}

	addSourceFlags(cmd)
	cmd.Flags().Bool("json", false, "Print the comparison as JSON")

	return cmd
}

// comparison is the JSON form of the compare command.
type comparison struct {
	Comparison analysis.MonthComparison `json:"comparison"`
	Stats      analysis.GeneralStats    `json:"stats"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	from, err := model.ParseMonthKey(args[0])
	if err != nil {
		return fmt.Errorf("invalid from month: %w", err)
	}
	to, err := model.ParseMonthKey(args[1])
	if err != nil {
		return fmt.Errorf("invalid to month: %w", err)
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	input, _, err := loadSource(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	result := comparison{
		Comparison: analysis.CompareMonths(input.Transactions, from, to),
		Stats:      analysis.ComputeGeneralStats(input.Transactions),
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return printComparison(cmd.OutOrStdout(), result)
}

func printComparison(w io.Writer, result comparison) error {
	c := result.Comparison
	s := result.Stats

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", c.From.Month, analysis.FormatCurrency(c.From.Total))
	fmt.Fprintf(&b, "%s: %s\n", c.To.Month, analysis.FormatCurrency(c.To.Total))
	fmt.Fprintf(&b, "Difference: %s (%+.1f%%, %s)\n\n", analysis.FormatCurrency(c.Difference), c.PercentChange, c.Direction)
	fmt.Fprintf(&b, "Transactions: %d\n", s.TotalTransactions)
	fmt.Fprintf(&b, "Total: %s\n", analysis.FormatCurrency(s.TotalAmount))
	fmt.Fprintf(&b, "Average: %s\n", analysis.FormatCurrency(s.AverageTransaction))
	fmt.Fprintf(&b, "Largest: %s\n", analysis.FormatCurrency(s.MaxTransaction))
	fmt.Fprintf(&b, "Smallest: %s", analysis.FormatCurrency(s.MinTransaction))

	_, err := fmt.Fprintln(w, cli.RenderBox("📊 Month Comparison", b.String()))
	return err
}
