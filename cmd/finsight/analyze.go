package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/service"
)

const dateLayout = "2006-01-02"

// Output formats of the analyze command.
const (
	outputSummary = "summary"
	outputJSON    = "json"
	outputQuick   = "quick"
)

var errNoStoredData = errors.New("no stored data, import transactions first")

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a year of spending",
		Long: `Build the full financial report for one year of stored transactions, or for a
JSON file of monthly transactions.

The report covers category totals, spending trend and seasonality, a forecast
for next month, unusual expenses, insights, savings recommendations, alerts and
a financial health score.

Examples:
  # Analyze the most recent stored year
  finsight analyze

  # Analyze 2024 as it looked at the end of June
  finsight analyze --year 2024 --reference-date 2024-06-30

  # Analyze a JSON file and print the raw report
  finsight analyze --input months.json --output json`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	addSourceFlags(cmd)
	cmd.Flags().String("reference-date", "", "Date treated as today (YYYY-MM-DD)")
	cmd.Flags().StringP("output", "o", outputSummary, "Output format (summary, quick, json)")
	cmd.Flags().Int("width", 80, "Terminal width for the summary view")
	cmd.Flags().Bool("progress", false, "Show analysis progress")

	return cmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Read monthly transactions from a JSON file instead of the database")
	cmd.Flags().IntP("year", "y", 0, "Year to read from the database (default: most recent)")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	referenceStr, _ := cmd.Flags().GetString("reference-date")
	output, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetInt("width")
	showProgress, _ := cmd.Flags().GetBool("progress")

	switch output {
	case outputSummary, outputJSON, outputQuick:
	default:
		return fmt.Errorf("invalid output format %q (use summary, quick or json)", output)
	}

	var reference time.Time
	if referenceStr != "" {
		parsed, err := time.Parse(dateLayout, referenceStr)
		if err != nil {
			return fmt.Errorf("invalid reference date format (use YYYY-MM-DD): %w", err)
		}
		reference = parsed
	}

	input, year, err := loadSource(ctx, cmd)
	if err != nil {
		return err
	}
	if reference.IsZero() && year != 0 {
		reference = analysis.ReferenceForYear(year, time.Now())
	}

	opts := analysis.Options{ReferenceDate: reference}
	if showProgress {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), 100, "Analyzing")
		opts.ProgressFunc = cli.StageReporter(bar)
	}

	report := analysis.NewDefaultEngine().Analyze(input.Transactions, input.Income, opts)
	return renderReport(cmd.OutOrStdout(), report, output, width)
}

// loadSource reads the --input file when given, otherwise one stored year.
// The returned year is zero for file input.
func loadSource(ctx context.Context, cmd *cobra.Command) (analysisInput, int, error) {
	inputPath, _ := cmd.Flags().GetString("input")
	year, _ := cmd.Flags().GetInt("year")

	if inputPath != "" {
		input, err := readInputFile(inputPath)
		return input, 0, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return analysisInput{}, 0, err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return analysisInput{}, 0, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	return loadStoredYear(ctx, store, year)
}

// loadStoredYear reads one year from the store. Year zero selects the most
// recent stored year.
func loadStoredYear(ctx context.Context, store service.Storage, year int) (analysisInput, int, error) {
	if year == 0 {
		years, err := store.GetYears(ctx)
		if err != nil {
			return analysisInput{}, 0, fmt.Errorf("failed to list stored years: %w", err)
		}
		if len(years) == 0 {
			return analysisInput{}, 0, errNoStoredData
		}
		year = years[len(years)-1]
	}

	transactions, err := store.GetMonthlyTransactions(ctx, year)
	if err != nil {
		return analysisInput{}, 0, fmt.Errorf("failed to load transactions: %w", err)
	}
	income, err := store.GetMonthlyIncome(ctx, year)
	if err != nil {
		return analysisInput{}, 0, fmt.Errorf("failed to load income: %w", err)
	}

	return analysisInput{Transactions: transactions, Income: income}, year, nil
}

func renderReport(w io.Writer, report *analysis.Report, output string, width int) error {
	switch output {
	case outputJSON:
		return writeJSON(w, report)
	case outputQuick:
		return writeJSON(w, report.Quick())
	default:
		_, err := fmt.Fprintln(w, analysis.NewCLIFormatter().WithWidth(width).FormatSummary(report))
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
