package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/cli"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <description...>",
		Short: "Show the category of a transaction description",
		Long: `Categorize a transaction description with the built-in keyword table and
print the category and confidence.

Examples:
  finsight categorize "Continente supermercado"
  finsight categorize --tips farmácia`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCategorize,
	}

	cmd.Flags().Bool("tips", false, "Also print saving tips for the category")

	return cmd
}

func runCategorize(cmd *cobra.Command, args []string) error {
	showTips, _ := cmd.Flags().GetBool("tips")
	description := strings.Join(args, " ")

	categorizer := classification.NewDefaultCategorizer()
	category, confidence := categorizer.Categorize(description)
	profile := categorizer.Profile(category)

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s %s (confidence %.0f%%)\n", profile.Icon, category, confidence*100); err != nil {
		return err
	}

	if showTips && len(profile.Tips) > 0 {
		if _, err := fmt.Fprintln(out, cli.FormatInfo("Tips:")); err != nil {
			return err
		}
		for _, tip := range profile.Tips {
			if _, err := fmt.Fprintf(out, "  • %s\n", tip); err != nil {
				return err
			}
		}
	}

	return nil
}
