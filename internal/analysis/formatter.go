package analysis

import (
	"fmt"
	"strings"
	"time"
)

const (
	scoreBarWidth  = 30
	anomalyDisplay = 3
)

// CLIFormatter renders reports for terminal display.
type CLIFormatter struct {
	styles *Styles
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{
		styles: NewStyles(),
	}
}

// WithWidth returns a formatter whose boxes fit the given terminal width.
func (f *CLIFormatter) WithWidth(width int) *CLIFormatter {
	return &CLIFormatter{styles: f.styles.WithWidth(width)}
}

// FormatSummary creates the full terminal view of a report.
func (f *CLIFormatter) FormatSummary(report *Report) string {
	if report == nil {
		return f.styles.Error.Render("No report available")
	}

	sections := []string{
		f.formatHeader(report),
		f.formatHealth(report.HealthScore),
		f.formatTotals(report),
	}

	if len(report.ProcessedData.Categories) > 0 {
		sections = append(sections, f.formatCategories(report.ProcessedData.Categories))
	}

	sections = append(sections, f.formatForecast(report.Predictions, report.Patterns.Trend))

	if len(report.Alerts) > 0 {
		sections = append(sections, f.formatAlerts(report.Alerts))
	}
	if len(report.Insights) > 0 {
		sections = append(sections, f.formatInsights(report.Insights))
	}
	if len(report.Recommendations) > 0 {
		sections = append(sections, f.formatRecommendations(report.Recommendations))
	}
	if len(report.Anomalies) > 0 {
		sections = append(sections, f.formatAnomalies(report.Anomalies))
	}

	return strings.Join(sections, "\n\n")
}

func (f *CLIFormatter) formatHeader(report *Report) string {
	title := f.styles.Title.Render("📊 Spending Analysis Report")

	reference := f.styles.Subtitle.Render(fmt.Sprintf("Reference month: %s",
		report.Metadata.ReferenceDate.Format("January 2006")))

	generated := f.styles.Subtle.Render(fmt.Sprintf("Generated: %s | Data quality: %s",
		report.Metadata.LastAnalysis.Format(time.RFC3339), report.Metadata.DataQuality))

	return fmt.Sprintf("%s\n%s\n%s", title, reference, generated)
}

func (f *CLIFormatter) formatHealth(health HealthScore) string {
	style := f.styles.ForHealth(health.Score)

	scoreText := style.Render(fmt.Sprintf("💚 Financial Health: %d/100 (%s)", health.Score, health.Status))
	bar := style.Render(f.styles.RenderProgressBar(float64(health.Score)/100, scoreBarWidth))
	lines := []string{scoreText, bar, f.styles.Subtle.Render(health.Message)}

	for _, factor := range health.Factors {
		lines = append(lines, fmt.Sprintf("  %-16s %2.0f/%-2.0f  %s",
			factor.Name, factor.Score, factor.Max, f.styles.Subtle.Render(factor.Description)))
	}
	for _, s := range health.Suggestions {
		lines = append(lines, f.styles.Info.Render("  → ")+s)
	}

	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatTotals(report *Report) string {
	data := report.ProcessedData
	lines := []string{
		fmt.Sprintf("Total spent:        %s", f.styles.Score.Render(FormatCurrency(data.TotalExpenses))),
		fmt.Sprintf("Transactions:       %d", data.TotalTransactions),
		fmt.Sprintf("Average purchase:   %s", FormatCurrency(data.AverageTransaction)),
	}
	if income := report.HealthScore.IncomeTotal; income > 0 {
		lines = append(lines, fmt.Sprintf("Income:             %s", FormatCurrency(income)))
	}
	return f.styles.RenderBox(strings.Join(lines, "\n"), "Overview", f.styles.Box)
}

func (f *CLIFormatter) formatCategories(categories []CategorySummary) string {
	const (
		nameWidth  = 12
		countWidth = 8
		totalWidth = 14
	)

	header := fmt.Sprintf("%-*s %*s %*s  %s", nameWidth, "Category", countWidth, "Count", totalWidth, "Total", "Share")
	rows := []string{
		f.styles.Subtle.Bold(true).Render(header),
		f.styles.Subtle.Render(strings.Repeat("─", len(header)+10)),
	}

	for _, c := range categories {
		rows = append(rows, fmt.Sprintf("%-*s %*d %*s  %5.1f%%",
			nameWidth, c.Name,
			countWidth, c.Count,
			totalWidth, FormatCurrency(c.Total),
			c.Percentage))
	}

	return f.styles.RenderBox(strings.Join(rows, "\n"), "Categories", f.styles.CategoryBox)
}

func (f *CLIFormatter) formatForecast(prediction Prediction, trend Trend) string {
	title := f.styles.Subtitle.Render("🔮 Forecast:")

	if prediction.Method == MethodInsufficientData {
		return title + "\n" + f.styles.Subtle.Render("Not enough months with data to forecast")
	}

	lines := []string{
		fmt.Sprintf("Next month: %s (%s confidence)",
			f.styles.Score.Render(FormatCurrency(prediction.NextMonth)), prediction.Confidence),
		f.styles.Subtle.Render(fmt.Sprintf("Range: %s to %s",
			FormatCurrency(prediction.Range.Min), FormatCurrency(prediction.Range.Max))),
	}
	if trend.Direction != TrendInsufficientData {
		lines = append(lines, fmt.Sprintf("Trend: %s (%+.1f%%)", trend.Direction, trend.PercentChange))
	}

	return title + "\n" + strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatAlerts(alerts []Alert) string {
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		style := f.styles.ForPriority(a.Priority)
		lines = append(lines, style.Render(a.Title)+"\n  "+a.Description)
	}
	return f.styles.RenderBox(strings.Join(lines, "\n"), "Alerts", f.styles.AlertBox)
}

func (f *CLIFormatter) formatInsights(insights []Insight) string {
	lines := make([]string, 0, len(insights))
	for _, in := range insights {
		style := f.styles.ForPriority(in.Priority)
		line := fmt.Sprintf("%s %s\n  %s", f.styles.Info.Render("•"), style.Render(in.Title), in.Description)
		for _, tip := range in.Tips {
			line += "\n  " + f.styles.Subtle.Render("- "+tip)
		}
		lines = append(lines, line)
	}
	return f.styles.RenderBox(strings.Join(lines, "\n"), "💡 Insights", f.styles.InsightBox)
}

func (f *CLIFormatter) formatRecommendations(recs []Recommendation) string {
	title := f.styles.Subtitle.Render("💰 Recommendations:")

	var total float64
	lines := make([]string, 0, len(recs)+1)
	for _, r := range recs {
		total += r.PotentialSaving
		line := fmt.Sprintf("• %s", f.styles.ForPriority(r.Priority).Render(r.Title))
		if r.PotentialSaving > 0 {
			line += fmt.Sprintf(" - save up to %s (%s)", FormatCurrency(r.PotentialSaving), r.Difficulty)
		}
		lines = append(lines, line, f.styles.Subtle.Render("  "+r.Description))
	}
	if total > 0 {
		lines = append(lines, f.styles.Success.Render(fmt.Sprintf("Potential savings: %s", FormatCurrency(total))))
	}

	return title + "\n" + strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatAnomalies(anomalies []Anomaly) string {
	title := f.styles.Subtitle.Render("🚨 Unusual expenses:")

	shown := anomalies
	if len(shown) > anomalyDisplay {
		shown = shown[:anomalyDisplay]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, a := range shown {
		style := f.styles.Medium
		if a.Severity == SeverityHigh {
			style = f.styles.High
		}
		lines = append(lines, fmt.Sprintf("• %s %s %s",
			style.Render(FormatCurrency(a.Amount)),
			a.Description,
			f.styles.Subtle.Render(fmt.Sprintf("(%s, z=%.1f)", a.Month, a.ZScore))))
	}
	if len(anomalies) > anomalyDisplay {
		lines = append(lines, f.styles.Subtle.Render(fmt.Sprintf("... and %d more", len(anomalies)-anomalyDisplay)))
	}

	return title + "\n" + strings.Join(lines, "\n")
}
