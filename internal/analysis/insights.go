package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/Veraticus/finsight/internal/classification"
)

const (
	volatilityThreshold  = 0.4
	seasonalityThreshold = 30.0
	dominanceHigh        = 40.0
	dominanceMedium      = 25.0
	dominanceActionable  = 30.0
	trendHighChange      = 20.0
)

// GenerateInsights turns patterns and anomalies into observations, highest
// priority first.
func GenerateInsights(
	patterns Patterns,
	anomalies []Anomaly,
	categorizer *classification.Categorizer,
) []Insight {
	insights := []Insight{}

	if len(patterns.TopCategories) > 0 {
		top := patterns.TopCategories[0]
		profile := categorizer.Profile(top.Name)

		priority := PriorityLow
		switch {
		case top.Percentage > dominanceHigh:
			priority = PriorityHigh
		case top.Percentage > dominanceMedium:
			priority = PriorityMedium
		}

		insights = append(insights, Insight{
			Type:        InsightCategoryDominance,
			Title:       fmt.Sprintf("%s %s dominates your spending", profile.Icon, top.Name),
			Description: fmt.Sprintf("Accounts for %.1f%% of the total (%s)", top.Percentage, FormatCurrency(top.Total)),
			Priority:    priority,
			Actionable:  top.Percentage > dominanceActionable,
			Tips:        firstN(profile.Tips, 2),
			Category:    top.Name,
		})
	}

	if trend := patterns.Trend; trend.Direction != TrendInsufficientData &&
		!(trend.Direction == TrendStable && trend.PercentChange == 0) {
		priority := PriorityMedium
		if math.Abs(trend.PercentChange) > trendHighChange {
			priority = PriorityHigh
		}

		insights = append(insights, Insight{
			Type:        InsightTrend,
			Title:       trendTitle(trend.Direction),
			Description: fmt.Sprintf("Change of %+.1f%% over the last months", trend.PercentChange),
			Priority:    priority,
			Actionable:  trend.Direction == TrendIncreasing,
		})
	}

	if patterns.Volatility > volatilityThreshold {
		insights = append(insights, Insight{
			Type:  InsightVolatility,
			Title: "⚡ Highly irregular spending",
			Description: fmt.Sprintf("Spending varies a lot between months (volatility: %.0f%%)",
				patterns.Volatility*100),
			Priority:   PriorityMedium,
			Actionable: true,
			Tips: []string{
				"Set a fixed monthly budget",
				"Identify seasonal expenses and plan ahead",
				"Use the 50/30/20 rule to organize spending",
			},
		})
	}

	if len(anomalies) > 0 {
		high := 0
		for _, a := range anomalies {
			if a.Severity == SeverityHigh {
				high++
			}
		}

		priority := PriorityMedium
		description := "Found expenses far above the average"
		if high > 0 {
			priority = PriorityHigh
			description = fmt.Sprintf("%s, %d critical", description, high)
		}

		insights = append(insights, Insight{
			Type:        InsightAnomalies,
			Title:       fmt.Sprintf("🚨 %d unusual %s detected", len(anomalies), plural(len(anomalies), "expense", "expenses")),
			Description: description,
			Priority:    priority,
			Actionable:  true,
		})
	}

	if s := patterns.Seasonality; s.SeasonalVariation > seasonalityThreshold {
		insights = append(insights, Insight{
			Type:  InsightSeasonality,
			Title: "🌊 Seasonal pattern detected",
			Description: fmt.Sprintf("Spending varies %.0f%% between quarters. Peak: %s",
				s.SeasonalVariation, s.PeakQuarter),
			Priority:   PriorityLow,
			Actionable: true,
			Tips: []string{
				"Plan seasonal expenses in advance",
				"Build a reserve for high-spending periods",
				"Save more during low-spending periods",
			},
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority.Weight() > insights[j].Priority.Weight()
	})

	return insights
}

func trendTitle(direction TrendDirection) string {
	switch direction {
	case TrendIncreasing:
		return "📈 Spending is growing"
	case TrendDecreasing:
		return "📉 Spending is decreasing"
	default:
		return "➡️ Spending is stable"
	}
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return append([]string(nil), values...)
	}
	return append([]string(nil), values[:n]...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
