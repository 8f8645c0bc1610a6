package analysis

import (
	"fmt"
	"math"

	"github.com/Veraticus/finsight/internal/model"
)

const (
	healthBaseline = 50.0

	diversificationMax = 20.0
	stabilityMax       = 20.0
	controlMax         = 15.0
	trendMax           = 15.0

	trendNeutralScore = 10.0
)

// Health factor names.
const (
	FactorDiversification = "Diversification"
	FactorStability       = "Stability"
	FactorControl         = "Control"
	FactorTrend           = "Trend"
)

var factorSuggestions = map[string]string{
	FactorDiversification: "Categorize your expenses better to get a clearer picture",
	FactorStability:       "Create a monthly budget to reduce variation",
	FactorControl:         "Review large and unexpected expenses",
	FactorTrend:           "Identify and control spending growth",
}

// ScoreHealth combines diversification, stability, anomaly control and trend
// into a 0-100 score. Each factor is rounded before it is added to the
// baseline. Income is reported alongside the score and does not affect it.
func ScoreHealth(
	data ProcessedData,
	anomalies []Anomaly,
	patterns Patterns,
	income model.MonthlyIncome,
) HealthScore {
	categoryCount := len(data.Categories)

	trendScore := trendNeutralScore
	switch {
	case patterns.Trend.Direction == TrendDecreasing:
		trendScore = trendMax
	case patterns.Trend.Direction == TrendIncreasing && math.Abs(patterns.Trend.PercentChange) > trendHighChange:
		trendScore = 0
	}

	factors := []HealthFactor{
		{
			Name:        FactorDiversification,
			Score:       math.Round(math.Min(diversificationMax, 3*float64(categoryCount))),
			Max:         diversificationMax,
			Description: fmt.Sprintf("%d spending %s", categoryCount, plural(categoryCount, "category", "categories")),
		},
		{
			Name:        FactorStability,
			Score:       math.Round(math.Max(0, stabilityMax-40*patterns.Volatility)),
			Max:         stabilityMax,
			Description: fmt.Sprintf("Volatility: %.0f%%", patterns.Volatility*100),
		},
		{
			Name:        FactorControl,
			Score:       math.Round(math.Max(0, controlMax-3*float64(len(anomalies)))),
			Max:         controlMax,
			Description: fmt.Sprintf("%d unusual %s", len(anomalies), plural(len(anomalies), "expense", "expenses")),
		},
		{
			Name:        FactorTrend,
			Score:       trendScore,
			Max:         trendMax,
			Description: trendDescription(patterns.Trend.Direction),
		},
	}

	total := healthBaseline
	for _, f := range factors {
		total += f.Score
	}
	score := int(clamp(math.Round(total), 0, 100))

	status, message := healthStatus(score)

	return HealthScore{
		Score:       score,
		Status:      status,
		Message:     message,
		Factors:     factors,
		Suggestions: healthSuggestions(score, factors),
		IncomeTotal: income.Total(),
	}
}

func healthStatus(score int) (HealthStatus, string) {
	switch {
	case score >= 80:
		return HealthExcellent, "Your finances are very well organized!"
	case score >= 60:
		return HealthGood, "Good financial control, with room for improvement."
	case score >= 40:
		return HealthFair, "Your financial control needs attention."
	default:
		return HealthCritical, "We recommend reviewing your spending urgently."
	}
}

func healthSuggestions(score int, factors []HealthFactor) []string {
	suggestions := []string{}
	for _, f := range factors {
		if f.Max > 0 && f.Score/f.Max < 0.5 {
			suggestions = append(suggestions, factorSuggestions[f.Name])
		}
	}
	if score < 60 {
		suggestions = append(suggestions,
			"Consider the 50/30/20 rule to organize spending",
			"Set monthly savings goals",
		)
	}
	return suggestions
}

func trendDescription(direction TrendDirection) string {
	switch direction {
	case TrendIncreasing:
		return "Spending growing"
	case TrendDecreasing:
		return "Spending decreasing"
	case TrendInsufficientData:
		return "Not enough history"
	default:
		return "Spending stable"
	}
}
