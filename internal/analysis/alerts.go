package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/finsight/internal/model"
)

const (
	overspendingFactor   = 1.3
	predictionFactor     = 1.2
	dominanceAlertShare  = 50.0
	lowFrequencyMaxCount = 3
	highValueMinTotal    = 500.0
)

// GenerateAlerts raises warnings about the reference month, the forecast and
// the category mix, highest priority first.
func GenerateAlerts(
	data ProcessedData,
	patterns Patterns,
	prediction Prediction,
	reference time.Time,
) []Alert {
	alerts := []Alert{}

	average := mean(nonZero(patterns.MonthlyTotals[:]))

	current := patterns.MonthlyTotals[model.MonthFromTime(reference).Index()]
	if average > 0 && current > overspendingFactor*average {
		alerts = append(alerts, Alert{
			Type:  AlertOverspending,
			Title: "⚠️ Spending above average",
			Description: fmt.Sprintf("This month you spent %s, %.0f%% above your average",
				FormatCurrency(current), (current/average-1)*100),
			Priority:   PriorityHigh,
			Actionable: true,
		})
	}

	if average > 0 && prediction.NextMonth > predictionFactor*average {
		alerts = append(alerts, Alert{
			Type:  AlertPredictionWarning,
			Title: "🔮 High spending forecast",
			Description: fmt.Sprintf("Next month is forecast at %s, above your average",
				FormatCurrency(prediction.NextMonth)),
			Priority:   PriorityMedium,
			Actionable: true,
		})
	}

	if len(patterns.TopCategories) > 0 {
		if top := patterns.TopCategories[0]; top.Percentage > dominanceAlertShare {
			alerts = append(alerts, Alert{
				Type:  AlertCategoryDominance,
				Title: "📊 Spending is heavily concentrated",
				Description: fmt.Sprintf("%.0f%% of your spending goes to %s. Consider diversifying",
					top.Percentage, top.Name),
				Priority:   PriorityMedium,
				Category:   top.Name,
				Actionable: true,
			})
		}
	}

	for _, c := range data.Categories {
		if c.Count > lowFrequencyMaxCount || c.Total <= highValueMinTotal {
			continue
		}
		alerts = append(alerts, Alert{
			Type:  AlertHighValueLowFrequency,
			Title: fmt.Sprintf("💰 Concentrated spending on %s", c.Name),
			Description: fmt.Sprintf("Few purchases (%d) with a high average value: %s",
				c.Count, FormatCurrency(c.Total/float64(c.Count))),
			Priority:   PriorityLow,
			Category:   c.Name,
			Actionable: false,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Priority.Weight() > alerts[j].Priority.Weight()
	})

	return alerts
}
