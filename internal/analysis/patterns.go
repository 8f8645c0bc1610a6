package analysis

import (
	"sort"

	"github.com/Veraticus/finsight/internal/model"
)

const (
	trendWindow         = 3
	trendThreshold      = 10.0
	highConfidenceSpan  = 6
	topCategoriesLimit  = 5
	lowFrequencyCeiling = 5
	midFrequencyCeiling = 15
)

// quarters partitions the calendar into fixed quarters.
var quarters = []Quarter{
	{Name: "Q1 (Jan-Mar)", Months: []model.MonthKey{model.January, model.February, model.March}},
	{Name: "Q2 (Apr-Jun)", Months: []model.MonthKey{model.April, model.May, model.June}},
	{Name: "Q3 (Jul-Sep)", Months: []model.MonthKey{model.July, model.August, model.September}},
	{Name: "Q4 (Oct-Dec)", Months: []model.MonthKey{model.October, model.November, model.December}},
}

// AnalyzePatterns derives trend, seasonality, volatility, growth and category
// ranking from aggregated data.
func AnalyzePatterns(data ProcessedData) Patterns {
	var totals [12]float64
	for month, agg := range data.MonthlyData {
		if idx := month.Index(); idx >= 0 {
			totals[idx] = agg.Total
		}
	}

	return Patterns{
		MonthlyTotals:     totals,
		Trend:             calculateTrend(totals[:]),
		Seasonality:       calculateSeasonality(totals),
		Volatility:        calculateVolatility(totals[:]),
		Growth:            calculateGrowth(totals[:]),
		TopCategories:     topCategories(data.Categories, topCategoriesLimit),
		SpendingFrequency: spendingFrequency(data.MonthlyData),
	}
}

func calculateTrend(totals []float64) Trend {
	insufficient := Trend{Direction: TrendInsufficientData, Confidence: ConfidenceLow}

	values := nonZero(totals)
	if len(values) < trendWindow {
		return insufficient
	}

	recent := values[len(values)-trendWindow:]
	previous := values[max(0, len(values)-2*trendWindow) : len(values)-trendWindow]
	if len(previous) == 0 {
		return insufficient
	}

	recentAvg := mean(recent)
	previousAvg := mean(previous)
	if previousAvg == 0 {
		return insufficient
	}

	change := (recentAvg - previousAvg) / previousAvg * 100

	direction := TrendStable
	switch {
	case change > trendThreshold:
		direction = TrendIncreasing
	case change < -trendThreshold:
		direction = TrendDecreasing
	}

	confidence := ConfidenceMedium
	if len(values) >= highConfidenceSpan {
		confidence = ConfidenceHigh
	}

	return Trend{
		Direction:       direction,
		PercentChange:   change,
		RecentAverage:   recentAvg,
		PreviousAverage: previousAvg,
		Confidence:      confidence,
	}
}

func calculateSeasonality(totals [12]float64) Seasonality {
	result := Seasonality{Quarters: make([]Quarter, len(quarters))}

	peak, low := 0, 0
	for i, q := range quarters {
		var total float64
		for _, m := range q.Months {
			total += totals[m.Index()]
		}
		result.Quarters[i] = Quarter{
			Name:   q.Name,
			Months: append([]model.MonthKey(nil), q.Months...),
			Total:  total,
		}
		if total > result.Quarters[peak].Total {
			peak = i
		}
		if total < result.Quarters[low].Total {
			low = i
		}
	}

	result.PeakQuarter = result.Quarters[peak].Name
	result.LowQuarter = result.Quarters[low].Name

	maxTotal := result.Quarters[peak].Total
	if maxTotal > 0 {
		result.SeasonalVariation = (maxTotal - result.Quarters[low].Total) / maxTotal * 100
	}

	return result
}

// calculateVolatility returns the coefficient of variation of the non-zero
// values, clamped to [0, 1].
func calculateVolatility(totals []float64) float64 {
	values := nonZero(totals)
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	return clamp(stdDev(values)/m, 0, 1)
}

func calculateGrowth(totals []float64) float64 {
	values := nonZero(totals)
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	first, last := values[0], values[len(values)-1]
	return (last - first) / first * 100
}

func topCategories(categories []CategorySummary, limit int) []CategorySummary {
	ranked := make([]CategorySummary, len(categories))
	copy(ranked, categories)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// spendingFrequency buckets the months with data by how many purchases they hold.
func spendingFrequency(monthly map[model.MonthKey]MonthlyAggregate) map[string]int {
	freq := map[string]int{"none": 0, "low": 0, "medium": 0, "high": 0}
	for _, agg := range monthly {
		switch {
		case agg.Count == 0:
			freq["none"]++
		case agg.Count <= lowFrequencyCeiling:
			freq["low"]++
		case agg.Count <= midFrequencyCeiling:
			freq["medium"]++
		default:
			freq["high"]++
		}
	}
	return freq
}
