package analysis

import (
	"strings"
	"time"

	"github.com/Veraticus/finsight/internal/model"
)

// Data quality labels.
const (
	QualityGood              = "Good"
	QualityLimited           = "Medium - limited data"
	QualityFewData           = "Low - few data"
	QualityEmptyDescriptions = "Low - many empty descriptions"
	QualityNoData            = "No data"
	QualityError             = "Error"
)

const emptyDescriptionShare = 30.0

// DataQuality labels how much the report can be trusted given the input size
// and the share of transactions without a description.
func DataQuality(data ProcessedData) string {
	if data.TotalTransactions == 0 {
		return QualityNoData
	}

	quality := QualityGood
	switch {
	case data.TotalTransactions < 10:
		quality = QualityFewData
	case data.TotalTransactions < 30:
		quality = QualityLimited
	}

	empty := 0
	for _, e := range data.Expenses {
		if strings.TrimSpace(e.Description) == "" {
			empty++
		}
	}
	if percentOf(float64(empty), float64(len(data.Expenses))) > emptyDescriptionShare {
		quality = QualityEmptyDescriptions
	}

	return quality
}

// QuickStats is the headline view of a report.
type QuickStats struct {
	TopCategory        *CategorySummary `json:"topCategory"`
	TotalExpenses      float64          `json:"totalExpenses"`
	AverageTransaction float64          `json:"averageTransaction"`
	PotentialSavings   float64          `json:"potentialSavings"`
	TotalTransactions  int              `json:"totalTransactions"`
	HealthScore        int              `json:"healthScore"`
}

// Quick extracts the headline numbers from the report.
func (r *Report) Quick() QuickStats {
	stats := QuickStats{
		TotalExpenses:      r.ProcessedData.TotalExpenses,
		TotalTransactions:  r.ProcessedData.TotalTransactions,
		AverageTransaction: r.ProcessedData.AverageTransaction,
		HealthScore:        r.HealthScore.Score,
	}
	if len(r.Patterns.TopCategories) > 0 {
		top := r.Patterns.TopCategories[0]
		stats.TopCategory = &top
	}
	for _, rec := range r.Recommendations {
		stats.PotentialSavings += rec.PotentialSaving
	}
	return stats
}

// MonthTotal is the spending of one month.
type MonthTotal struct {
	Month model.MonthKey `json:"month"`
	Total float64        `json:"total"`
}

// MonthComparison compares two months of spending.
type MonthComparison struct {
	Direction     string     `json:"direction"`
	From          MonthTotal `json:"from"`
	To            MonthTotal `json:"to"`
	Difference    float64    `json:"difference"`
	PercentChange float64    `json:"percentChange"`
}

// Comparison directions.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
	DirectionStable   = "stable"
)

// CompareMonths reports how spending changed from one month to another.
// Invalid transactions are ignored and a missing month counts as zero.
func CompareMonths(monthly model.MonthlyTransactions, from, to model.MonthKey) MonthComparison {
	fromTotal := validTotal(monthly[from])
	toTotal := validTotal(monthly[to])
	diff := toTotal - fromTotal

	direction := DirectionStable
	switch {
	case diff > 0:
		direction = DirectionIncrease
	case diff < 0:
		direction = DirectionDecrease
	}

	return MonthComparison{
		From:          MonthTotal{Month: from, Total: fromTotal},
		To:            MonthTotal{Month: to, Total: toTotal},
		Difference:    diff,
		PercentChange: percentOf(diff, fromTotal),
		Direction:     direction,
	}
}

// GeneralStats summarises every valid transaction regardless of month.
type GeneralStats struct {
	TotalAmount        float64 `json:"totalAmount"`
	AverageTransaction float64 `json:"averageTransaction"`
	MaxTransaction     float64 `json:"maxTransaction"`
	MinTransaction     float64 `json:"minTransaction"`
	TotalTransactions  int     `json:"totalTransactions"`
}

// ComputeGeneralStats returns count, total, average and extremes of the valid
// transactions in known months.
func ComputeGeneralStats(monthly model.MonthlyTransactions) GeneralStats {
	var stats GeneralStats
	for _, month := range model.Months {
		for _, tx := range monthly[month] {
			if !tx.Valid() {
				continue
			}
			if stats.TotalTransactions == 0 || tx.Amount > stats.MaxTransaction {
				stats.MaxTransaction = tx.Amount
			}
			if stats.TotalTransactions == 0 || tx.Amount < stats.MinTransaction {
				stats.MinTransaction = tx.Amount
			}
			stats.TotalAmount += tx.Amount
			stats.TotalTransactions++
		}
	}
	if stats.TotalTransactions > 0 {
		stats.AverageTransaction = stats.TotalAmount / float64(stats.TotalTransactions)
	}
	return stats
}

func validTotal(records []model.Transaction) float64 {
	var total float64
	for _, tx := range records {
		if tx.Valid() {
			total += tx.Amount
		}
	}
	return total
}

// ReferenceForYear picks the reference date for analyzing a stored year:
// past years are analyzed as of their last day, the current and future years
// as of now.
func ReferenceForYear(year int, now time.Time) time.Time {
	if year < now.Year() {
		return time.Date(year, time.December, 31, 12, 0, 0, 0, now.Location())
	}
	return now
}
