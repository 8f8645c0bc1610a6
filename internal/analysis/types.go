package analysis

import (
	"time"

	"github.com/Veraticus/finsight/internal/model"
)

// Priority ranks insights, recommendations and alerts.
type Priority string

const (
	// PriorityHigh needs attention now.
	PriorityHigh Priority = "high"
	// PriorityMedium should be looked at soon.
	PriorityMedium Priority = "medium"
	// PriorityLow is informational.
	PriorityLow Priority = "low"
)

// Weight returns the sort weight of a priority (high=3, medium=2, low=1).
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// TrendDirection describes how recent spending compares to the months before.
type TrendDirection string

// Trend directions.
const (
	TrendIncreasing       TrendDirection = "increasing"
	TrendDecreasing       TrendDirection = "decreasing"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// Confidence is a coarse confidence level.
type Confidence string

// Confidence levels.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Severity grades an anomaly.
type Severity string

// Anomaly severities.
const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// HealthStatus is the qualitative reading of a health score.
type HealthStatus string

// Health statuses.
const (
	HealthExcellent HealthStatus = "Excellent"
	HealthGood      HealthStatus = "Good"
	HealthFair      HealthStatus = "Fair"
	HealthCritical  HealthStatus = "Critical"
	HealthUnknown   HealthStatus = "Unknown"
)

// MonthlyAggregate summarises the valid transactions of one month.
type MonthlyAggregate struct {
	CategoryTotals map[model.Category]float64 `json:"categoryTotals"`
	Total          float64                    `json:"total"`
	Average        float64                    `json:"average"`
	Count          int                        `json:"count"`
}

// CategorySummary totals the transactions of one category.
type CategorySummary struct {
	Name       model.Category `json:"name"`
	Total      float64        `json:"total"`
	Percentage float64        `json:"percentage"`
	Count      int            `json:"count"`
}

// ProcessedData is the aggregated and categorized view of the input.
type ProcessedData struct {
	MonthlyData        map[model.MonthKey]MonthlyAggregate `json:"monthlyData"`
	Expenses           []model.CategorizedTransaction      `json:"expenses"`
	Categories         []CategorySummary                   `json:"categories"`
	TotalExpenses      float64                             `json:"totalExpenses"`
	AverageTransaction float64                             `json:"averageTransaction"`
	TotalTransactions  int                                 `json:"totalTransactions"`
}

// Category returns the summary for a category and whether it has any spending.
func (pd ProcessedData) Category(name model.Category) (CategorySummary, bool) {
	for _, c := range pd.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return CategorySummary{}, false
}

// Trend compares the latest three active months with the three before them.
type Trend struct {
	Direction       TrendDirection `json:"direction"`
	Confidence      Confidence     `json:"confidence"`
	PercentChange   float64        `json:"percentChange"`
	RecentAverage   float64        `json:"recentAverage"`
	PreviousAverage float64        `json:"previousAverage"`
}

// Quarter is one calendar quarter of spending.
type Quarter struct {
	Name   string           `json:"name"`
	Months []model.MonthKey `json:"months"`
	Total  float64          `json:"total"`
}

// Seasonality describes how spending is spread across quarters.
type Seasonality struct {
	PeakQuarter       string    `json:"peakQuarter"`
	LowQuarter        string    `json:"lowQuarter"`
	Quarters          []Quarter `json:"quarters"`
	SeasonalVariation float64   `json:"seasonalVariation"`
}

// Patterns are the statistics derived from the monthly series.
type Patterns struct {
	SpendingFrequency map[string]int    `json:"spendingFrequency"`
	TopCategories     []CategorySummary `json:"topCategories"`
	Seasonality       Seasonality       `json:"seasonality"`
	Trend             Trend             `json:"trend"`
	MonthlyTotals     [12]float64       `json:"monthlyTotals"`
	Volatility        float64           `json:"volatility"`
	Growth            float64           `json:"growth"`
}

// ForecastMethods holds the individual estimates combined by the ensemble.
type ForecastMethods struct {
	Average     float64 `json:"average"`
	Exponential float64 `json:"exponential"`
	Linear      float64 `json:"linear"`
	Seasonal    float64 `json:"seasonal"`
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Prediction is the forecast for the next period.
type Prediction struct {
	Methods    *ForecastMethods `json:"methods,omitempty"`
	Confidence Confidence       `json:"confidence"`
	Method     string           `json:"method"`
	Range      Range            `json:"range"`
	NextMonth  float64          `json:"nextMonth"`
	Ensemble   float64          `json:"ensemble"`
}

// Anomaly is a transaction whose amount deviates strongly from the rest.
type Anomaly struct {
	Severity Severity `json:"severity"`
	model.CategorizedTransaction
	ZScore float64 `json:"zScore"`
}

// InsightType identifies the rule that produced an insight.
type InsightType string

// Insight types.
const (
	InsightCategoryDominance InsightType = "category_dominance"
	InsightTrend             InsightType = "trend_analysis"
	InsightVolatility        InsightType = "volatility"
	InsightAnomalies         InsightType = "anomalies"
	InsightSeasonality       InsightType = "seasonality"
	InsightInfo              InsightType = "info"
	InsightError             InsightType = "error"
)

// Insight is a human-readable observation about the data.
type Insight struct {
	Type        InsightType    `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    Priority       `json:"priority"`
	Category    model.Category `json:"category,omitempty"`
	Tips        []string       `json:"tips,omitempty"`
	Actionable  bool           `json:"actionable"`
}

// RecommendationType identifies the rule that produced a recommendation.
type RecommendationType string

// Recommendation types.
const (
	RecommendationCategoryOptimization RecommendationType = "category_optimization"
	RecommendationCategorization       RecommendationType = "categorization"
)

// Recommendation is a suggested change with an estimated saving.
type Recommendation struct {
	Type            RecommendationType `json:"type"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Priority        Priority           `json:"priority"`
	Category        model.Category     `json:"category,omitempty"`
	Difficulty      string             `json:"difficulty"`
	Tips            []string           `json:"tips,omitempty"`
	PotentialSaving float64            `json:"potentialSaving"`
	Confidence      float64            `json:"confidence"`
	Actionable      bool               `json:"actionable"`
}

// AlertType identifies the rule that raised an alert.
type AlertType string

// Alert types.
const (
	AlertOverspending          AlertType = "overspending"
	AlertPredictionWarning     AlertType = "prediction_warning"
	AlertCategoryDominance     AlertType = "category_dominance"
	AlertHighValueLowFrequency AlertType = "high_value_low_frequency"
)

// Alert warns about spending that needs attention.
type Alert struct {
	Type        AlertType      `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    Priority       `json:"priority"`
	Category    model.Category `json:"category,omitempty"`
	Tips        []string       `json:"tips,omitempty"`
	Actionable  bool           `json:"actionable"`
}

// HealthFactor is one component of the health score.
type HealthFactor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Max         float64 `json:"max"`
}

// HealthScore is the 0-100 composite financial health reading.
type HealthScore struct {
	Status      HealthStatus   `json:"status"`
	Message     string         `json:"message"`
	Factors     []HealthFactor `json:"factors"`
	Suggestions []string       `json:"suggestions"`
	IncomeTotal float64        `json:"incomeTotal"`
	Score       int            `json:"score"`
}

// Metadata describes how a report was produced.
type Metadata struct {
	LastAnalysis      time.Time `json:"lastAnalysis"`
	ReferenceDate     time.Time `json:"referenceDate"`
	ReportID          string    `json:"reportId"`
	DataQuality       string    `json:"dataQuality"`
	AlgorithmsUsed    []string  `json:"algorithmsUsed"`
	ProcessingTimeMs  int64     `json:"processingTime"`
	TotalTransactions int       `json:"totalTransactions"`
}

// Report is the complete output of one analysis run. It holds plain data only
// and can be serialized as-is.
type Report struct {
	ProcessedData   ProcessedData    `json:"processedData"`
	Metadata        Metadata         `json:"metadata"`
	Patterns        Patterns         `json:"patterns"`
	Predictions     Prediction       `json:"predictions"`
	Anomalies       []Anomaly        `json:"anomalies"`
	Insights        []Insight        `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	Alerts          []Alert          `json:"alerts"`
	HealthScore     HealthScore      `json:"healthScore"`
}

// Options configures one analysis run.
type Options struct {
	// ReferenceDate decides the current month for alerts and the next month
	// for seasonal forecasting. Zero means the engine clock.
	ReferenceDate time.Time        `json:"reference_date"`
	ProgressFunc  ProgressCallback `json:"-"`
}

// ProgressCallback provides updates during analysis execution.
type ProgressCallback func(stage string, percent int)
