package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/finsight/internal/model"
)

// Algorithms lists the techniques behind a full report.
var Algorithms = []string{
	"Keyword categorization",
	"Linear regression",
	"Moving averages",
	"Z-score",
	"Seasonal analysis",
}

var defaultEngine = NewDefaultEngine()

// Analyze runs the default engine. See Engine.Analyze.
func Analyze(transactions model.MonthlyTransactions, income model.MonthlyIncome, opts Options) *Report {
	return defaultEngine.Analyze(transactions, income, opts)
}

// Analyze builds the full report for the given months. It never fails: input
// without valid transactions yields a "no data" report and an internal panic
// yields an "error" report.
func (e *Engine) Analyze(
	transactions model.MonthlyTransactions,
	income model.MonthlyIncome,
	opts Options,
) (report *Report) {
	started := e.deps.Clock()
	reference := opts.ReferenceDate
	if reference.IsZero() {
		reference = started
	}

	logger := e.logger()
	progress := opts.ProgressFunc
	if progress == nil {
		progress = func(string, int) {} // no-op
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Analysis failed", "panic", fmt.Sprint(r))
			report = ErrorReport(started, reference)
		}
	}()

	progress("Aggregating transactions", 10)
	data := Aggregate(transactions, e.deps.Categorizer)
	if data.TotalTransactions == 0 {
		logger.Debug("No valid transactions to analyze", "months", len(transactions))
		report = NoDataReport(started, reference)
		report.HealthScore.IncomeTotal = income.Total()
		return report
	}

	progress("Analyzing patterns", 30)
	patterns := AnalyzePatterns(data)

	progress("Forecasting", 45)
	prediction := Forecast(patterns, reference)

	progress("Detecting anomalies", 60)
	anomalies := DetectAnomalies(data.Expenses)

	progress("Generating insights", 75)
	insights := GenerateInsights(patterns, anomalies, e.deps.Categorizer)
	recommendations := GenerateRecommendations(data, e.deps.Categorizer)
	alerts := GenerateAlerts(data, patterns, prediction, reference)

	progress("Scoring financial health", 90)
	health := ScoreHealth(data, anomalies, patterns, income)

	elapsed := e.deps.Clock().Sub(started)
	logger.Debug("Analysis complete",
		"transactions", data.TotalTransactions,
		"anomalies", len(anomalies),
		"score", health.Score,
		"duration", elapsed,
	)
	progress("Done", 100)

	return &Report{
		ProcessedData:   data,
		Patterns:        patterns,
		Predictions:     prediction,
		Anomalies:       anomalies,
		Insights:        insights,
		Recommendations: recommendations,
		Alerts:          alerts,
		HealthScore:     health,
		Metadata: Metadata{
			ReportID:          uuid.New().String(),
			ProcessingTimeMs:  elapsed.Milliseconds(),
			DataQuality:       DataQuality(data),
			AlgorithmsUsed:    append([]string(nil), Algorithms...),
			TotalTransactions: data.TotalTransactions,
			LastAnalysis:      started,
			ReferenceDate:     reference,
		},
	}
}

// NoDataReport is returned when there is nothing to analyze.
func NoDataReport(now, reference time.Time) *Report {
	report := emptyReport(now, reference, QualityNoData)
	report.Insights = []Insight{{
		Type:        InsightInfo,
		Title:       "📊 Not enough data",
		Description: "Add expenses to get an analysis of your spending",
		Priority:    PriorityLow,
		Actionable:  true,
	}}
	return report
}

// ErrorReport is returned when the analysis fails unexpectedly.
func ErrorReport(now, reference time.Time) *Report {
	report := emptyReport(now, reference, QualityError)
	report.Insights = []Insight{{
		Type:        InsightError,
		Title:       "⚠️ Analysis failed",
		Description: "The analysis could not be completed. Check your data and try again",
		Priority:    PriorityLow,
		Actionable:  false,
	}}
	return report
}

func emptyReport(now, reference time.Time, quality string) *Report {
	return &Report{
		ProcessedData: ProcessedData{
			MonthlyData: map[model.MonthKey]MonthlyAggregate{},
			Expenses:    []model.CategorizedTransaction{},
			Categories:  []CategorySummary{},
		},
		Patterns: Patterns{
			Trend:             Trend{Direction: TrendInsufficientData, Confidence: ConfidenceLow},
			Seasonality:       calculateSeasonality([12]float64{}),
			TopCategories:     []CategorySummary{},
			SpendingFrequency: spendingFrequency(nil),
		},
		Predictions: Prediction{
			Confidence: ConfidenceLow,
			Method:     MethodInsufficientData,
		},
		Anomalies:       []Anomaly{},
		Recommendations: []Recommendation{},
		Alerts:          []Alert{},
		HealthScore: HealthScore{
			Status:      HealthUnknown,
			Message:     "Not enough data for analysis",
			Factors:     []HealthFactor{},
			Suggestions: []string{},
		},
		Metadata: Metadata{
			ReportID:       uuid.New().String(),
			DataQuality:    quality,
			AlgorithmsUsed: []string{},
			LastAnalysis:   now,
			ReferenceDate:  reference,
		},
	}
}
