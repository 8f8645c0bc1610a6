package analysis

import (
	"math"
	"time"

	"github.com/Veraticus/finsight/internal/model"
)

const (
	emaAlpha       = 0.3
	seasonalWeight = 0.7
	recentWindow   = 3

	weightAverage     = 0.2
	weightExponential = 0.3
	weightLinear      = 0.3
	weightSeasonal    = 0.2

	// MethodEnsemble names the combined forecast.
	MethodEnsemble = "ensemble"
	// MethodInsufficientData marks a forecast that could not be computed.
	MethodInsufficientData = "insufficient_data"
)

// Forecast estimates next month's spending from the monthly series. The
// reference date decides which calendar month counts as "next".
func Forecast(p Patterns, reference time.Time) Prediction {
	values := nonZero(p.MonthlyTotals[:])
	if len(values) < 2 {
		return Prediction{
			Confidence: ConfidenceLow,
			Method:     MethodInsufficientData,
		}
	}

	methods := ForecastMethods{
		Average:     mean(lastN(values, recentWindow)),
		Exponential: exponentialAverage(values, emaAlpha),
		Linear:      linearProjection(values),
		Seasonal:    seasonalEstimate(p.MonthlyTotals, values, reference),
	}

	ensemble := weightAverage*methods.Average +
		weightExponential*methods.Exponential +
		weightLinear*methods.Linear +
		weightSeasonal*methods.Seasonal
	next := math.Max(0, ensemble)

	spread := stdDev(values)

	return Prediction{
		NextMonth:  next,
		Ensemble:   ensemble,
		Confidence: forecastConfidence(values),
		Method:     MethodEnsemble,
		Range: Range{
			Min: math.Max(0, next-spread),
			Max: math.Max(0, next+spread),
		},
		Methods: &methods,
	}
}

func exponentialAverage(values []float64, alpha float64) float64 {
	ema := values[0]
	for _, v := range values[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	return ema
}

// linearProjection fits y = a + b*x by least squares over x = 0..n-1 and
// evaluates it at x = n.
func linearProjection(values []float64) float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return mean(values)
	}

	slope := (n*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / n
	return intercept + slope*n
}

func seasonalEstimate(totals [12]float64, values []float64, reference time.Time) float64 {
	next := model.MonthFromTime(reference).Next()
	if slot := totals[next.Index()]; slot > 0 {
		return seasonalWeight*slot + (1-seasonalWeight)*mean(lastN(values, recentWindow))
	}
	return mean(values)
}

func forecastConfidence(values []float64) Confidence {
	switch {
	case len(values) < 3:
		return ConfidenceLow
	case len(values) < 6:
		return ConfidenceMedium
	}

	volatility := calculateVolatility(values)
	switch {
	case volatility < 0.2:
		return ConfidenceHigh
	case volatility < 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
