package analysis

import (
	"math"

	"github.com/Veraticus/finsight/internal/model"
)

const (
	minAnomalySamples = 5
	anomalyThreshold  = 2.5
	highThreshold     = 3.0
	maxZScore         = 1e3
	varianceEpsilon   = 1e-12
)

// minRelativeDeviation keeps amounts within 10% of the others' mean out of
// the results, however tight their spread.
const minRelativeDeviation = 0.1

// DetectAnomalies flags transactions whose amount lies far from the others.
//
// Each amount is scored against the mean and standard deviation of the
// remaining transactions, so a single outlier cannot inflate the spread it is
// measured against. Scores above 2.5 are flagged and scores above 3 are high
// severity. Fewer than five transactions, or identical amounts, yield no
// anomalies, and neither does an amount within minRelativeDeviation of the
// others' mean.
func DetectAnomalies(expenses []model.CategorizedTransaction) []Anomaly {
	anomalies := []Anomaly{}

	n := len(expenses)
	if n < minAnomalySamples {
		return anomalies
	}

	amounts := make([]float64, n)
	for i, e := range expenses {
		amounts[i] = e.Amount
	}

	m := mean(amounts)
	if stdDev(amounts) == 0 {
		return anomalies
	}

	var sumSquares float64
	for _, a := range amounts {
		d := a - m
		sumSquares += d * d
	}

	others := float64(n - 1)
	for i, e := range expenses {
		d := amounts[i] - m
		restMean := m - d/others
		restVar := (sumSquares-d*d)/others - (d/others)*(d/others)
		if math.Abs(amounts[i]-restMean) < minRelativeDeviation*math.Abs(restMean) {
			continue
		}

		z := zScore(amounts[i], restMean, restVar)
		if z <= anomalyThreshold {
			continue
		}

		severity := SeverityMedium
		if z > highThreshold {
			severity = SeverityHigh
		}
		anomalies = append(anomalies, Anomaly{
			CategorizedTransaction: e,
			ZScore:                 z,
			Severity:               severity,
		})
	}

	return anomalies
}

// zScore returns |value-mean|/stddev capped at maxZScore. A value that differs
// from a zero-variance population scores the cap.
func zScore(value, mean, variance float64) float64 {
	diff := math.Abs(value - mean)
	if variance <= varianceEpsilon*math.Max(1, mean*mean) {
		if diff <= varianceEpsilon*math.Max(1, math.Abs(mean)) {
			return 0
		}
		return maxZScore
	}
	return math.Min(maxZScore, diff/math.Sqrt(variance))
}
