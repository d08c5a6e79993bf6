// internal/forecast/metrics.go
package forecast

import (
	"math"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// Score computes the backtest metrics for a set of held-out points.
// MAPE is reported as a fraction (0.12 == 12%), skipping zero actuals.
func Score(model string, actual, predicted []float64) domain.AccuracyReport {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}

	report := domain.AccuracyReport{Model: model, Samples: n}
	if n == 0 {
		return report
	}

	var sumAbs, sumSq, sumPct float64
	pctSamples := 0
	mean := 0.0
	for i := 0; i < n; i++ {
		mean += actual[i]
	}
	mean /= float64(n)

	var ssTot float64
	for i := 0; i < n; i++ {
		diff := actual[i] - predicted[i]
		sumAbs += math.Abs(diff)
		sumSq += diff * diff
		ssTot += (actual[i] - mean) * (actual[i] - mean)
		if actual[i] != 0 {
			sumPct += math.Abs(diff / actual[i])
			pctSamples++
		}
	}

	report.MAE = sumAbs / float64(n)
	report.RMSE = math.Sqrt(sumSq / float64(n))
	if pctSamples > 0 {
		report.MAPE = sumPct / float64(pctSamples)
	}
	if ssTot > 0 {
		report.R2 = 1 - sumSq/ssTot
	}

	return report
}

// AccuracyOf converts a report into the [0,1] accuracy used by the
// ensemble weight adaptation: 1 minus MAPE, floored at zero.
func AccuracyOf(report domain.AccuracyReport) float64 {
	acc := 1 - report.MAPE
	if acc < 0 {
		return 0
	}
	if acc > 1 {
		return 1
	}
	return acc
}
