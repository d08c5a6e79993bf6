// internal/ensemble/adapt.go
package ensemble

import (
	"github.com/retailpulse/forecast-engine/internal/domain"
)

// Adaptation thresholds. Below the lower bar the weights take a larger
// correction toward the best component; above the upper bar they are left
// alone.
const (
	lowAccuracyBar  = 0.75
	highAccuracyBar = 0.85
	largeCorrection = 0.10
	smallCorrection = 0.04
)

// ValidationResult carries the per-fold accuracy of one component from a
// k-fold cross-validation pass.
type ValidationResult struct {
	Component  string
	Accuracies []float64
}

func (r ValidationResult) mean() float64 {
	if len(r.Accuracies) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range r.Accuracies {
		sum += a
	}
	return sum / float64(len(r.Accuracies))
}

// Adapt nudges the weight vector based on cross-validation accuracy. This
// is a heuristic re-weighting policy, not gradient descent: the only hard
// guarantees are non-negative weights summing to 1.
func Adapt(current Weights, results []ValidationResult) (Weights, error) {
	if len(results) == 0 {
		return nil, domain.NewValidationError("results", "no validation results")
	}

	var (
		total   float64
		best    string
		bestAcc = -1.0
	)
	for _, r := range results {
		m := r.mean()
		total += m
		if m > bestAcc {
			bestAcc = m
			best = r.Component
		}
	}
	avg := total / float64(len(results))

	if avg >= highAccuracyBar {
		return current.Normalized(), nil
	}

	correction := smallCorrection
	if avg < lowAccuracyBar {
		correction = largeCorrection
	}

	next := current.clone()
	next[best] += correction
	return next.Normalized(), nil
}
