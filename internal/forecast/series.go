// internal/forecast/series.go
package forecast

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// Baseline estimates the current demand level as the mean quantity of the
// most recent observations (up to a 30 day window).
func Baseline(series []domain.SalesObservation) float64 {
	if len(series) == 0 {
		return 0
	}

	window := series
	if len(window) > 30 {
		window = window[len(window)-30:]
	}

	sum := 0.0
	for _, obs := range window {
		sum += obs.Quantity
	}
	return sum / float64(len(window))
}

// TrendSlope fits a least-squares line over the series and returns the
// per-step slope.
func TrendSlope(series []domain.SalesObservation) float64 {
	n := len(series)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, obs := range series {
		x := float64(i)
		sumX += x
		sumY += obs.Quantity
		sumXY += x * obs.Quantity
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// RecentSlope returns the average step-to-step change over the trailing
// window observations.
func RecentSlope(series []domain.SalesObservation, window int) float64 {
	if len(series) < 2 || window < 2 {
		return 0
	}
	if window > len(series) {
		window = len(series)
	}

	tail := series[len(series)-window:]
	return (tail[len(tail)-1].Quantity - tail[0].Quantity) / float64(len(tail)-1)
}

// seriesRand returns a deterministic generator derived from the series
// content. Identical inputs always produce identical predictions; only
// synthetic data generation uses externally supplied seeds.
func seriesRand(series []domain.SalesObservation, salt string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(salt))
	for _, obs := range series {
		var buf [8]byte
		bits := math.Float64bits(obs.Quantity)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// clampNonNegative zeroes any negative demand values in place.
func clampNonNegative(values []float64) []float64 {
	for i, v := range values {
		if v < 0 || math.IsNaN(v) {
			values[i] = 0
		}
	}
	return values
}

// impactMultiplier folds a per-step factor adjustment into a multiplier.
// score is expected in [-1, 1]; the multiplier stays within [0.7, 1.3].
func impactMultiplier(score float64) float64 {
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return 1 + 0.3*score
}
