// internal/ensemble/blender.go
package ensemble

import (
	"math"
	"time"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

const (
	confidenceFloor   = 0.5
	confidenceCeiling = 0.95
	tailDecayRate     = 0.3
	relativeBand      = 0.12
)

// Blend combines per-component demand curves into one forecast with a
// confidence band. Every component must cover the full horizon; the first
// point is dated startDate.
func Blend(components map[string][]float64, weights Weights, startDate time.Time, horizon int) ([]domain.ForecastPoint, error) {
	if horizon <= 0 {
		return nil, domain.NewValidationError("horizon_days", "must be positive")
	}
	if len(components) == 0 {
		return nil, domain.NewValidationError("components", "at least one component prediction required")
	}
	for name, curve := range components {
		if len(curve) < horizon {
			return nil, domain.NewValidationError("components", "component "+name+" does not cover the horizon")
		}
	}

	normalized := weights.Normalized()
	points := make([]domain.ForecastPoint, horizon)

	for step := 0; step < horizon; step++ {
		var blended float64
		values := make([]float64, 0, len(components))
		for name, curve := range components {
			v := curve[step]
			values = append(values, v)
			blended += v * normalized[name]
		}
		if blended < 0 {
			blended = 0
		}

		conf := stepConfidence(values, step, horizon)

		// Wider band when the components disagree.
		band := blended * relativeBand / conf
		lower := blended - band
		if lower < 0 {
			lower = 0
		}

		points[step] = domain.ForecastPoint{
			Date:              startDate.AddDate(0, 0, step),
			PredictedQuantity: blended,
			Confidence:        conf,
			LowerBound:        lower,
			UpperBound:        blended + band,
		}
	}

	return points, nil
}

// stepConfidence scores agreement across components at one step, then caps
// it with a decay toward the horizon tail. Both are floored at 0.5.
func stepConfidence(values []float64, step, horizon int) float64 {
	conf := confidenceCeiling
	if cv := coefficientOfVariation(values); cv > 0 {
		conf = 1 - cv
	}
	if conf > confidenceCeiling {
		conf = confidenceCeiling
	}
	if conf < confidenceFloor {
		conf = confidenceFloor
	}

	tailCap := confidenceCeiling - tailDecayRate*float64(step)/float64(horizon)
	if tailCap < confidenceFloor {
		tailCap = confidenceFloor
	}
	if conf > tailCap {
		conf = tailCap
	}

	return conf
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return math.Sqrt(variance) / math.Abs(mean)
}
