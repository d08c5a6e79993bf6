// internal/ensemble/components.go
package ensemble

import (
	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/forecast"
)

// ImpactFunc scores one factor snapshot for a product category in [-1, 1].
type ImpactFunc func(domain.FactorSnapshot) float64

// ExternalComponent projects the baseline demand adjusted by the per-step
// external factor impact.
func ExternalComponent(series []domain.SalesObservation, factors []domain.FactorSnapshot, horizon int, impact ImpactFunc) []float64 {
	base := forecast.Baseline(series)

	out := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		adj := 1.0
		if i < len(factors) && impact != nil {
			adj = 1 + 0.3*impact(factors[i])
		}
		v := base * adj
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}

// ProductComponent extrapolates the product's own fitted level and trend.
func ProductComponent(series []domain.SalesObservation, horizon int) []float64 {
	base := forecast.Baseline(series)
	trend := forecast.TrendSlope(series)

	out := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		v := base + trend*float64(i)
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}

// MarketComponent scales the baseline by search interest and sentiment.
// Neutral signals (interest 0.5, sentiment 0) leave demand unchanged.
func MarketComponent(series []domain.SalesObservation, factors []domain.FactorSnapshot, horizon int) []float64 {
	base := forecast.Baseline(series)

	out := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		mult := 1.0
		if i < len(factors) {
			f := factors[i]
			mult = 0.8 + 0.4*f.SearchInterest + 0.1*f.Sentiment
		}
		v := base * mult
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}
