// internal/external/impact.go
package external

import (
	"math"
	"strings"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

const optimalTemperature = 20.0

// weatherSensitivity is how strongly a category's demand reacts to
// weather. Industrial/mechanical goods barely notice it.
func weatherSensitivity(category string) float64 {
	switch normalizeCategory(category) {
	case "apparel":
		return 0.8
	case "industrial":
		return 0.1
	default:
		return 0.4
	}
}

// economicSensitivity scales the macro impact: luxury goods swing harder,
// essentials barely move.
func economicSensitivity(category string) float64 {
	switch normalizeCategory(category) {
	case "luxury":
		return 1.5
	case "essential":
		return 0.7
	default:
		return 1.0
	}
}

func normalizeCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "apparel", "fashion":
		return "apparel"
	case "industrial", "manufacturing", "mechanical":
		return "industrial"
	case "luxury":
		return "luxury"
	case "essential", "essentials", "grocery":
		return "essential"
	default:
		return "general"
	}
}

// ImpactScore folds a factor snapshot into a single demand impact in
// [-1, 1] for the given product category.
func ImpactScore(f domain.FactorSnapshot, category string) float64 {
	weather := weatherScore(f) * weatherSensitivity(category)
	economic := economicScore(f) * economicSensitivity(category)
	market := (f.SearchInterest-0.5)*0.4 + f.Sentiment*0.2

	return clampUnit(weather + economic + market)
}

// weatherScore penalizes demand as the temperature moves away from the
// optimal 20 degrees or when precipitation is high.
func weatherScore(f domain.FactorSnapshot) float64 {
	deviation := math.Abs(f.Temperature-optimalTemperature) / 15.0
	score := -deviation

	if f.Precipitation > 10 {
		score -= math.Min(f.Precipitation/50.0, 0.5)
	}

	return clampUnit(score)
}

// economicScore rises with GDP growth and falls with inflation and
// unemployment.
func economicScore(f domain.FactorSnapshot) float64 {
	score := 0.1*f.GDPGrowth - 0.05*f.Inflation - 0.05*f.Unemployment
	return clampUnit(score)
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
