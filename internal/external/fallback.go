// internal/external/fallback.go
package external

import (
	"time"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// Deterministic fallback baseline. Substituted per-signal whenever an
// upstream fetch fails so the engine keeps producing output with reduced
// confidence instead of failing the request.
const (
	fallbackTemperature    = 20.0
	fallbackPrecipitation  = 2.0
	fallbackGDPGrowth      = 2.1
	fallbackInflation      = 2.5
	fallbackUnemployment   = 4.0
	fallbackSearchInterest = 0.5
	fallbackSentiment      = 0.1
)

func fallbackEconomic() economicIndicators {
	return economicIndicators{
		GDPGrowth:    fallbackGDPGrowth,
		Inflation:    fallbackInflation,
		Unemployment: fallbackUnemployment,
		Sentiment:    fallbackSentiment,
	}
}

// FallbackSnapshots builds a full fallback series for [from, to], one
// snapshot per day, all flagged Fallback.
func FallbackSnapshots(from, to time.Time) []domain.FactorSnapshot {
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		return nil
	}

	snapshots := make([]domain.FactorSnapshot, days)
	for i := range snapshots {
		snapshots[i] = domain.FactorSnapshot{
			Date:           from.AddDate(0, 0, i),
			Temperature:    fallbackTemperature,
			Precipitation:  fallbackPrecipitation,
			GDPGrowth:      fallbackGDPGrowth,
			Inflation:      fallbackInflation,
			Unemployment:   fallbackUnemployment,
			SearchInterest: fallbackSearchInterest,
			Sentiment:      fallbackSentiment,
			Fallback:       true,
		}
	}
	return snapshots
}
