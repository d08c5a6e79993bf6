// internal/external/adapter.go
package external

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/retailpulse/forecast-engine/internal/cache"
	"github.com/retailpulse/forecast-engine/internal/config"
	"github.com/retailpulse/forecast-engine/internal/domain"
)

// Adapter supplies external demand signals. Fetch never fails the caller:
// upstream errors are absorbed into deterministic fallback snapshots with
// the Fallback flag set.
type Adapter interface {
	Fetch(ctx context.Context, location string, from, to time.Time) ([]domain.FactorSnapshot, error)
	ImpactScore(snapshot domain.FactorSnapshot, category string) float64
}

// HTTPAdapter assembles weather, economic and search-trend signals from
// their upstream clients, with a TTL cache in front of the network.
type HTTPAdapter struct {
	weather  *weatherClient
	economic *economicClient
	trends   *trendsClient
	cache    cache.FactorCache
}

// NewAdapter wires the upstream clients. cacheImpl may be nil, in which
// case every fetch goes to the network.
func NewAdapter(cfg config.ExternalConfig, cacheImpl cache.FactorCache) *HTTPAdapter {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopFactorCache()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 2
	}

	return &HTTPAdapter{
		weather:  newWeatherClient(cfg.WeatherBaseURL, timeout, attempts),
		economic: newEconomicClient(cfg.EconomicBaseURL, timeout, attempts),
		trends:   newTrendsClient(cfg.SearchAPIKey, cfg.SearchEngineID, timeout),
		cache:    cacheImpl,
	}
}

// Fetch returns one snapshot per day in [from, to]. Each signal degrades
// independently: a failed weather fetch falls back to the default climate
// while economic and trend signals stay live, and vice versa.
func (a *HTTPAdapter) Fetch(ctx context.Context, location string, from, to time.Time) ([]domain.FactorSnapshot, error) {
	if to.Before(from) {
		return nil, domain.NewValidationError("date_range", "end before start")
	}

	if cached, ok, err := a.cache.Get(ctx, "combined", location, from, to); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("external: factor cache get failed")
	}

	days := int(to.Sub(from).Hours()/24) + 1

	weather, weatherErr := a.weather.Daily(ctx, location, from, to)
	if weatherErr != nil {
		log.Warn().Err(weatherErr).Str("location", location).Msg("external: weather fetch failed, using fallback")
	}

	econ, econErr := a.economic.Indicators(ctx, location)
	if econErr != nil {
		log.Warn().Err(econErr).Str("location", location).Msg("external: economic fetch failed, using fallback")
		econ = fallbackEconomic()
	}

	interest, trendErr := a.trends.SearchInterest(ctx, location)
	if trendErr != nil {
		log.Debug().Err(trendErr).Msg("external: trend fetch failed, using fallback")
		interest = fallbackSearchInterest
	}

	degraded := weatherErr != nil || econErr != nil || trendErr != nil

	snapshots := make([]domain.FactorSnapshot, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		snap := domain.FactorSnapshot{
			Date:           date,
			GDPGrowth:      econ.GDPGrowth,
			Inflation:      econ.Inflation,
			Unemployment:   econ.Unemployment,
			SearchInterest: interest,
			Sentiment:      econ.Sentiment,
			Fallback:       degraded,
		}
		if weatherErr == nil && i < len(weather) {
			snap.Temperature = weather[i].Temperature
			snap.Precipitation = weather[i].Precipitation
		} else {
			snap.Temperature = fallbackTemperature
			snap.Precipitation = fallbackPrecipitation
		}
		snapshots[i] = snap
	}

	if err := a.cache.Set(ctx, "combined", location, from, to, snapshots); err != nil {
		log.Warn().Err(err).Msg("external: factor cache set failed")
	}

	return snapshots, nil
}

// ImpactScore maps one snapshot to a demand impact in [-1, 1] for a
// product category.
func (a *HTTPAdapter) ImpactScore(snapshot domain.FactorSnapshot, category string) float64 {
	return ImpactScore(snapshot, category)
}
