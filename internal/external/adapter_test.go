package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/forecast-engine/internal/config"
)

func newUpstreams(t *testing.T, failWeather, failEconomic bool) (weather, economic *httptest.Server) {
	t.Helper()

	weather = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failWeather {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		resp := weatherResponse{
			Location: r.URL.Query().Get("location"),
			Daily: []dailyWeather{
				{Date: "2026-05-01", Temperature: 24, Precipitation: 1},
				{Date: "2026-05-02", Temperature: 26, Precipitation: 0},
				{Date: "2026-05-03", Temperature: 22, Precipitation: 12},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(weather.Close)

	economic = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failEconomic {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(economicIndicators{
			GDPGrowth:    3.2,
			Inflation:    1.8,
			Unemployment: 3.5,
			Sentiment:    0.4,
		})
	}))
	t.Cleanup(economic.Close)

	return weather, economic
}

func adapterConfig(weatherURL, economicURL string) config.ExternalConfig {
	return config.ExternalConfig{
		WeatherBaseURL:  weatherURL,
		EconomicBaseURL: economicURL,
		TimeoutSeconds:  2,
		MaxAttempts:     2,
	}
}

func fetchRange() (time.Time, time.Time) {
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 2)
}

func TestAdapterFetchLiveSignals(t *testing.T) {
	weather, economic := newUpstreams(t, false, false)
	adapter := NewAdapter(adapterConfig(weather.URL, economic.URL), nil)

	from, to := fetchRange()
	snapshots, err := adapter.Fetch(context.Background(), "jakarta", from, to)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	assert.Equal(t, 24.0, snapshots[0].Temperature)
	assert.Equal(t, 26.0, snapshots[1].Temperature)
	assert.Equal(t, 3.2, snapshots[0].GDPGrowth)
	assert.Equal(t, 0.4, snapshots[0].Sentiment)
	// Trend client has no API key configured, so the trend signal degrades
	// even when weather and economic stay live.
	assert.Equal(t, fallbackSearchInterest, snapshots[0].SearchInterest)
	assert.True(t, snapshots[0].Fallback)
}

func TestAdapterWeatherDegradesIndependently(t *testing.T) {
	weather, economic := newUpstreams(t, true, false)
	adapter := NewAdapter(adapterConfig(weather.URL, economic.URL), nil)

	from, to := fetchRange()
	snapshots, err := adapter.Fetch(context.Background(), "jakarta", from, to)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	for _, s := range snapshots {
		assert.True(t, s.Fallback)
		assert.Equal(t, fallbackTemperature, s.Temperature)
		assert.Equal(t, fallbackPrecipitation, s.Precipitation)
		// Economic signal stays live.
		assert.Equal(t, 3.2, s.GDPGrowth)
	}
}

func TestAdapterAllUpstreamsDownStillSucceeds(t *testing.T) {
	weather, economic := newUpstreams(t, true, true)
	adapter := NewAdapter(adapterConfig(weather.URL, economic.URL), nil)

	from, to := fetchRange()
	snapshots, err := adapter.Fetch(context.Background(), "jakarta", from, to)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	for _, s := range snapshots {
		assert.True(t, s.Fallback)
		assert.Equal(t, fallbackGDPGrowth, s.GDPGrowth)
		assert.Equal(t, fallbackInflation, s.Inflation)
	}
}

func TestAdapterRejectsInvertedRange(t *testing.T) {
	weather, economic := newUpstreams(t, false, false)
	adapter := NewAdapter(adapterConfig(weather.URL, economic.URL), nil)

	from, to := fetchRange()
	_, err := adapter.Fetch(context.Background(), "jakarta", to, from)
	require.Error(t, err)
}
