// internal/external/weather.go
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// dailyWeather is one day of upstream weather data.
type dailyWeather struct {
	Date          string  `json:"date"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	Humidity      float64 `json:"humidity"`
}

type weatherResponse struct {
	Location string         `json:"location"`
	Daily    []dailyWeather `json:"daily"`
}

type weatherClient struct {
	baseURL  string
	client   *http.Client
	attempts int
}

func newWeatherClient(baseURL string, timeout time.Duration, attempts int) *weatherClient {
	return &weatherClient{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		attempts: attempts,
	}
}

// Daily fetches per-day weather for a location. Attempts are bounded; the
// caller handles fallback on error.
func (c *weatherClient) Daily(ctx context.Context, location string, from, to time.Time) ([]dailyWeather, error) {
	endpoint := fmt.Sprintf("%s/daily?location=%s&start=%s&end=%s",
		c.baseURL,
		url.QueryEscape(location),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		daily, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return daily, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("weather fetch failed after %d attempts: %w", c.attempts, lastErr)
}

func (c *weatherClient) fetchOnce(ctx context.Context, endpoint string) ([]dailyWeather, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather upstream returned %d", resp.StatusCode)
	}

	var parsed weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if len(parsed.Daily) == 0 {
		return nil, fmt.Errorf("weather upstream returned no daily data")
	}

	return parsed.Daily, nil
}
