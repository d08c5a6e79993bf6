// internal/external/economic.go
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// economicIndicators are the country-level signals applied uniformly over
// a forecast range.
type economicIndicators struct {
	GDPGrowth    float64 `json:"gdp_growth"`
	Inflation    float64 `json:"inflation"`
	Unemployment float64 `json:"unemployment"`
	Sentiment    float64 `json:"sentiment"`
}

type economicClient struct {
	baseURL  string
	client   *http.Client
	attempts int
}

func newEconomicClient(baseURL string, timeout time.Duration, attempts int) *economicClient {
	return &economicClient{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		attempts: attempts,
	}
}

// Indicators fetches the current macro indicators for a location.
func (c *economicClient) Indicators(ctx context.Context, location string) (economicIndicators, error) {
	endpoint := fmt.Sprintf("%s/indicators?location=%s", c.baseURL, url.QueryEscape(location))

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return economicIndicators{}, err
		}

		ind, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return ind, nil
		}
		lastErr = err
	}

	return economicIndicators{}, fmt.Errorf("economic fetch failed after %d attempts: %w", c.attempts, lastErr)
}

func (c *economicClient) fetchOnce(ctx context.Context, endpoint string) (economicIndicators, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return economicIndicators{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return economicIndicators{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return economicIndicators{}, fmt.Errorf("economic upstream returned %d", resp.StatusCode)
	}

	var parsed economicIndicators
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return economicIndicators{}, fmt.Errorf("decode economic response: %w", err)
	}

	return parsed, nil
}
