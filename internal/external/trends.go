// internal/external/trends.go
package external

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// trendsClient derives a crude search-interest signal from Custom Search
// result volume. A missing API key disables it, which the adapter treats
// like any other upstream failure.
type trendsClient struct {
	apiKey   string
	engineID string
	timeout  time.Duration
}

func newTrendsClient(apiKey, engineID string, timeout time.Duration) *trendsClient {
	return &trendsClient{apiKey: apiKey, engineID: engineID, timeout: timeout}
}

// SearchInterest returns a [0,1] interest score for a query. The raw
// result count is normalized on a log scale: ~10^9 results saturate at 1.
func (c *trendsClient) SearchInterest(ctx context.Context, query string) (float64, error) {
	if c.apiKey == "" || c.engineID == "" {
		return 0, fmt.Errorf("search api not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return 0, fmt.Errorf("create search service: %w", err)
	}

	resp, err := svc.Cse.List().Cx(c.engineID).Q(query).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("search query failed: %w", err)
	}
	if resp.SearchInformation == nil {
		return 0, fmt.Errorf("search response missing result info")
	}

	total, err := strconv.ParseInt(resp.SearchInformation.TotalResults, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse result count: %w", err)
	}

	interest := math.Log10(float64(total)+1) / 9.0
	if interest > 1 {
		interest = 1
	}
	return interest, nil
}
