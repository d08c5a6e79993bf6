package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retailpulse/forecast-engine/internal/config"
	"github.com/retailpulse/forecast-engine/internal/domain"
)

const (
	forecastKeyPrefix     = "forecast:result"
	forecastScanBatchSize = 100
)

// ForecastCache stores blended forecast results so identical requests hit
// cache instead of recomputing the blend.
type ForecastCache interface {
	Get(ctx context.Context, productID string, horizon int, vertical domain.Vertical, location string, withFactors bool) (*domain.ForecastResult, bool, error)
	Set(ctx context.Context, productID string, horizon int, vertical domain.Vertical, location string, withFactors bool, result *domain.ForecastResult) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg, cfg.ForecastTTLSeconds)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{client: client, ttl: ttl}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) Get(ctx context.Context, productID string, horizon int, vertical domain.Vertical, location string, withFactors bool) (*domain.ForecastResult, bool, error) {
	key := ForecastKey(productID, horizon, vertical, location, withFactors)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.ForecastResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, productID string, horizon int, vertical domain.Vertical, location string, withFactors bool, result *domain.ForecastResult) error {
	key := ForecastKey(productID, horizon, vertical, location, withFactors)
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatchSize)
}

func (n *noopForecastCache) Get(ctx context.Context, productID string, horizon int, vertical domain.Vertical, location string, withFactors bool) (*domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) Set(ctx context.Context, productID string, horizon int, vertical domain.Vertical, location string, withFactors bool, result *domain.ForecastResult) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// ForecastKey derives the deterministic cache key for a forecast request.
func ForecastKey(productID string, horizon int, vertical domain.Vertical, location string, withFactors bool) string {
	raw := strings.Join([]string{
		"product=" + strings.TrimSpace(productID),
		"horizon=" + strconv.Itoa(horizon),
		"vertical=" + string(vertical),
		"location=" + strings.ToLower(strings.TrimSpace(location)),
		"factors=" + strconv.FormatBool(withFactors),
	}, "|")
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", forecastKeyPrefix, hex.EncodeToString(sum[:]))
}
