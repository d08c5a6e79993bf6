package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retailpulse/forecast-engine/internal/config"
	"github.com/retailpulse/forecast-engine/internal/domain"
)

const (
	factorKeyPrefix     = "external_factors"
	factorScanBatchSize = 100
)

// FactorCache stores fetched external factor snapshots so identical
// location/range requests skip the upstream call within the TTL.
type FactorCache interface {
	Get(ctx context.Context, signal, location string, from, to time.Time) ([]domain.FactorSnapshot, bool, error)
	Set(ctx context.Context, signal, location string, from, to time.Time, snapshots []domain.FactorSnapshot) error
	InvalidateAll(ctx context.Context) error
}

type redisFactorCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopFactorCache struct{}

func NewFactorCache(cfg config.CacheConfig) (FactorCache, error) {
	if !cfg.Enabled {
		return &noopFactorCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg, cfg.FactorTTLSeconds)
	if err != nil {
		return nil, err
	}

	return &redisFactorCache{client: client, ttl: ttl}, nil
}

func NewNoopFactorCache() FactorCache {
	return &noopFactorCache{}
}

func (c *redisFactorCache) Get(ctx context.Context, signal, location string, from, to time.Time) ([]domain.FactorSnapshot, bool, error) {
	key := FactorKey(signal, location, from, to)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var snapshots []domain.FactorSnapshot
	if err := json.Unmarshal(payload, &snapshots); err != nil {
		return nil, false, fmt.Errorf("decode factor cache: %w", err)
	}

	return snapshots, true, nil
}

func (c *redisFactorCache) Set(ctx context.Context, signal, location string, from, to time.Time, snapshots []domain.FactorSnapshot) error {
	key := FactorKey(signal, location, from, to)
	payload, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("encode factor cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisFactorCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, factorKeyPrefix, factorScanBatchSize)
}

func (n *noopFactorCache) Get(ctx context.Context, signal, location string, from, to time.Time) ([]domain.FactorSnapshot, bool, error) {
	return nil, false, nil
}

func (n *noopFactorCache) Set(ctx context.Context, signal, location string, from, to time.Time, snapshots []domain.FactorSnapshot) error {
	return nil
}

func (n *noopFactorCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// FactorKey derives the deterministic cache key for a signal fetch.
// Identical (signal, location, range) tuples always map to the same key.
func FactorKey(signal, location string, from, to time.Time) string {
	raw := strings.Join([]string{
		"signal=" + strings.ToLower(strings.TrimSpace(signal)),
		"location=" + strings.ToLower(strings.TrimSpace(location)),
		"from=" + from.Format("2006-01-02"),
		"to=" + to.Format("2006-01-02"),
	}, "|")
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", factorKeyPrefix, hex.EncodeToString(sum[:]))
}
