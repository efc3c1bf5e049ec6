// Package cache keeps recently generated rankings in Redis so repeated
// lookups of the same request skip Postgres.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	matchKeyPrefix = "matching:request:%s"
	coachCountKey  = "matching:coaches:count"
	statsKey       = "matching:stats"
	DefaultTTL     = time.Hour
)

type MatchCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewMatchCache returns a cache over client. A nil client yields a cache
// that always misses.
func NewMatchCache(client *redis.Client, ttl time.Duration) *MatchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MatchCache{redis: client, ttl: ttl}
}

func (c *MatchCache) Enabled() bool {
	return c != nil && c.redis != nil
}

// Get returns the cached results for requestID and whether they were found.
func (c *MatchCache) Get(ctx context.Context, requestID string) ([]models.MatchResult, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	raw, err := c.redis.Get(ctx, matchKey(requestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var results []models.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("decode cached matches: %w", err)
	}
	return results, true, nil
}

func (c *MatchCache) Set(ctx context.Context, requestID string, results []models.MatchResult) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, matchKey(requestID), payload, c.ttl).Err()
}

func (c *MatchCache) Invalidate(ctx context.Context, requestID string) error {
	if !c.Enabled() {
		return nil
	}
	return c.redis.Del(ctx, matchKey(requestID)).Err()
}

// CoachCount returns the cached roster size used by the health check.
func (c *MatchCache) CoachCount(ctx context.Context) (int, bool, error) {
	if !c.Enabled() {
		return 0, false, nil
	}
	count, err := c.redis.Get(ctx, coachCountKey).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (c *MatchCache) SetCoachCount(ctx context.Context, count int) error {
	if !c.Enabled() {
		return nil
	}
	return c.redis.Set(ctx, coachCountKey, count, time.Minute).Err()
}

// RecordProcessing adds one request to the counters shared by every
// instance.
func (c *MatchCache) RecordProcessing(ctx context.Context, matches int, elapsedMS int64) error {
	if !c.Enabled() {
		return nil
	}
	pipe := c.redis.TxPipeline()
	pipe.HIncrBy(ctx, statsKey, "requests", 1)
	pipe.HIncrBy(ctx, statsKey, "matches", int64(matches))
	pipe.HIncrBy(ctx, statsKey, "total_ms", elapsedMS)
	pipe.HSet(ctx, statsKey, "last_ms", elapsedMS)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *MatchCache) ProcessingStats(ctx context.Context) (models.MatchingStats, bool, error) {
	if !c.Enabled() {
		return models.MatchingStats{}, false, nil
	}
	fields, err := c.redis.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return models.MatchingStats{}, false, err
	}
	if len(fields) == 0 {
		return models.MatchingStats{}, false, nil
	}
	return statsFromFields(fields)
}

func statsFromFields(fields map[string]string) (models.MatchingStats, bool, error) {
	counters := make(map[string]int64, 4)
	for _, name := range []string{"requests", "matches", "total_ms", "last_ms"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.MatchingStats{}, false, fmt.Errorf("decode stats field %s: %w", name, err)
		}
		counters[name] = value
	}

	stats := models.MatchingStats{
		TotalRequests:    counters["requests"],
		TotalMatches:     counters["matches"],
		LastProcessingMS: counters["last_ms"],
	}
	if stats.TotalRequests > 0 {
		stats.AverageProcessingMS = float64(counters["total_ms"]) / float64(stats.TotalRequests)
	}
	return stats, true, nil
}

func (c *MatchCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

func matchKey(requestID string) string {
	return fmt.Sprintf(matchKeyPrefix, requestID)
}
