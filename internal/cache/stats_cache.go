package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// StatsCache accumulates per-standard answer counters in Redis hashes so
// reports can read live aggregates without scanning every session.
type StatsCache interface {
	IncrementCategory(ctx context.Context, standardID, category string, answered, negative int) error
	GetCategoryStats(ctx context.Context, standardID string) (map[string]CategoryCounts, error)
	Reset(ctx context.Context, standardID string) error
}

// CategoryCounts is the live counter pair for one category
type CategoryCounts struct {
	Answered int `json:"answered"`
	Negative int `json:"negative"`
}

type statsCache struct {
	client *redis.Client
}

// NewStatsCache creates a new stats cache
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{
		client: client,
	}
}

func (c *statsCache) key(standardID string) string {
	return fmt.Sprintf("std:%s:stats", standardID)
}

func (c *statsCache) IncrementCategory(ctx context.Context, standardID, category string, answered, negative int) error {
	key := c.key(standardID)
	if answered != 0 {
		if err := c.client.HIncrBy(ctx, key, category+":answered", int64(answered)).Err(); err != nil {
			return err
		}
	}
	if negative != 0 {
		if err := c.client.HIncrBy(ctx, key, category+":negative", int64(negative)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *statsCache) GetCategoryStats(ctx context.Context, standardID string) (map[string]CategoryCounts, error) {
	fields, err := c.client.HGetAll(ctx, c.key(standardID)).Result()
	if err != nil {
		return nil, err
	}

	stats := map[string]CategoryCounts{}
	for field, raw := range fields {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		switch {
		case len(field) > 9 && field[len(field)-9:] == ":answered":
			category := field[:len(field)-9]
			s := stats[category]
			s.Answered = n
			stats[category] = s
		case len(field) > 9 && field[len(field)-9:] == ":negative":
			category := field[:len(field)-9]
			s := stats[category]
			s.Negative = n
			stats[category] = s
		}
	}
	return stats, nil
}

func (c *statsCache) Reset(ctx context.Context, standardID string) error {
	return c.client.Del(ctx, c.key(standardID)).Err()
}
