package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ProgressCache ranks sessions by completion percentage per standard using
// Redis ZSET operations, for officer dashboards.
type ProgressCache interface {
	UpdateProgress(ctx context.Context, standardID, sessionID string, progress int) error
	GetTop(ctx context.Context, standardID string, limit int) ([]ProgressEntry, error)
	GetRank(ctx context.Context, standardID, sessionID string) (int64, error)
}

// ProgressEntry represents one ranked session
type ProgressEntry struct {
	SessionID string `json:"sessionId"`
	Progress  int    `json:"progress"`
	Rank      int    `json:"rank"`
}

type progressCache struct {
	client *redis.Client
}

// NewProgressCache creates a new progress cache
func NewProgressCache(client *redis.Client) ProgressCache {
	return &progressCache{
		client: client,
	}
}

func (c *progressCache) key(standardID string) string {
	return fmt.Sprintf("std:%s:progress", standardID)
}

func (c *progressCache) UpdateProgress(ctx context.Context, standardID, sessionID string, progress int) error {
	return c.client.ZAdd(ctx, c.key(standardID), redis.Z{
		Score:  float64(progress),
		Member: sessionID,
	}).Err()
}

func (c *progressCache) GetTop(ctx context.Context, standardID string, limit int) ([]ProgressEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(standardID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]ProgressEntry, len(results))
	for i, z := range results {
		entries[i] = ProgressEntry{
			SessionID: z.Member.(string),
			Progress:  int(z.Score),
			Rank:      i + 1,
		}
	}
	return entries, nil
}

func (c *progressCache) GetRank(ctx context.Context, standardID, sessionID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(standardID), sessionID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
