package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PhraseCache memoizes AI-rephrased question prompts. Rephrasings are
// deterministic per question and tone, so one generation serves every
// session on the same standard.
type PhraseCache interface {
	Get(ctx context.Context, standardID, questionID, tone string) (string, error)
	Set(ctx context.Context, standardID, questionID, tone, phrased string) error
}

type phraseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPhraseCache creates a new phrase cache
func NewPhraseCache(client *redis.Client) PhraseCache {
	return &phraseCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *phraseCache) key(standardID, questionID, tone string) string {
	return fmt.Sprintf("std:%s:q:%s:phrase:%s", standardID, questionID, tone)
}

func (c *phraseCache) Get(ctx context.Context, standardID, questionID, tone string) (string, error) {
	phrased, err := c.client.Get(ctx, c.key(standardID, questionID, tone)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return phrased, nil
}

func (c *phraseCache) Set(ctx context.Context, standardID, questionID, tone, phrased string) error {
	return c.client.Set(ctx, c.key(standardID, questionID, tone), phrased, c.ttl).Err()
}
