package cache

import (
	"complyflow/internal/model"
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionCache keeps hot conversation state in Redis so chat turns avoid a
// Mongo round trip. Mongo remains the source of truth.
type SessionCache interface {
	Set(ctx context.Context, state *model.ConversationState) error
	Get(ctx context.Context, sessionID string) (*model.ConversationState, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    30 * time.Minute,
	}
}

func (c *sessionCache) Set(ctx context.Context, state *model.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "conv:"+state.SessionID, data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	data, err := c.client.Get(ctx, "conv:"+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *sessionCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, "conv:"+sessionID).Err()
}
