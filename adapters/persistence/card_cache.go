package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nhattran/cardfolio/internal/domain/card"
)

const cardCacheTTL = 5 * time.Minute

type redisCardCache struct {
	client *redis.Client
}

func NewRedisCardCache(client *redis.Client) card.Cache {
	return &redisCardCache{client: client}
}

func cardCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("card:record:%s", id.String())
}

func (r *redisCardCache) Get(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	val, err := r.client.Get(ctx, cardCacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("card cache get failed: %w", err)
	}

	c := &card.Card{}
	if err := json.Unmarshal(val, c); err != nil {
		return nil, fmt.Errorf("card cache value corrupted: %w", err)
	}
	return c, nil
}

func (r *redisCardCache) Set(ctx context.Context, c *card.Card) error {
	val, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cannot marshal card for cache: %w", err)
	}
	return r.client.Set(ctx, cardCacheKey(c.ID), val, cardCacheTTL).Err()
}

func (r *redisCardCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, cardCacheKey(id)).Err()
}

// CardViewCounter folds card-view events into per-card counters. Written by
// the worker, read out of band.
type CardViewCounter struct {
	client *redis.Client
}

func NewCardViewCounter(client *redis.Client) *CardViewCounter {
	return &CardViewCounter{client: client}
}

func (c *CardViewCounter) Increment(ctx context.Context, cardID uuid.UUID) error {
	return c.client.Incr(ctx, fmt.Sprintf("card:views:%s", cardID.String())).Err()
}

func (c *CardViewCounter) Count(ctx context.Context, cardID uuid.UUID) (int64, error) {
	n, err := c.client.Get(ctx, fmt.Sprintf("card:views:%s", cardID.String())).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
