package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, userID string) ([]domain.CartEntry, error) {
	key := cacheKey(userID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entries []domain.CartEntry
	if err2 := json.Unmarshal(data, &entries); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return entries, nil
}

// Generation returns the user's current generation, 0 if it was never bumped.
func (r RedisCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// Set stores entries only while the generation still equals generation. The
// generation key is watched so a Delete racing the write aborts it.
func (r RedisCache) Set(ctx context.Context, userID string, generation int64, entries []domain.CartEntry) error {
	if entries == nil {
		entries = []domain.CartEntry{}
	}
	key := cacheKey(userID)
	genKey := generationKey(userID)
	jsonCart, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// jitter spreads expirations of carts cached at the same moment
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return ErrStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(jsonCart), ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return ErrStaleGeneration
	default:
		return fmt.Errorf("redis set failed: %w", err)
	}
}

// Delete drops the cached view and bumps the generation in one transaction.
// The generation key carries no TTL so it never falls back to a value a
// pending Set could still hold.
func (r RedisCache) Delete(ctx context.Context, userID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func generationKey(userID string) string {
	return fmt.Sprintf("cart:%s:gen", userID)
}
