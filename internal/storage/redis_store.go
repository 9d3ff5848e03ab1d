package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisSeenPrefix     = "newsdesk:seen:"
	redisResponsePrefix = "newsdesk:response:"
	redisOpTimeout      = 3 * time.Second
)

// redisStore shares the dedupe ledger and response cache between desk replicas.
// Expiry is left to redis key TTLs.
type redisStore struct {
	client      *redis.Client
	articleTTL  time.Duration
	responseTTL time.Duration
}

func openRedis(url string, opts Options) (Store, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &redisStore{
		client:      client,
		articleTTL:  opts.ArticleTTL,
		responseTTL: opts.ResponseTTL,
	}, nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}

func (r *redisStore) SeenArticle(id string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, redisSeenPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *redisStore) MarkArticle(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, redisSeenPrefix+id, "1", r.articleTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *redisStore) CachedResponse(key string) ([]byte, bool, error) {
	if r.responseTTL <= 0 {
		return nil, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	body, err := r.client.Get(ctx, redisResponsePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return body, true, nil
}

func (r *redisStore) CacheResponse(key string, body []byte) error {
	if r.responseTTL <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, redisResponsePrefix+key, body, r.responseTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
