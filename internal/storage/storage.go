// Package storage keeps the desk's dedupe ledger and the newsapi response cache.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks published article IDs and caches raw API responses.
// A store whose ResponseTTL is zero never answers from the response cache.
type Store interface {
	Close() error
	SeenArticle(id string) (bool, error)
	MarkArticle(id string) error
	CachedResponse(key string) ([]byte, bool, error)
	CacheResponse(key string, body []byte) error
}

// Options controls location and retention for concrete store implementations.
type Options struct {
	Path            string
	RedisURL        string
	ArticleTTL      time.Duration
	ResponseTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultArticleTTL      = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend: none, bbolt, memory or redis.
func NewStore(typ string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(opts.Path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(opts.Path, opts)
	case "memory":
		return newMemoryStore(opts), nil
	case "redis":
		if strings.TrimSpace(opts.RedisURL) == "" {
			return nil, fmt.Errorf("redis storage requires a url")
		}
		return openRedis(opts.RedisURL, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ArticleTTL <= 0 {
		opts.ArticleTTL = defaultArticleTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.ResponseTTL < 0 {
		opts.ResponseTTL = 0
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                { return nil }
func (noopStore) SeenArticle(string) (bool, error)            { return false, nil }
func (noopStore) MarkArticle(string) error                    { return nil }
func (noopStore) CachedResponse(string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) CacheResponse(string, []byte) error          { return nil }
