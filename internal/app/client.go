package app

import (
	"fmt"

	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/storage"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
)

// NewNewsClient builds a NewsAPI client from config. cache and exec may be nil.
func NewNewsClient(cfg *config.Config, log logger.Logger, cache newsapi.ResponseCache, exec newsapi.Executor) (*newsapi.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger()
	}

	opts := []newsapi.Option{
		newsapi.WithHTTPClient(httpclient.NewRestyClient(httpclient.Config{Timeout: cfg.HTTPTimeout})),
		newsapi.WithTimeout(cfg.RequestDeadline),
		newsapi.WithLogger(log),
	}
	if cfg.RetryMax > 0 {
		opts = append(opts, newsapi.WithRetry(newsapi.RetryPolicy{
			MaxRetries:      cfg.RetryMax,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
		}))
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, newsapi.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	if cache != nil && cfg.ResponseTTL > 0 {
		opts = append(opts, newsapi.WithResponseCache(cache))
	}
	if exec != nil {
		opts = append(opts, newsapi.WithExecutor(exec))
	}

	client, err := newsapi.New(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("init newsapi client: %w", err)
	}
	return client, nil
}

// OpenStore opens the configured storage backend and logs its settings.
func OpenStore(cfg *config.Config, log logger.Logger) (storage.Store, error) {
	store, err := storage.NewStore(cfg.StorageType, storage.Options{
		Path:            cfg.StoragePath,
		RedisURL:        cfg.RedisURL,
		ArticleTTL:      cfg.ArticleTTL,
		ResponseTTL:     cfg.ResponseTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.StoragePath,
		"article_ttl_seconds":      int(cfg.ArticleTTL.Seconds()),
		"response_ttl_seconds":     int(cfg.ResponseTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})
	return store, nil
}
