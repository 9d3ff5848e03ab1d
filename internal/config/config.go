package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files, environment variables
// and command-line flags.
type Config struct {
	AppName   string `mapstructure:"app_name"`
	Env       string `mapstructure:"app_env"`
	LogLevel  string `mapstructure:"log_level"`
	LogOutput string `mapstructure:"log_output"`

	NewsAPIBaseURL         string        `mapstructure:"newsapi_base_url"`
	NewsAPIKey             string        `mapstructure:"newsapi_key"`
	HTTPTimeoutSeconds     int64         `mapstructure:"http_timeout_seconds"`
	RequestDeadlineSeconds int64         `mapstructure:"request_deadline_seconds"`
	HTTPTimeout            time.Duration `mapstructure:"-"`
	RequestDeadline        time.Duration `mapstructure:"-"`

	RetryMax             int           `mapstructure:"retry_max"`
	RetryInitialMillis   int64         `mapstructure:"retry_initial_ms"`
	RetryMaxIntervalMS   int64         `mapstructure:"retry_max_interval_ms"`
	RetryInitialInterval time.Duration `mapstructure:"-"`
	RetryMaxInterval     time.Duration `mapstructure:"-"`
	RateLimitRPS         float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst       int           `mapstructure:"rate_limit_burst"`

	WatchesFile         string        `mapstructure:"watches_file"`
	SinksFile           string        `mapstructure:"sinks_file"`
	PollIntervalSeconds int64         `mapstructure:"poll_interval"`
	PollInterval        time.Duration `mapstructure:"-"`
	DeskConcurrency     int           `mapstructure:"desk_concurrency"`
	EnrichArticles      bool          `mapstructure:"enrich_articles"`

	StorageType            string        `mapstructure:"storage_type"`
	StoragePath            string        `mapstructure:"storage_path"`
	RedisURL               string        `mapstructure:"redis_url"`
	ArticleTTLSeconds      int64         `mapstructure:"article_ttl_seconds"`
	ResponseTTLSeconds     int64         `mapstructure:"response_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	ArticleTTL             time.Duration `mapstructure:"-"`
	ResponseTTL            time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"api-key":   "newsapi_key",
	"base-url":  "newsapi_base_url",
	"log-level": "log_level",
	"timeout":   "request_deadline_seconds",
	"retries":   "retry_max",
	"watches":   "watches_file",
	"sinks":     "sinks_file",
	"storage":   "storage_type",
}

// Load reads configuration from configs/.env, environment variables and, when fs is
// non-nil, any of its flags the user set explicitly.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-newsdesk")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_output", "stdout")
	v.SetDefault("newsapi_base_url", "https://newsapi.org/v2/")
	v.SetDefault("newsapi_key", "")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("request_deadline_seconds", 30)
	v.SetDefault("retry_max", 0)
	v.SetDefault("retry_initial_ms", 500)
	v.SetDefault("retry_max_interval_ms", 5000)
	v.SetDefault("rate_limit_rps", 0.0)
	v.SetDefault("rate_limit_burst", 1)
	v.SetDefault("watches_file", "./configs/watches.yaml")
	v.SetDefault("sinks_file", "./configs/sinks.yaml")
	v.SetDefault("poll_interval", 900) // seconds
	v.SetDefault("desk_concurrency", 4)
	v.SetDefault("enrich_articles", true)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("storage_path", "./data/newsdesk.db")
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("article_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("response_ttl_seconds", 0)
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) finalize() error {
	cfg.NewsAPIKey = strings.TrimSpace(cfg.NewsAPIKey)
	if cfg.NewsAPIKey == "" {
		return errors.New("newsapi_key is required")
	}

	var errs []error
	positive := func(name string, v int64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("invalid %s (must be positive seconds)", name))
		}
	}
	positive("http_timeout_seconds", cfg.HTTPTimeoutSeconds)
	positive("request_deadline_seconds", cfg.RequestDeadlineSeconds)
	positive("poll_interval", cfg.PollIntervalSeconds)
	positive("article_ttl_seconds", cfg.ArticleTTLSeconds)
	positive("storage_cleanup_interval_seconds", cfg.StorageCleanupSeconds)

	if cfg.ResponseTTLSeconds < 0 {
		errs = append(errs, errors.New("invalid response_ttl_seconds (must not be negative)"))
	}
	if cfg.RetryMax < 0 {
		errs = append(errs, errors.New("invalid retry_max (must not be negative)"))
	}
	if cfg.RetryMax > 0 && (cfg.RetryInitialMillis <= 0 || cfg.RetryMaxIntervalMS < cfg.RetryInitialMillis) {
		errs = append(errs, errors.New("invalid retry intervals (need 0 < retry_initial_ms <= retry_max_interval_ms)"))
	}
	if cfg.RateLimitRPS < 0 || (cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0) {
		errs = append(errs, errors.New("invalid rate limit (rps must not be negative, burst must be positive)"))
	}
	if cfg.DeskConcurrency <= 0 {
		errs = append(errs, errors.New("invalid desk_concurrency (must be positive)"))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	cfg.RequestDeadline = time.Duration(cfg.RequestDeadlineSeconds) * time.Second
	cfg.RetryInitialInterval = time.Duration(cfg.RetryInitialMillis) * time.Millisecond
	cfg.RetryMaxInterval = time.Duration(cfg.RetryMaxIntervalMS) * time.Millisecond
	cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	cfg.ArticleTTL = time.Duration(cfg.ArticleTTLSeconds) * time.Second
	cfg.ResponseTTL = time.Duration(cfg.ResponseTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second
	return nil
}

// Redacted returns a copy safe to log: the API key is masked down to its last four
// characters.
func (cfg Config) Redacted() Config {
	key := cfg.NewsAPIKey
	switch {
	case key == "":
	case len(key) <= 4:
		cfg.NewsAPIKey = "****"
	default:
		cfg.NewsAPIKey = "****" + key[len(key)-4:]
	}
	return cfg
}
