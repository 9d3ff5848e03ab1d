package newsapi

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
)

// Option configures a Client during construction in New.
type Option func(*settings) error

type settings struct {
	http    httpclient.Client
	timeout time.Duration
	exec    Executor
	retry   RetryPolicy
	limiter *rate.Limiter
	cache   ResponseCache
	log     Logger
}

// WithHTTPClient replaces the default resty transport.
func WithHTTPClient(c httpclient.Client) Option {
	return func(s *settings) error {
		if c == nil {
			return fmt.Errorf("http client must not be nil")
		}
		s.http = c
		return nil
	}
}

// WithTimeout sets the deadline applied to every call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be > 0")
		}
		s.timeout = d
		return nil
	}
}

// WithExecutor sets where continuations run. The default is Inline. A closed
// SerialExecutor runs late continuations inline instead of dropping them.
func WithExecutor(e Executor) Option {
	return func(s *settings) error {
		if e == nil {
			return fmt.Errorf("executor must not be nil")
		}
		s.exec = e
		return nil
	}
}

// WithRetry enables bounded retries of transport failures and 429/502/503/504 responses.
func WithRetry(p RetryPolicy) Option {
	return func(s *settings) error {
		if p.MaxRetries < 0 {
			return fmt.Errorf("max retries must be >= 0")
		}
		s.retry = p
		return nil
	}
}

// WithRateLimit caps outgoing requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *settings) error {
		if rps <= 0 {
			return fmt.Errorf("rate limit must be > 0")
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithResponseCache answers repeated requests from cache.
func WithResponseCache(cache ResponseCache) Option {
	return func(s *settings) error {
		s.cache = cache
		return nil
	}
}

// WithLogger sets the client's logger.
func WithLogger(log Logger) Option {
	return func(s *settings) error {
		s.log = log
		return nil
	}
}
