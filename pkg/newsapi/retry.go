package newsapi

import (
	"context"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds automatic retries of transient failures. The zero value disables
// retries: every failure is terminal and the caller decides whether to call again.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

const (
	defaultRetryInitial = 500 * time.Millisecond
	defaultRetryMax     = 5 * time.Second
)

func (p RetryPolicy) enabled() bool { return p.MaxRetries > 0 }

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	if !p.enabled() {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	if exp.InitialInterval <= 0 {
		exp.InitialInterval = defaultRetryInitial
	}
	exp.MaxInterval = p.MaxInterval
	if exp.MaxInterval <= 0 {
		exp.MaxInterval = defaultRetryMax
	}
	exp.Multiplier = 2
	// the attempt count, not elapsed time, bounds the loop
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxRetries)), ctx)
}

// retryableStatus reports statuses worth another attempt when retries are enabled.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
