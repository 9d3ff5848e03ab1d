package newsapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
)

// Result is the outcome of one call: a value or an error, never both.
type Result[T any] struct {
	Value T
	Err   error
}

// ResponseCache stores raw response bodies keyed by request URL.
type ResponseCache interface {
	CachedResponse(key string) ([]byte, bool, error)
	CacheResponse(key string, body []byte) error
}

// Dispatcher sends requests and delivers decoded results to continuations.
type Dispatcher struct {
	http    httpclient.Client
	exec    Executor
	timeout time.Duration
	retry   RetryPolicy
	limiter *rate.Limiter
	cache   ResponseCache
	log     Logger
}

// DispatcherConfig carries the Dispatcher's collaborators. Nil fields get defaults.
type DispatcherConfig struct {
	HTTP     httpclient.Client
	Executor Executor
	Timeout  time.Duration
	Retry    RetryPolicy
	Limiter  *rate.Limiter
	Cache    ResponseCache
	Logger   Logger
}

const DefaultRequestTimeout = 30 * time.Second

// NewDispatcher builds a Dispatcher from cfg.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		http:    cfg.HTTP,
		exec:    cfg.Executor,
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
		limiter: cfg.Limiter,
		cache:   cfg.Cache,
		log:     ensureLogger(cfg.Logger),
	}
	if d.http == nil {
		d.http = httpclient.NewRestyClient(httpclient.Config{})
	}
	if d.exec == nil {
		d.exec = Inline
	}
	if d.timeout <= 0 {
		d.timeout = DefaultRequestTimeout
	}
	return d
}

// Call is the handle on one dispatched request.
type Call[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result[T]
}

// Cancel aborts the call if it is still pending. The continuation still runs once,
// with a transport error wrapping context.Canceled.
func (c *Call[T]) Cancel() { c.cancel() }

// Done is closed once the result is available.
func (c *Call[T]) Done() <-chan struct{} { return c.done }

// Result returns the outcome. It is only meaningful after Done is closed.
func (c *Call[T]) Result() Result[T] {
	select {
	case <-c.done:
		return c.result
	default:
		return Result[T]{}
	}
}

// Wait blocks until the call completes or ctx ends. Ending ctx does not cancel the call.
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.result.Value, c.result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// await blocks until the call completes. The call's own context bounds the wait.
func (c *Call[T]) await() (T, error) {
	<-c.done
	return c.result.Value, c.result.Err
}

// Dispatch sends req on a new goroutine, decodes the body with decode and hands the
// result to done on the dispatcher's executor. done runs exactly once; it may be nil.
func Dispatch[T any](ctx context.Context, d *Dispatcher, req *Request, decode func([]byte) (T, error), done func(Result[T])) *Call[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	call := &Call[T]{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer cancel()
		res := execute(ctx, d, req, decode)
		finish(d, call, res, done)
	}()
	return call
}

// failed completes a call that never reached the network.
func failed[T any](d *Dispatcher, op string, err error, done func(Result[T])) *Call[T] {
	call := &Call[T]{cancel: func() {}, done: make(chan struct{})}
	requestsTotal.WithLabelValues(op, outcomeLabel(err)).Inc()
	d.log.WarnObj("newsapi request not sent", "newsapi_build_error", map[string]any{
		"endpoint": op,
		"error":    err.Error(),
	})
	finish(d, call, Result[T]{Err: err}, done)
	return call
}

func finish[T any](d *Dispatcher, call *Call[T], res Result[T], done func(Result[T])) {
	call.result = res
	close(call.done)
	if done != nil {
		d.exec.Execute(func() { done(res) })
	}
}

func execute[T any](ctx context.Context, d *Dispatcher, req *Request, decode func([]byte) (T, error)) Result[T] {
	start := time.Now()
	reqID := uuid.NewString()
	d.log.DebugObj("newsapi request dispatched", "newsapi_request", map[string]any{
		"request_id": reqID,
		"endpoint":   req.Endpoint,
		"url":        req.URL,
	})

	res := resolve(ctx, d, reqID, req, decode)

	requestDuration.WithLabelValues(req.Endpoint).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(req.Endpoint, outcomeLabel(res.Err)).Inc()
	if res.Err != nil {
		d.log.ErrorObj("newsapi request failed", "newsapi_error", map[string]any{
			"request_id": reqID,
			"endpoint":   req.Endpoint,
			"error":      res.Err.Error(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	} else {
		d.log.DebugObj("newsapi request completed", "newsapi_result", map[string]any{
			"request_id": reqID,
			"endpoint":   req.Endpoint,
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	}
	return res
}

func resolve[T any](ctx context.Context, d *Dispatcher, reqID string, req *Request, decode func([]byte) (T, error)) Result[T] {
	if v, ok := fromCache(d, reqID, req, decode); ok {
		return Result[T]{Value: v}
	}

	body, err := d.roundTrip(ctx, reqID, req)
	if err != nil {
		return Result[T]{Err: newError(req.Endpoint, ErrTransport, err)}
	}

	v, err := decode(body)
	if err != nil {
		if KindOf(err) == nil {
			err = newError(req.Endpoint, ErrCouldNotParse, err)
		}
		return Result[T]{Err: withOp(req.Endpoint, err)}
	}

	if d.cache != nil {
		if err := d.cache.CacheResponse(req.URL, body); err != nil {
			d.log.WarnObj("newsapi response cache write failed", "newsapi_cache_error", map[string]any{
				"request_id": reqID,
				"endpoint":   req.Endpoint,
				"error":      err.Error(),
			})
		}
	}
	return Result[T]{Value: v}
}

// fromCache answers from the response cache. Entries that no longer decode are ignored.
func fromCache[T any](d *Dispatcher, reqID string, req *Request, decode func([]byte) (T, error)) (T, bool) {
	var zero T
	if d.cache == nil {
		return zero, false
	}
	body, ok, err := d.cache.CachedResponse(req.URL)
	if err != nil {
		d.log.WarnObj("newsapi response cache read failed", "newsapi_cache_error", map[string]any{
			"request_id": reqID,
			"endpoint":   req.Endpoint,
			"error":      err.Error(),
		})
		return zero, false
	}
	if !ok {
		return zero, false
	}
	v, err := decode(body)
	if err != nil {
		return zero, false
	}
	cacheHitsTotal.WithLabelValues(req.Endpoint).Inc()
	return v, true
}

// statusError carries a response whose status is worth retrying.
type statusError struct {
	resp httpclient.Response
}

func (e *statusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.resp.StatusCode())
}

// roundTrip performs the transport call, retrying per the dispatcher's policy.
// Only a transport failure yields an error; any status with a body is returned as is.
func (d *Dispatcher) roundTrip(ctx context.Context, reqID string, req *Request) ([]byte, error) {
	if !d.retry.enabled() {
		resp, err := d.attempt(ctx, req)
		if err != nil {
			return nil, err
		}
		return bodyOf(resp), nil
	}

	attempts := 0
	op := func() (httpclient.Response, error) {
		if attempts > 0 {
			retriesTotal.WithLabelValues(req.Endpoint).Inc()
		}
		attempts++

		resp, err := d.attempt(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if retryableStatus(resp.StatusCode()) {
			return resp, &statusError{resp: resp}
		}
		return resp, nil
	}
	notify := func(err error, wait time.Duration) {
		d.log.WarnObj("newsapi request retrying", "newsapi_retry", map[string]any{
			"request_id": reqID,
			"endpoint":   req.Endpoint,
			"error":      err.Error(),
			"wait_ms":    wait.Milliseconds(),
		})
	}

	resp, err := backoff.RetryNotifyWithData(op, d.retry.backOff(ctx), notify)
	var se *statusError
	if errors.As(err, &se) {
		return bodyOf(se.resp), nil
	}
	if err != nil {
		return nil, err
	}
	return bodyOf(resp), nil
}

func (d *Dispatcher) attempt(ctx context.Context, req *Request) (httpclient.Response, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return d.http.Get(ctx, req.URL, req.Headers)
}

func bodyOf(resp httpclient.Response) []byte {
	if resp == nil {
		return nil
	}
	return resp.Body()
}
