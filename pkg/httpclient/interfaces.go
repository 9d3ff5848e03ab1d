package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject fakes or different transports.
// A non-nil error means the transport itself failed; any HTTP status is a Response.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
