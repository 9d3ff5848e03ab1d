package newsapi

import (
	"context"
	"errors"
	"strings"
)

// DefaultBaseURL is the NewsAPI v2 root.
const DefaultBaseURL = "https://newsapi.org/v2/"

// Client issues NewsAPI calls. It holds no per-call state and is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	disp    *Dispatcher
}

// New constructs a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("newsapi: api key is empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, newError("new_client", ErrInvalidURL, err)
	}

	var s settings
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}

	return &Client{
		baseURL: base.String(),
		apiKey:  apiKey,
		disp: NewDispatcher(DispatcherConfig{
			HTTP:     s.http,
			Executor: s.exec,
			Timeout:  s.timeout,
			Retry:    s.retry,
			Limiter:  s.limiter,
			Cache:    s.cache,
			Logger:   s.log,
		}),
	}, nil
}

// BaseURL returns the normalised base URL requests are built against.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchTopHeadlines lists US top headlines for category. An empty page means "1".
func (c *Client) FetchTopHeadlines(ctx context.Context, category, page string, done func(Result[[]Article])) *Call[[]Article] {
	return send(ctx, c, TopHeadlinesByCategory{Category: category, Page: page}, decodeArticles, done)
}

// FetchDefaultHeadlines lists US top headlines across all categories.
func (c *Client) FetchDefaultHeadlines(ctx context.Context, done func(Result[[]Article])) *Call[[]Article] {
	return send(ctx, c, TopHeadlines{}, decodeArticles, done)
}

// SearchArticles searches every indexed article for query. The query is sent as is;
// escape it with url.QueryEscape if it contains characters not allowed in a URL.
func (c *Client) SearchArticles(ctx context.Context, query string, done func(Result[[]Article])) *Call[[]Article] {
	return send(ctx, c, Search{Query: query}, decodeArticles, done)
}

// ListSources lists English-language news sources.
func (c *Client) ListSources(ctx context.Context, done func(Result[AllNewsSources])) *Call[AllNewsSources] {
	return send(ctx, c, ListSources{}, DecodeSources, done)
}

// FetchArticlesFromSource lists top headlines from one source.
func (c *Client) FetchArticlesFromSource(ctx context.Context, sourceID string, done func(Result[[]Article])) *Call[[]Article] {
	return send(ctx, c, TopHeadlinesFromSource{SourceID: sourceID}, decodeArticles, done)
}

// FetchArticles dispatches any article-returning endpoint.
func (c *Client) FetchArticles(ctx context.Context, ep Endpoint, done func(Result[[]Article])) *Call[[]Article] {
	return send(ctx, c, ep, decodeArticles, done)
}

// Articles is the blocking form of FetchArticles.
func (c *Client) Articles(ctx context.Context, ep Endpoint) ([]Article, error) {
	return c.FetchArticles(ctx, ep, nil).await()
}

// Sources is the blocking form of ListSources.
func (c *Client) Sources(ctx context.Context) (AllNewsSources, error) {
	return c.ListSources(ctx, nil).await()
}

func send[T any](ctx context.Context, c *Client, ep Endpoint, decode func([]byte) (T, error), done func(Result[T])) *Call[T] {
	req, err := BuildRequest(ep, c.baseURL, c.apiKey)
	if err != nil {
		op := "unknown"
		if ep != nil {
			op = ep.Name()
		}
		return failed(c.disp, op, withOp(op, err), done)
	}
	return Dispatch(ctx, c.disp, req, decode, done)
}

func decodeArticles(body []byte) ([]Article, error) {
	list, err := DecodeArticleList(body)
	if err != nil {
		return nil, err
	}
	return list.Articles, nil
}
