package desk

import (
	"context"

	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
	"github.com/samvad-hq/samvad-newsdesk/pkg/sinks"
)

// ArticleSource runs one article-returning endpoint. *newsapi.Client satisfies it.
type ArticleSource interface {
	Articles(ctx context.Context, ep newsapi.Endpoint) ([]newsapi.Article, error)
}

// ArticleEnricher back-fills article metadata (e.g., OG tags).
type ArticleEnricher interface {
	Enrich(ctx context.Context, articles []newsapi.Article) []newsapi.Article
}

// EventPublisher publishes fresh articles downstream and reports how many sinks accepted each one.
type EventPublisher interface {
	Publish(ctx context.Context, evt sinks.Event) (int, error)
}

// Deduper remembers which articles were already published.
type Deduper interface {
	SeenArticle(id string) (bool, error)
	MarkArticle(id string) error
}
