package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
)

// Lookup commands understood by RunLookup.
const (
	CommandHeadlines = "headlines"
	CommandTop       = "top"
	CommandSearch    = "search"
	CommandSources   = "sources"
	CommandSource    = "source"
)

// Sort orders for the sources command.
const (
	SortDefault  = "default"
	SortCategory = "category"
)

// Lookup describes one newsctl invocation. Query must already be URL-escaped.
type Lookup struct {
	Command  string
	Category string
	Page     string
	Query    string
	SourceID string
	Filter   string
	Sort     string
}

type sourceView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	DisplayCategory string `json:"display_category"`
}

// RunLookup performs l against client and writes the result to w as indented JSON.
// Results are delivered through the client's continuation and executor, like any
// other caller of the asynchronous API.
func RunLookup(ctx context.Context, client *newsapi.Client, l Lookup, w io.Writer) error {
	if client == nil {
		return fmt.Errorf("newsapi client must not be nil")
	}

	var out any
	switch strings.ToLower(strings.TrimSpace(l.Command)) {
	case CommandHeadlines, "":
		articles, err := await(ctx, func(done func(newsapi.Result[[]newsapi.Article])) {
			client.FetchDefaultHeadlines(ctx, done)
		})
		if err != nil {
			return err
		}
		out = articles
	case CommandTop:
		articles, err := await(ctx, func(done func(newsapi.Result[[]newsapi.Article])) {
			client.FetchTopHeadlines(ctx, l.Category, l.Page, done)
		})
		if err != nil {
			return err
		}
		out = articles
	case CommandSearch:
		articles, err := await(ctx, func(done func(newsapi.Result[[]newsapi.Article])) {
			client.SearchArticles(ctx, l.Query, done)
		})
		if err != nil {
			return err
		}
		out = articles
	case CommandSource:
		articles, err := await(ctx, func(done func(newsapi.Result[[]newsapi.Article])) {
			client.FetchArticlesFromSource(ctx, l.SourceID, done)
		})
		if err != nil {
			return err
		}
		out = articles
	case CommandSources:
		all, err := await(ctx, func(done func(newsapi.Result[newsapi.AllNewsSources])) {
			client.ListSources(ctx, done)
		})
		if err != nil {
			return err
		}
		views, err := sourceViews(all.Sources, l.Filter, l.Sort)
		if err != nil {
			return err
		}
		out = views
	default:
		return fmt.Errorf("unknown command %q", l.Command)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func sourceViews(sources []newsapi.Category, filter, order string) ([]sourceView, error) {
	list := newsapi.FilterSources(sources, filter)
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", SortDefault:
	case SortCategory:
		list = newsapi.SortByCategory(list)
	default:
		return nil, fmt.Errorf("unknown sort order %q", order)
	}

	views := make([]sourceView, 0, len(list))
	for _, s := range list {
		views = append(views, sourceView{
			ID:              s.ID,
			Name:            s.Name,
			Category:        s.Category,
			DisplayCategory: s.DisplayCategory(),
		})
	}
	return views, nil
}

// await starts a call and blocks until its continuation delivers the result.
func await[T any](ctx context.Context, start func(done func(newsapi.Result[T]))) (T, error) {
	results := make(chan newsapi.Result[T], 1)
	start(func(r newsapi.Result[T]) { results <- r })

	select {
	case r := <-results:
		return r.Value, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
