package desk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
)

type fakeResponse struct {
	body   string
	status int
}

func (f fakeResponse) Body() []byte    { return []byte(f.body) }
func (f fakeResponse) StatusCode() int { return f.status }

type fakePages struct {
	mu    sync.Mutex
	pages map[string]fakeResponse
	calls []string
}

func (f *fakePages) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return page, nil
}

const ogPage = `<html><head>
<title>Fallback title</title>
<meta property="og:title" content=" OG title ">
<meta name="description" content="Plain description">
<meta property="og:image" content="https://img.test/1.jpg">
</head><body></body></html>`

func TestEnrichBackfillsMissingFieldsOnly(t *testing.T) {
	pages := &fakePages{pages: map[string]fakeResponse{
		"https://x.test/a": {body: ogPage, status: http.StatusOK},
	}}
	e := NewEnricher(pages, 0, nil)

	in := []newsapi.Article{
		{Source: newsapi.Source{Name: "Wire"}, Title: "API title", URL: "https://x.test/a"},
		{Source: newsapi.Source{Name: "Wire"}, Title: "t", Description: "d", ImageURL: "i", URL: "https://x.test/complete"},
	}
	out := e.Enrich(context.Background(), in)

	if out[0].Title != "API title" {
		t.Fatalf("existing title must be kept, got %q", out[0].Title)
	}
	if out[0].Description != "Plain description" || out[0].ImageURL != "https://img.test/1.jpg" {
		t.Fatalf("missing fields not back-filled: %+v", out[0])
	}
	if in[0].Description != "" {
		t.Fatalf("input slice must not be modified")
	}
	if len(pages.calls) != 1 {
		t.Fatalf("complete articles should not be fetched, calls=%v", pages.calls)
	}
}

func TestEnrichKeepsArticleOnFailure(t *testing.T) {
	pages := &fakePages{pages: map[string]fakeResponse{
		"https://x.test/404": {body: "gone", status: http.StatusNotFound},
	}}
	e := NewEnricher(pages, 0, nil)

	in := []newsapi.Article{
		{Title: "a", URL: "https://x.test/404"},
		{Title: "b", URL: "https://x.test/unreachable"},
		{Title: "c"},
	}
	out := e.Enrich(context.Background(), in)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("article %d changed on failure: %+v", i, out[i])
		}
	}
	if len(pages.calls) != 2 {
		t.Fatalf("articles without url must be skipped, calls=%v", pages.calls)
	}
}

func TestEnrichStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := &fakePages{}
	out := NewEnricher(pages, 0, nil).Enrich(ctx, []newsapi.Article{{URL: "https://x.test/a"}})
	if len(out) != 1 || len(pages.calls) != 0 {
		t.Fatalf("cancelled enrich should return input untouched, calls=%v", pages.calls)
	}
}

func TestParseMetaFallbacks(t *testing.T) {
	meta, err := parseMeta([]byte(`<html><head><title> Only title </title><meta name="twitter:image" content="tw.jpg"></head></html>`))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "Only title" || meta.ImageURL != "tw.jpg" || meta.Description != "" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}
