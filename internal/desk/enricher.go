package desk

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Enricher fetches article pages and fills empty title, description and image
// fields from OG tags. Fields NewsAPI already supplied are never overwritten.
type Enricher struct {
	client httpclient.Client
	delay  time.Duration
	log    logger.Logger
}

// NewEnricher constructs an enricher. delay throttles consecutive page fetches.
func NewEnricher(client httpclient.Client, delay time.Duration, log logger.Logger) *Enricher {
	if client == nil {
		client = httpclient.NewRestyClient(httpclient.Config{})
	}
	if log == nil {
		log = logger.NopLogger()
	}
	return &Enricher{client: client, delay: delay, log: log}
}

// Enrich returns a copy of articles with missing metadata back-filled. On
// cancellation it returns what it has so far.
func (e *Enricher) Enrich(ctx context.Context, articles []newsapi.Article) []newsapi.Article {
	out := append([]newsapi.Article(nil), articles...)

	fetched := 0
	for i, art := range articles {
		if !needsEnrichment(art) {
			continue
		}

		if fetched > 0 && e.delay > 0 {
			timer := time.NewTimer(e.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return out
		}
		fetched++

		meta, err := e.fetchMeta(ctx, art.URL)
		if err != nil {
			e.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
			continue
		}
		out[i] = merge(art, meta)
	}
	return out
}

func needsEnrichment(a newsapi.Article) bool {
	if strings.TrimSpace(a.URL) == "" {
		return false
	}
	return a.Title == "" || a.Description == "" || a.ImageURL == ""
}

func merge(a newsapi.Article, meta pageMeta) newsapi.Article {
	if a.Title == "" {
		a.Title = meta.Title
	}
	if a.Description == "" {
		a.Description = meta.Description
	}
	if a.ImageURL == "" {
		a.ImageURL = meta.ImageURL
	}
	return a
}

func (e *Enricher) fetchMeta(ctx context.Context, url string) (pageMeta, error) {
	resp, err := e.client.Get(ctx, url, map[string]string{"Accept": "text/html"})
	if err != nil {
		return pageMeta{}, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return pageMeta{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return parseMeta(body)
}

type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	content := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			content(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			content(`meta[property="og:description"]`),
			content(`meta[name="description"]`),
		),
		ImageURL: firstNonEmpty(
			content(`meta[property="og:image"]`),
			content(`meta[name="twitter:image"]`),
		),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
