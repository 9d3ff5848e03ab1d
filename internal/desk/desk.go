// Package desk runs poll passes over the configured watches: fetch, drop already
// published articles, enrich, publish, remember.
package desk

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
	"github.com/samvad-hq/samvad-newsdesk/pkg/sinks"
	"github.com/samvad-hq/samvad-newsdesk/pkg/watches"
)

const defaultConcurrency = 4

// Service coordinates a poll pass across watches.
type Service struct {
	source      ArticleSource
	enricher    ArticleEnricher
	publisher   EventPublisher
	dedupe      Deduper
	log         logger.Logger
	concurrency int
}

// NewService wires a desk. enricher and dedupe may be nil.
func NewService(src ArticleSource, enricher ArticleEnricher, pub EventPublisher, dedupe Deduper, log logger.Logger, concurrency int) *Service {
	if log == nil {
		log = logger.NopLogger()
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		source:      src,
		enricher:    enricher,
		publisher:   pub,
		dedupe:      dedupe,
		log:         log,
		concurrency: concurrency,
	}
}

// PassStats summarises one pass.
type PassStats struct {
	Watches   int
	Fetched   int
	Fresh     int
	Published int
	Failed    int
}

// Run executes one pass over ws, at most concurrency watches at a time. A failing
// watch does not stop the others; every failure is returned joined.
func (s *Service) Run(ctx context.Context, ws []watches.Watch) (PassStats, error) {
	if s == nil || s.source == nil || s.publisher == nil {
		return PassStats{}, fmt.Errorf("desk service is not initialized")
	}
	if len(ws) == 0 {
		return PassStats{}, fmt.Errorf("no watches configured")
	}

	p := &pass{svc: s, claimed: make(map[string]struct{})}
	p.stats.Watches = len(ws)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, w := range ws {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				p.fail(w, err)
				return nil
			}
			if err := p.runWatch(ctx, w); err != nil {
				p.fail(w, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return p.stats, errors.Join(p.errs...)
}

// pass holds state shared by the watches of one Run.
type pass struct {
	svc *Service

	mu      sync.Mutex
	claimed map[string]struct{}
	stats   PassStats
	errs    []error
}

func (p *pass) fail(w watches.Watch, err error) {
	p.mu.Lock()
	p.stats.Failed++
	p.errs = append(p.errs, fmt.Errorf("watch %s: %w", w.ID, err))
	p.mu.Unlock()

	p.svc.log.ErrorObj("watch pass failed", "watch_error", map[string]any{
		"watch_id": w.ID,
		"error":    err.Error(),
	})
}

// claim reports whether this pass may publish id; the first watch to ask wins.
func (p *pass) claim(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.claimed[id]; ok {
		return false
	}
	p.claimed[id] = struct{}{}
	return true
}

func (p *pass) count(fetched, fresh, published int) {
	p.mu.Lock()
	p.stats.Fetched += fetched
	p.stats.Fresh += fresh
	p.stats.Published += published
	p.mu.Unlock()
}

func (p *pass) runWatch(ctx context.Context, w watches.Watch) error {
	s := p.svc

	ep, err := w.Endpoint()
	if err != nil {
		return err
	}
	articles, err := s.source.Articles(ctx, ep)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ep.Name(), err)
	}

	fresh, err := p.freshArticles(articles)
	if err != nil {
		return err
	}
	if s.enricher != nil && len(fresh) > 0 {
		fresh = s.enricher.Enrich(ctx, fresh)
	}

	var errs []error
	published := 0
	for _, art := range fresh {
		id := ArticleID(art)
		n, err := s.publisher.Publish(ctx, sinks.NewEvent(w.ID, w.Name, art))
		if err != nil {
			errs = append(errs, fmt.Errorf("publish article %s: %w", id, err))
		}
		if n == 0 {
			continue
		}
		published++
		if s.dedupe != nil {
			if err := s.dedupe.MarkArticle(id); err != nil {
				errs = append(errs, fmt.Errorf("mark article %s: %w", id, err))
			}
		}
	}
	p.count(len(articles), len(fresh), published)

	s.log.InfoObj("watch pass completed", "watch_result", map[string]any{
		"watch_id":  w.ID,
		"endpoint":  ep.Name(),
		"fetched":   len(articles),
		"fresh":     len(fresh),
		"published": published,
	})
	return errors.Join(errs...)
}

// freshArticles drops unidentifiable, already published and already claimed articles.
func (p *pass) freshArticles(articles []newsapi.Article) ([]newsapi.Article, error) {
	out := make([]newsapi.Article, 0, len(articles))
	for _, art := range articles {
		id := ArticleID(art)
		if id == "" {
			continue
		}
		if p.svc.dedupe != nil {
			seen, err := p.svc.dedupe.SeenArticle(id)
			if err != nil {
				return nil, fmt.Errorf("dedupe lookup %s: %w", id, err)
			}
			if seen {
				continue
			}
		}
		if !p.claim(id) {
			continue
		}
		out = append(out, art)
	}
	return out, nil
}

// ArticleID derives a stable id from the article URL, falling back to source and
// title. It returns "" when neither is present.
func ArticleID(a newsapi.Article) string {
	key := strings.TrimSpace(a.URL)
	if key == "" {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			return ""
		}
		key = a.Source.Name + "\x00" + title
	}
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
