package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/storage"
)

func TestParseLookup(t *testing.T) {
	l, err := parseLookup([]string{"search", "mars", "rover & co"})
	if err != nil {
		t.Fatalf("parseLookup: %v", err)
	}
	if l.Query != "mars+rover+%26+co" {
		t.Fatalf("search terms should be joined and escaped, got %q", l.Query)
	}

	l, err = parseLookup([]string{"TOP", "technology"})
	if err != nil || l.Command != "top" || l.Category != "technology" {
		t.Fatalf("unexpected lookup %+v err=%v", l, err)
	}

	l, err = parseLookup([]string{"source", "bbc-news"})
	if err != nil || l.SourceID != "bbc-news" {
		t.Fatalf("unexpected lookup %+v err=%v", l, err)
	}

	bad := [][]string{
		nil,
		{"headlines", "extra"},
		{"top"},
		{"source", "a", "b"},
		{"search"},
		{"weather"},
	}
	for _, args := range bad {
		if _, err := parseLookup(args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func holdStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "newsdesk.db")
	held, err := storage.NewStore("bbolt", storage.Options{Path: path, ResponseTTL: time.Minute})
	if err != nil {
		t.Fatalf("open bbolt store: %v", err)
	}
	t.Cleanup(func() { _ = held.Close() })
	return path
}

func TestOpenCacheToleratesLockedStore(t *testing.T) {
	cfg := &config.Config{StorageType: "bbolt", StoragePath: holdStore(t), ResponseTTL: time.Minute}

	cache, release := openCache(cfg, logger.NopLogger())
	defer release()
	if cache != nil {
		t.Fatalf("expected no cache while another process holds the store")
	}

	cfg.ResponseTTL = 0
	cache, release = openCache(cfg, logger.NopLogger())
	defer release()
	if cache != nil {
		t.Fatalf("expected no cache when the response ttl is zero")
	}
}

func TestRunSucceedsWhileStoreIsLocked(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":"ok","sources":[{"id":"wired","name":"Wired","category":"technology"}]}`))
	}))
	defer srv.Close()

	t.Setenv("NEWSAPI_KEY", "test-key")
	t.Setenv("NEWSAPI_BASE_URL", srv.URL+"/v2/")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORAGE_TYPE", "bbolt")
	t.Setenv("STORAGE_PATH", holdStore(t))
	t.Setenv("RESPONSE_TTL_SECONDS", "60")

	if err := run([]string{"sources"}); err != nil {
		t.Fatalf("run with a locked store: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream request, got %d", hits.Load())
	}
}
