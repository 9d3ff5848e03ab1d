package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBoltStoreMarksAndExpiresArticles(t *testing.T) {
	opts := Options{
		ArticleTTL:      1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "desk.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	seen, err := store.SeenArticle("id1")
	if err != nil || seen {
		t.Fatalf("expected unseen article, seen=%v err=%v", seen, err)
	}

	if err := store.MarkArticle("id1"); err != nil {
		t.Fatalf("MarkArticle: %v", err)
	}

	seen, err = store.SeenArticle("id1")
	if err != nil || !seen {
		t.Fatalf("expected article marked as seen, got seen=%v err=%v", seen, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	seen, err = store.SeenArticle("id1")
	if err != nil {
		t.Fatalf("SeenArticle after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestBoltStoreCachesResponses(t *testing.T) {
	store, err := NewStore("bbolt", Options{
		Path:        filepath.Join(t.TempDir(), "desk.db"),
		ResponseTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	key := "https://newsapi.org/v2/sources?language=en"
	if _, ok, err := store.CachedResponse(key); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	body := []byte(`{"sources":[]}`)
	if err := store.CacheResponse(key, body); err != nil {
		t.Fatalf("CacheResponse: %v", err)
	}
	body[0] = 'X'

	got, ok, err := store.CachedResponse(key)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(got) != `{"sources":[]}` {
		t.Fatalf("unexpected cached body %q", got)
	}

	// Seen ids and responses live in separate buckets.
	if seen, _ := store.SeenArticle(key); seen {
		t.Fatalf("response key must not count as a seen article")
	}
}

func TestBoltStoreResponseCacheDisabledWithoutTTL(t *testing.T) {
	store, err := NewStore("bbolt", Options{Path: filepath.Join(t.TempDir(), "desk.db")})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if err := store.CacheResponse("k", []byte("v")); err != nil {
		t.Fatalf("CacheResponse: %v", err)
	}
	if _, ok, _ := store.CachedResponse("k"); ok {
		t.Fatalf("response cache should be disabled when ResponseTTL is zero")
	}
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.db")
	store, err := NewStore("bbolt", Options{Path: path})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.MarkArticle("abc"); err != nil {
		t.Fatalf("MarkArticle: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = NewStore("bbolt", Options{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if seen, err := store.SeenArticle("abc"); err != nil || !seen {
		t.Fatalf("expected persisted entry, seen=%v err=%v", seen, err)
	}
}

func TestDecodeExpiryRejectsShortValues(t *testing.T) {
	if _, ok := decodeExpiry([]byte{1, 2, 3}); ok {
		t.Fatalf("short value should not decode")
	}
	if _, ok := decodeExpiry(make([]byte, expiryBytes)); ok {
		t.Fatalf("zero expiry should not decode")
	}
}
