package storage

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newRedisStore(t *testing.T, opts Options) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	opts.RedisURL = "redis://" + mr.Addr()
	store, err := NewStore("redis", opts)
	if err != nil {
		t.Fatalf("NewStore redis: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreMarksAndExpiresArticles(t *testing.T) {
	store, mr := newRedisStore(t, Options{ArticleTTL: time.Hour, ResponseTTL: time.Minute})

	if seen, err := store.SeenArticle("a"); err != nil || seen {
		t.Fatalf("fresh id should be unseen, seen=%v err=%v", seen, err)
	}
	if err := store.MarkArticle("a"); err != nil {
		t.Fatalf("MarkArticle: %v", err)
	}
	if seen, err := store.SeenArticle("a"); err != nil || !seen {
		t.Fatalf("expected seen, seen=%v err=%v", seen, err)
	}
	if ttl := mr.TTL(redisSeenPrefix + "a"); ttl != time.Hour {
		t.Fatalf("expected article ttl of 1h, got %v", ttl)
	}

	mr.FastForward(time.Hour + time.Second)
	if seen, _ := store.SeenArticle("a"); seen {
		t.Fatalf("expected seen entry to expire")
	}
}

func TestRedisStoreResponseCacheExpires(t *testing.T) {
	store, mr := newRedisStore(t, Options{ArticleTTL: time.Hour, ResponseTTL: time.Minute})

	if _, ok, err := store.CachedResponse("k"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := store.CacheResponse("k", []byte("payload")); err != nil {
		t.Fatalf("CacheResponse: %v", err)
	}
	got, ok, err := store.CachedResponse("k")
	if err != nil || !ok || string(got) != "payload" {
		t.Fatalf("unexpected cached response %q ok=%v err=%v", got, ok, err)
	}

	mr.FastForward(time.Minute + time.Second)
	if _, ok, _ := store.CachedResponse("k"); ok {
		t.Fatalf("expected cached response to expire")
	}
}

func TestRedisStoreResponseCacheDisabledWithoutTTL(t *testing.T) {
	store, mr := newRedisStore(t, Options{ArticleTTL: time.Hour})

	if err := store.CacheResponse("k", []byte("payload")); err != nil {
		t.Fatalf("CacheResponse: %v", err)
	}
	if mr.Exists(redisResponsePrefix + "k") {
		t.Fatalf("nothing should be written when the response ttl is zero")
	}
	if _, ok, _ := store.CachedResponse("k"); ok {
		t.Fatalf("expected miss with caching disabled")
	}
}
