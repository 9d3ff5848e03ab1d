package storage

import (
	gocache "github.com/patrickmn/go-cache"
)

// memoryStore is a process-local store backed by go-cache. Nothing survives a restart.
type memoryStore struct {
	seen        *gocache.Cache
	responses   *gocache.Cache
	responsesOn bool
}

func newMemoryStore(opts Options) *memoryStore {
	s := &memoryStore{
		seen:        gocache.New(opts.ArticleTTL, opts.CleanupInterval),
		responsesOn: opts.ResponseTTL > 0,
	}
	if s.responsesOn {
		s.responses = gocache.New(opts.ResponseTTL, opts.CleanupInterval)
	}
	return s
}

func (m *memoryStore) Close() error {
	m.seen.Flush()
	if m.responses != nil {
		m.responses.Flush()
	}
	return nil
}

func (m *memoryStore) SeenArticle(id string) (bool, error) {
	_, ok := m.seen.Get(id)
	return ok, nil
}

func (m *memoryStore) MarkArticle(id string) error {
	m.seen.SetDefault(id, struct{}{})
	return nil
}

func (m *memoryStore) CachedResponse(key string) ([]byte, bool, error) {
	if !m.responsesOn {
		return nil, false, nil
	}
	v, ok := m.responses.Get(key)
	if !ok {
		return nil, false, nil
	}
	body, _ := v.([]byte)
	return append([]byte(nil), body...), true, nil
}

func (m *memoryStore) CacheResponse(key string, body []byte) error {
	if !m.responsesOn {
		return nil
	}
	m.responses.SetDefault(key, append([]byte(nil), body...))
	return nil
}
