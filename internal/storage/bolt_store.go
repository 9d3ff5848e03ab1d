package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	seenBucket     = "seen_articles"
	responseBucket = "responses"
	expiryBytes    = 8
)

// boltStore keeps both buckets in one BoltDB file. Every value is an 8-byte
// big-endian unix expiry followed by the payload.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	articleTTL      time.Duration
	responseTTL     time.Duration
	cleanupInterval time.Duration
}

func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{seenBucket, responseBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		articleTTL:      opts.ArticleTTL,
		responseTTL:     opts.ResponseTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *boltStore) SeenArticle(id string) (bool, error) {
	_, ok, err := b.getLive(seenBucket, id)
	return ok, err
}

func (b *boltStore) MarkArticle(id string) error {
	return b.putWithExpiry(seenBucket, id, nil, b.articleTTL)
}

func (b *boltStore) CachedResponse(key string) ([]byte, bool, error) {
	if b.responseTTL <= 0 {
		return nil, false, nil
	}
	return b.getLive(responseBucket, key)
}

func (b *boltStore) CacheResponse(key string, body []byte) error {
	if b.responseTTL <= 0 {
		return nil
	}
	return b.putWithExpiry(responseBucket, key, body, b.responseTTL)
}

// getLive returns the payload under key, deleting it if it has expired.
func (b *boltStore) getLive(bucketName, key string) ([]byte, bool, error) {
	if b == nil || b.db == nil {
		return nil, false, nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, false, err
	}

	var payload []byte
	var found bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return fmt.Errorf("%s bucket missing", bucketName)
		}

		k := []byte(key)
		value := bucket.Get(k)
		if value == nil {
			return nil
		}

		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(now) {
			return bucket.Delete(k)
		}

		// value is only valid inside the transaction.
		payload = append([]byte(nil), value[expiryBytes:]...)
		found = true
		return nil
	})
	return payload, found, err
}

func (b *boltStore) putWithExpiry(bucketName, key string, payload []byte, ttl time.Duration) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return fmt.Errorf("%s bucket missing", bucketName)
		}
		buf := make([]byte, expiryBytes+len(payload))
		binary.BigEndian.PutUint64(buf, uint64(now.Add(ttl).Unix()))
		copy(buf[expiryBytes:], payload)
		return bucket.Put([]byte(key), buf)
	})
}

// maybeCleanupExpired sweeps both buckets at most once per cleanup interval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{seenBucket, responseBucket} {
			bucket := tx.Bucket([]byte(name))
			if bucket == nil {
				return fmt.Errorf("%s bucket missing", name)
			}
			cursor := bucket.Cursor()
			for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
				expiry, ok := decodeExpiry(v)
				if !ok || !expiry.After(now) {
					if err := cursor.Delete(); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
