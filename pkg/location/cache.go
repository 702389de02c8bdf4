package location

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"
)

// Cache persists geocoding results on disk keyed by query string.
type Cache struct {
	store *badgerhold.Store
}

type cachedResult struct {
	Query    string
	Result   Result
	StoredAt time.Time
}

// OpenCache opens (or creates) a cache at the given directory.
func OpenCache(path string) (*Cache, error) {
	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open geocode cache at %s: %w", path, err)
	}
	return &Cache{store: store}, nil
}

// Get returns the cached result for the query, if any.
func (c *Cache) Get(query string) (*Result, bool) {
	var entry cachedResult
	err := c.store.Get(query, &entry)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return &entry.Result, true
}

// Put stores the result for the query, replacing any previous entry.
func (c *Cache) Put(query string, result Result) error {
	entry := cachedResult{Query: query, Result: result, StoredAt: time.Now().UTC()}
	if err := c.store.Upsert(query, entry); err != nil {
		return fmt.Errorf("cache geocode result for %q: %w", query, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.store.Close()
}
