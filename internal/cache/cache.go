// Package cache memoises dataset snapshots and computed result tables.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/jengzang/retention-backend-go/internal/metrics"
)

// Store is a TTL cache of arbitrary values. Entries expire a fixed ttl
// after they are set; reads do not extend their lifetime.
type Store struct {
	name string
	ttl  time.Duration

	cache   *ttlcache.Cache[string, any]
	cacheMu sync.RWMutex
}

// New creates a store and starts its expiry loop. Close stops it.
func New(name string, ttl time.Duration) *Store {
	c := ttlcache.New(
		ttlcache.WithTTL[string, any](ttl),
		ttlcache.WithDisableTouchOnHit[string, any](),
	)
	go c.Start()

	return &Store{name: name, ttl: ttl, cache: c}
}

// Get returns the cached value for key
func (s *Store) Get(key string) (any, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	cached := s.cache.Get(key)
	if cached == nil {
		metrics.CacheRequestsTotal.WithLabelValues(s.name, "miss").Inc()
		return nil, false
	}
	metrics.CacheRequestsTotal.WithLabelValues(s.name, "hit").Inc()
	return cached.Value(), true
}

// Set stores value under key with the store's ttl
func (s *Store) Set(key string, value any) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache.Set(key, value, s.ttl)
}

// Delete removes key
func (s *Store) Delete(key string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache.Delete(key)
}

// Purge removes every entry
func (s *Store) Purge() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache.DeleteAll()
}

// Len returns the number of live entries
func (s *Store) Len() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}

// Close stops the expiry loop
func (s *Store) Close() {
	s.cache.Stop()
}

// Key derives a deterministic cache key from a dataset version, an
// operation name and its parameters. Parameters must be JSON encodable.
func Key(version, operation string, params any) (string, error) {
	payload, err := json.Marshal(struct {
		Version   string `json:"version"`
		Operation string `json:"operation"`
		Params    any    `json:"params"`
	}{version, operation, params})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}

	sum := sha256.Sum256(payload)
	return operation + ":" + hex.EncodeToString(sum[:]), nil
}
