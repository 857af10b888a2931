package cache

import (
	"context"
	"sync"
	"time"
)

// Item represents a cached value with an expiration time.
type Item struct {
	Value      any
	Expiration int64
}

// Store is a thread-safe TTL cache.
type Store struct {
	items map[string]Item
	mu    sync.RWMutex
	now   func() time.Time
}

// Default is shared by the DNS posture checks of every analysis in the process.
var Default = New()

func New() *Store {
	return &Store{
		items: make(map[string]Item),
		now:   time.Now,
	}
}

// Set adds a value to the cache with a specific TTL.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = Item{
		Value:      value,
		Expiration: s.now().Add(ttl).UnixNano(),
	}
}

// Get retrieves a value. Returns false if the item is missing or expired.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, found := s.items[key]
	if !found {
		return nil, false
	}
	if s.now().UnixNano() > item.Expiration {
		return nil, false
	}
	return item.Value, true
}

// Len counts stored items, expired ones included until the next Cleanup.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Cleanup removes expired items.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UnixNano()
	for k, v := range s.items {
		if now > v.Expiration {
			delete(s.items, k)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is cancelled.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}
