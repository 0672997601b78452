package suggestcache

import (
	"context"
	"sync"
	"time"

	"github.com/yuefen/wearwise/internal/domain/stylist"
)

type cachedEntry struct {
	outfits   []stylist.Outfit
	expiresAt time.Time
}

// MemoryStore is an in-memory suggestion cache for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]cachedEntry
}

// NewMemoryStore constructs a cache backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]cachedEntry)}
}

// Get implements stylist.SuggestionCache.
func (s *MemoryStore) Get(_ context.Context, key string) ([]stylist.Outfit, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if hasExpired(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.outfits, true, nil
}

// Set implements stylist.SuggestionCache.
func (s *MemoryStore) Set(_ context.Context, key string, outfits []stylist.Outfit, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.entries[key] = cachedEntry{outfits: outfits, expiresAt: exp}
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ stylist.SuggestionCache = (*MemoryStore)(nil)
