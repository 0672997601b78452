package wearrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yuefen/wearwise/internal/domain/rotation"
)

type wearKey struct {
	userID int64
	itemID string
}

// MemoryRepository is an in-memory WearStore for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[wearKey]time.Time
}

// NewMemoryRepository constructs a store backed by process memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[wearKey]time.Time)}
}

// LastWorn implements rotation.WearStore.
func (r *MemoryRepository) LastWorn(_ context.Context, userID int64, itemIDs []string) (map[string]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]time.Time, len(itemIDs))
	for _, id := range itemIDs {
		if ts, ok := r.records[wearKey{userID, id}]; ok {
			out[id] = ts
		}
	}
	return out, nil
}

// RecordWorn implements rotation.WearStore. The whole batch is validated
// before any timestamp is written, so a stale event never partially applies.
func (r *MemoryRepository) RecordWorn(_ context.Context, userID int64, itemIDs []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range itemIDs {
		if existing, ok := r.records[wearKey{userID, id}]; ok && at.Before(existing) {
			return rotation.ErrStaleRecord
		}
	}
	for _, id := range itemIDs {
		r.records[wearKey{userID, id}] = at
	}
	return nil
}

// WornBetween implements rotation.WearStore.
func (r *MemoryRepository) WornBetween(_ context.Context, userID int64, from, to time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for key, ts := range r.records {
		if key.userID != userID {
			continue
		}
		if !ts.Before(from) && ts.Before(to) {
			out = append(out, key.itemID)
		}
	}
	sort.Strings(out)
	return out, nil
}

var _ rotation.WearStore = (*MemoryRepository)(nil)
