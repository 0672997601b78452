package closetrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	"github.com/yuefen/wearwise/internal/domain/closet"
)

// MemoryRepository is an in-memory item repository for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[int64]map[string]catalog.Item
}

// NewMemoryRepository constructs a repo backed by process memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int64]map[string]catalog.Item)}
}

// Insert implements closet.Repository.
func (r *MemoryRepository) Insert(_ context.Context, userID int64, item catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[userID] == nil {
		r.items[userID] = make(map[string]catalog.Item)
	}
	r.items[userID][item.ID] = item
	return nil
}

// Update implements closet.Repository.
func (r *MemoryRepository) Update(_ context.Context, userID int64, item catalog.Item) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wardrobe := r.items[userID]
	if _, ok := wardrobe[item.ID]; !ok {
		return false, nil
	}
	wardrobe[item.ID] = item
	return true, nil
}

// Delete implements closet.Repository.
func (r *MemoryRepository) Delete(_ context.Context, userID int64, itemID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wardrobe := r.items[userID]
	if _, ok := wardrobe[itemID]; !ok {
		return false, nil
	}
	delete(wardrobe, itemID)
	return true, nil
}

// Get implements closet.Repository.
func (r *MemoryRepository) Get(_ context.Context, userID int64, itemID string) (catalog.Item, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[userID][itemID]
	return item, ok, nil
}

// List implements closet.Repository, ordered by id for stable output.
func (r *MemoryRepository) List(_ context.Context, userID int64) ([]catalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wardrobe := r.items[userID]
	out := make([]catalog.Item, 0, len(wardrobe))
	for _, item := range wardrobe {
		out = append(out, item)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

var _ closet.Repository = (*MemoryRepository)(nil)
