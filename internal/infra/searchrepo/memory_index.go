package searchrepo

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/yuefen/wearwise/internal/domain/search"
)

type vectorKey struct {
	userID int64
	itemID string
}

// MemoryIndex is an in-memory vector index for tests/dev.
type MemoryIndex struct {
	mu      sync.RWMutex
	vectors map[vectorKey][]float32
}

// NewMemoryIndex constructs an index backed by process memory.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{vectors: make(map[vectorKey][]float32)}
}

// Upsert implements search.Index.
func (i *MemoryIndex) Upsert(_ context.Context, userID int64, itemID string, vector []float32) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	stored := make([]float32, len(vector))
	copy(stored, vector)
	i.vectors[vectorKey{userID, itemID}] = stored
	return nil
}

// Remove implements search.Index.
func (i *MemoryIndex) Remove(_ context.Context, userID int64, itemID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.vectors, vectorKey{userID, itemID})
	return nil
}

// VectorFor implements search.Index.
func (i *MemoryIndex) VectorFor(_ context.Context, userID int64, itemID string) ([]float32, bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	vector, ok := i.vectors[vectorKey{userID, itemID}]
	return vector, ok, nil
}

// Nearest implements search.Index with a linear scan; wardrobes are small.
func (i *MemoryIndex) Nearest(_ context.Context, userID int64, vector []float32, limit int) ([]search.Neighbor, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var out []search.Neighbor
	for key, candidate := range i.vectors {
		if key.userID != userID {
			continue
		}
		out = append(out, search.Neighbor{
			ItemID:   key.itemID,
			Distance: euclideanDistance(vector, candidate),
		})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Distance != out[b].Distance {
			return out[a].Distance < out[b].Distance
		}
		return out[a].ItemID < out[b].ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func euclideanDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for idx := 0; idx < n; idx++ {
		d := float64(a[idx]) - float64(b[idx])
		sum += d * d
	}
	return math.Sqrt(sum)
}

var _ search.Index = (*MemoryIndex)(nil)
