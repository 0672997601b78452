package searchembed

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/yuefen/wearwise/internal/domain/search"
)

// DeterministicEmbedder hashes each token of the text into a fixed-width
// feature vector. It needs no network or model and produces identical
// vectors for identical attribute sets, which is all similarity search over
// wardrobe tags requires.
type DeterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder constructs the embedder.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 64
	}
	return &DeterministicEmbedder{dim: dim}
}

// Embed spreads token hashes across the vector so items sharing attributes
// land near each other.
func (e *DeterministicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		hash := fnv.New64a()
		_, _ = hash.Write([]byte(token))
		seed := hash.Sum64()
		// Each token contributes to a few dimensions picked from its hash.
		for k := 0; k < 4; k++ {
			seed = seed*1099511628211 + 1469598103934665603
			idx := int(seed % uint64(e.dim))
			vector[idx] += 1.0
		}
	}
	return vector, nil
}

var _ search.Embedder = (*DeterministicEmbedder)(nil)
