package search

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

type fakeIndex struct {
	vectors   map[string][]float32
	neighbors []Neighbor
	removed   []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{vectors: make(map[string][]float32)}
}

func (f *fakeIndex) Upsert(_ context.Context, _ int64, itemID string, vector []float32) error {
	f.vectors[itemID] = vector
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, _ int64, itemID string) error {
	delete(f.vectors, itemID)
	f.removed = append(f.removed, itemID)
	return nil
}

func (f *fakeIndex) VectorFor(_ context.Context, _ int64, itemID string) ([]float32, bool, error) {
	v, ok := f.vectors[itemID]
	return v, ok, nil
}

func (f *fakeIndex) Nearest(_ context.Context, _ int64, _ []float32, limit int) ([]Neighbor, error) {
	out := f.neighbors
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubEmbedder struct {
	calls []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls = append(s.calls, text)
	return []float32{1, 0, 0}, nil
}

func newSearchUnderTest(index Index, embedder Embedder) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(DefaultConfig(), index, embedder, logger)
}

func TestSimilarByQuery(t *testing.T) {
	index := newFakeIndex()
	index.neighbors = []Neighbor{
		{ItemID: "shirt-1", Distance: 0.1},
		{ItemID: "shirt-2", Distance: 0.4},
	}
	embedder := &stubEmbedder{}
	svc := newSearchUnderTest(index, embedder)

	matches, err := svc.Similar(context.Background(), 1, Request{Query: "  white linen shirt "})
	require.NoError(t, err)
	require.Equal(t, []Match{{ItemID: "shirt-1", Distance: 0.1}, {ItemID: "shirt-2", Distance: 0.4}}, matches)
	require.Equal(t, []string{"white linen shirt"}, embedder.calls)
}

func TestSimilarByItemExcludesAnchor(t *testing.T) {
	index := newFakeIndex()
	index.vectors["anchor"] = []float32{1, 0, 0}
	index.neighbors = []Neighbor{
		{ItemID: "anchor", Distance: 0},
		{ItemID: "near", Distance: 0.2},
		{ItemID: "far", Distance: 0.8},
	}
	svc := newSearchUnderTest(index, &stubEmbedder{})

	matches, err := svc.Similar(context.Background(), 1, Request{ItemID: "anchor", Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []Match{{ItemID: "near", Distance: 0.2}, {ItemID: "far", Distance: 0.8}}, matches)
}

func TestSimilarUnindexedItem(t *testing.T) {
	svc := newSearchUnderTest(newFakeIndex(), &stubEmbedder{})
	_, err := svc.Similar(context.Background(), 1, Request{ItemID: "ghost"})
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestSimilarRequiresAnchorOrQuery(t *testing.T) {
	svc := newSearchUnderTest(newFakeIndex(), &stubEmbedder{})
	_, err := svc.Similar(context.Background(), 1, Request{})
	require.True(t, apperrors.IsCode(err, "invalid_request"))
}

func TestIndexItemEmbedsDescription(t *testing.T) {
	index := newFakeIndex()
	embedder := &stubEmbedder{}
	svc := newSearchUnderTest(index, embedder)

	item := catalog.Item{
		ID:        "shirt-1",
		Name:      "Linen Shirt",
		Kind:      catalog.KindTop,
		BaseColor: "white",
		Material:  "linen",
		StyleTags: []string{"minimal"},
	}
	require.NoError(t, svc.IndexItem(context.Background(), 1, item))
	require.Equal(t, []string{"top white linen linen shirt minimal"}, embedder.calls)
	require.Contains(t, index.vectors, "shirt-1")

	require.NoError(t, svc.RemoveItem(context.Background(), 1, "shirt-1"))
	require.Equal(t, []string{"shirt-1"}, index.removed)
	keys := make([]string, 0, len(index.vectors))
	for k := range index.vectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	require.Empty(t, keys)
}
