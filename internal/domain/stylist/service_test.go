package stylist

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

func testWardrobe() catalog.Snapshot {
	return catalog.Snapshot{
		"tee-1":    {ID: "tee-1", Kind: catalog.KindTop, Material: "cotton", Warmth: 0, Formality: 0.3, StyleTags: []string{"minimal"}},
		"shirt-1":  {ID: "shirt-1", Kind: catalog.KindTop, Material: "cotton", Warmth: 0, Formality: 0.65, StyleTags: []string{"classic"}},
		"jeans-1":  {ID: "jeans-1", Kind: catalog.KindBottom, Material: "denim", Warmth: 1, Formality: 0.4},
		"chinos-1": {ID: "chinos-1", Kind: catalog.KindBottom, Material: "cotton", Warmth: 0, Formality: 0.6},
		"sneak-1":  {ID: "sneak-1", Kind: catalog.KindFootwear, Material: "leather", Warmth: 0, Formality: 0.35},
		"suede-1":  {ID: "suede-1", Kind: catalog.KindFootwear, Material: "suede", Warmth: 0, Formality: 0.5},
		"coat-1":   {ID: "coat-1", Kind: catalog.KindOuterwear, Material: "wool", Warmth: 2, Formality: 0.6},
		"watch-1":  {ID: "watch-1", Kind: catalog.KindAccessory, Material: "steel", Warmth: 0, Formality: 0.7},
	}
}

func mildContext() Context {
	return Context{
		Mood:        MoodCalm,
		Event:       "office",
		TimeOfDay:   TimeMorning,
		Timestamp:   time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Band:        BandMild,
		IdealWarmth: 0,
	}
}

type stubFreshness struct {
	values map[string]float64
	calls  int
}

func (s *stubFreshness) FreshnessAll(_ context.Context, _ int64, itemIDs []string, _ time.Time) (map[string]float64, error) {
	s.calls++
	out := make(map[string]float64, len(itemIDs))
	for _, id := range itemIDs {
		v, ok := s.values[id]
		if !ok {
			v = 1.0
		}
		out[id] = v
	}
	return out, nil
}

type recordingCache struct {
	entries map[string][]Outfit
	sets    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string][]Outfit)}
}

func (c *recordingCache) Get(_ context.Context, key string) ([]Outfit, bool, error) {
	outfits, ok := c.entries[key]
	return outfits, ok, nil
}

func (c *recordingCache) Set(_ context.Context, key string, outfits []Outfit, _ time.Duration) error {
	c.entries[key] = outfits
	c.sets++
	return nil
}

func newServiceUnderTest(fresh FreshnessProvider, cache SuggestionCache) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(DefaultConfig(), fresh, cache, logger)
}

func TestSuggestIsDeterministic(t *testing.T) {
	svc := newServiceUnderTest(&stubFreshness{}, nil)

	first, err := svc.Suggest(context.Background(), 1, testWardrobe(), mildContext(), 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := svc.Suggest(context.Background(), 1, testWardrobe(), mildContext(), 3)
	require.NoError(t, err)
	require.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		require.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
}

func TestSuggestExcludesRainSensitiveFootwear(t *testing.T) {
	svc := newServiceUnderTest(&stubFreshness{}, nil)
	ctx := mildContext()
	ctx.Precipitation = true

	outfits, err := svc.Suggest(context.Background(), 1, testWardrobe(), ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, outfits)
	for _, outfit := range outfits {
		require.NotEqual(t, "suede-1", outfit.Slots.Footwear)
	}
}

func TestSuggestFreshnessBreaksTies(t *testing.T) {
	// Two identical tops; only rotation freshness separates the outfits
	// built from them.
	snap := catalog.Snapshot{
		"top-a":   {ID: "top-a", Kind: catalog.KindTop, Warmth: 0, Formality: 0.5},
		"top-b":   {ID: "top-b", Kind: catalog.KindTop, Warmth: 0, Formality: 0.5},
		"pants-1": {ID: "pants-1", Kind: catalog.KindBottom, Warmth: 0, Formality: 0.5},
		"shoes-1": {ID: "shoes-1", Kind: catalog.KindFootwear, Warmth: 0, Formality: 0.5},
	}
	fresh := &stubFreshness{values: map[string]float64{"top-a": 0.1, "top-b": 1.0}}
	svc := newServiceUnderTest(fresh, nil)

	outfits, err := svc.Suggest(context.Background(), 1, snap, mildContext(), 4)
	require.NoError(t, err)
	require.NotEmpty(t, outfits)
	require.Equal(t, "top-b", outfits[0].Slots.Top)
}

func TestSuggestLexicographicTieBreak(t *testing.T) {
	// Identical score and freshness leave only the item-id key to order on.
	snap := catalog.Snapshot{
		"top-a":   {ID: "top-a", Kind: catalog.KindTop, Warmth: 0, Formality: 0.5},
		"top-b":   {ID: "top-b", Kind: catalog.KindTop, Warmth: 0, Formality: 0.5},
		"pants-1": {ID: "pants-1", Kind: catalog.KindBottom, Warmth: 0, Formality: 0.5},
		"shoes-1": {ID: "shoes-1", Kind: catalog.KindFootwear, Warmth: 0, Formality: 0.5},
	}
	svc := newServiceUnderTest(&stubFreshness{}, nil)

	outfits, err := svc.Suggest(context.Background(), 1, snap, mildContext(), 4)
	require.NoError(t, err)
	require.Len(t, outfits, 2)
	require.Equal(t, outfits[0].Score, outfits[1].Score)
	require.Equal(t, "top-a", outfits[0].Slots.Top)
	require.Equal(t, "top-b", outfits[1].Slots.Top)
}

func TestSuggestRejectsNonPositiveTopN(t *testing.T) {
	svc := newServiceUnderTest(&stubFreshness{}, nil)
	_, err := svc.Suggest(context.Background(), 1, testWardrobe(), mildContext(), 0)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_request"))
}

func TestSuggestEmptyWhenNoFootwear(t *testing.T) {
	snap := catalog.Snapshot{
		"tee-1":   {ID: "tee-1", Kind: catalog.KindTop},
		"jeans-1": {ID: "jeans-1", Kind: catalog.KindBottom},
	}
	svc := newServiceUnderTest(&stubFreshness{}, nil)

	outfits, err := svc.Suggest(context.Background(), 1, snap, mildContext(), 3)
	require.NoError(t, err)
	require.Empty(t, outfits)
}

func TestSuggestRationaleCarriesCaveats(t *testing.T) {
	svc := newServiceUnderTest(&stubFreshness{}, nil)
	ctx := mildContext()
	ctx.Caveats = []string{"no weather data supplied, assuming mild and dry"}

	outfits, err := svc.Suggest(context.Background(), 1, testWardrobe(), ctx, 1)
	require.NoError(t, err)
	require.Len(t, outfits, 1)
	require.GreaterOrEqual(t, len(outfits[0].Rationale), 3)
	require.Contains(t, outfits[0].Rationale, ctx.Caveats[0])
}

func TestSuggestServesSecondCallFromCache(t *testing.T) {
	cache := newRecordingCache()
	fresh := &stubFreshness{}
	svc := newServiceUnderTest(fresh, cache)

	first, err := svc.Suggest(context.Background(), 1, testWardrobe(), mildContext(), 2)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)
	require.Equal(t, 1, fresh.calls)

	second, err := svc.Suggest(context.Background(), 1, testWardrobe(), mildContext(), 2)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, cache.sets, "second call must not recompute")
	require.Equal(t, 1, fresh.calls, "second call must not hit the rotation store")
}

func TestSuggestCacheKeyIgnoresTimestamp(t *testing.T) {
	ctxA := mildContext()
	ctxB := mildContext()
	ctxB.Timestamp = ctxB.Timestamp.Add(45 * time.Minute)

	keyA := suggestCacheKey(1, testWardrobe(), ctxA, 3)
	keyB := suggestCacheKey(1, testWardrobe(), ctxB, 3)
	require.Equal(t, keyA, keyB)

	ctxB.Event = "formal"
	require.NotEqual(t, keyA, suggestCacheKey(1, testWardrobe(), ctxB, 3))
}
