package suggestcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yuefen/wearwise/internal/domain/stylist"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	outfits := []stylist.Outfit{{ID: "o1", Score: 0.82}}

	require.NoError(t, store.Set(context.Background(), "k", outfits, time.Minute))

	got, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, outfits, got)

	_, found, err = store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k", []stylist.Outfit{{ID: "o1"}}, time.Nanosecond))

	time.Sleep(5 * time.Millisecond)

	_, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k", []stylist.Outfit{{ID: "o1"}}, 0))

	_, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)
}
