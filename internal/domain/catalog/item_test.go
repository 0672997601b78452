package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

func TestItemValidate(t *testing.T) {
	valid := Item{ID: "tee-1", Kind: KindTop, Warmth: 0, Formality: 0.4}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name string
		item Item
	}{
		{"empty id", Item{Kind: KindTop}},
		{"unknown kind", Item{ID: "x", Kind: Kind("hat")}},
		{"warmth too high", Item{ID: "x", Kind: KindTop, Warmth: 3}},
		{"warmth too low", Item{ID: "x", Kind: KindTop, Warmth: -3}},
		{"formality above one", Item{ID: "x", Kind: KindTop, Formality: 1.2}},
		{"formality negative", Item{ID: "x", Kind: KindTop, Formality: -0.1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.item.Validate()
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, "invalid_context"))
		})
	}
}

func TestSnapshotValidateNamesOffendingItem(t *testing.T) {
	snap := Snapshot{
		"tee-1":  {ID: "tee-1", Kind: KindTop},
		"bogus-1": {ID: "bogus-1", Kind: Kind("cape")},
	}
	err := snap.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "bogus-1")
}

func TestSnapshotDigest(t *testing.T) {
	snap := Snapshot{
		"tee-1":   {ID: "tee-1", Kind: KindTop, Warmth: 0},
		"jeans-1": {ID: "jeans-1", Kind: KindBottom, Warmth: 1},
	}
	first := snap.Digest()
	require.NotEmpty(t, first)
	require.Equal(t, first, snap.Digest())

	snap["tee-1"] = Item{ID: "tee-1", Kind: KindTop, Warmth: 2}
	require.NotEqual(t, first, snap.Digest())
}

func TestHasTagIgnoresCase(t *testing.T) {
	tags := []string{"Minimal", "classic"}
	require.True(t, HasTag(tags, "minimal"))
	require.True(t, HasTag(tags, "CLASSIC"))
	require.False(t, HasTag(tags, "bold"))
}
