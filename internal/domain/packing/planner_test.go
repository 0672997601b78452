package packing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	"github.com/yuefen/wearwise/internal/domain/stylist"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

type stubStylist struct {
	suggestFn func(ctx context.Context, userID int64, snap catalog.Snapshot, reqCtx stylist.Context, topN int) ([]stylist.Outfit, error)
}

func (s *stubStylist) Suggest(ctx context.Context, userID int64, snap catalog.Snapshot, reqCtx stylist.Context, topN int) ([]stylist.Outfit, error) {
	return s.suggestFn(ctx, userID, snap, reqCtx, topN)
}

func outfitOf(score float64, top, bottom, footwear string) stylist.Outfit {
	return stylist.Outfit{
		Score:     score,
		Rationale: []string{"balanced pick"},
		Slots:     stylist.Slots{Top: top, Bottom: bottom, Footwear: footwear},
	}
}

func newPlannerUnderTest(svc stylist.Service) Planner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPlanner(DefaultConfig(), svc, logger)
}

func mildTrip(days int) []stylist.Context {
	contexts := make([]stylist.Context, days)
	for i := range contexts {
		contexts[i] = stylist.Context{Mood: stylist.MoodCalm, Event: "casual", Band: stylist.BandMild}
	}
	return contexts
}

func TestPackValidatesTripBounds(t *testing.T) {
	planner := newPlannerUnderTest(&stubStylist{})

	_, err := planner.Pack(context.Background(), 1, catalog.Snapshot{}, mildTrip(1), 0)
	require.True(t, apperrors.IsCode(err, "invalid_request"))

	_, err = planner.Pack(context.Background(), 1, catalog.Snapshot{}, mildTrip(1), 31)
	require.True(t, apperrors.IsCode(err, "invalid_request"))

	_, err = planner.Pack(context.Background(), 1, catalog.Snapshot{}, nil, 3)
	require.True(t, apperrors.IsCode(err, "invalid_request"))
}

func TestPackEnforcesReuseBudget(t *testing.T) {
	// Five-day trip gives a reuse budget of 3. The top-ranked outfit would
	// be picked every day; by day four its items are exhausted and the
	// planner must fall through to the alternate.
	favorite := outfitOf(0.9, "tee-1", "jeans-1", "sneak-1")
	alternate := outfitOf(0.7, "tee-2", "chinos-1", "boots-1")
	svc := &stubStylist{suggestFn: func(context.Context, int64, catalog.Snapshot, stylist.Context, int) ([]stylist.Outfit, error) {
		return []stylist.Outfit{favorite, alternate}, nil
	}}

	plan, err := newPlannerUnderTest(svc).Pack(context.Background(), 1, catalog.Snapshot{}, mildTrip(5), 5)
	require.NoError(t, err)
	require.Equal(t, 5, plan.TripDays)
	require.Len(t, plan.Days, 5)

	counts := make(map[string]int)
	for _, day := range plan.Days {
		for _, id := range day.Slots.ItemIDs() {
			counts[id]++
		}
	}
	require.Equal(t, 3, counts["tee-1"])
	require.Equal(t, 2, counts["tee-2"])
	require.Equal(t, []string{"boots-1", "chinos-1", "jeans-1", "sneak-1", "tee-1", "tee-2"}, plan.SelectedItems)
}

func TestPackRelaxesBudgetWhenWardrobeIsTight(t *testing.T) {
	only := outfitOf(0.8, "tee-1", "jeans-1", "sneak-1")
	svc := &stubStylist{suggestFn: func(context.Context, int64, catalog.Snapshot, stylist.Context, int) ([]stylist.Outfit, error) {
		return []stylist.Outfit{only}, nil
	}}

	plan, err := newPlannerUnderTest(svc).Pack(context.Background(), 1, catalog.Snapshot{}, mildTrip(4), 4)
	require.NoError(t, err)
	require.Len(t, plan.Days, 4)

	require.Equal(t, []string{"balanced pick"}, plan.Days[0].Rationale)
	require.Contains(t, plan.Days[3].Rationale, "reuse budget relaxed by 2 for this day")
	require.Equal(t, []string{"balanced pick"}, only.Rationale, "shared candidate must not be mutated")
}

func TestPackReportsInsufficientWardrobe(t *testing.T) {
	snap := catalog.Snapshot{
		"tee-1": {ID: "tee-1", Kind: catalog.KindTop},
	}
	svc := &stubStylist{suggestFn: func(context.Context, int64, catalog.Snapshot, stylist.Context, int) ([]stylist.Outfit, error) {
		return nil, nil
	}}

	_, err := newPlannerUnderTest(svc).Pack(context.Background(), 1, snap, mildTrip(2), 2)
	require.True(t, apperrors.IsCode(err, "insufficient_wardrobe"))
	require.Contains(t, err.Error(), "footwear")
}

func TestPackReusesLastContextForExtraDays(t *testing.T) {
	var seen []string
	svc := &stubStylist{suggestFn: func(_ context.Context, _ int64, _ catalog.Snapshot, reqCtx stylist.Context, _ int) ([]stylist.Outfit, error) {
		seen = append(seen, reqCtx.Event)
		return []stylist.Outfit{outfitOf(0.5, "tee-1", "jeans-1", "sneak-1")}, nil
	}}

	contexts := []stylist.Context{
		{Mood: stylist.MoodCalm, Event: "office", Band: stylist.BandMild},
		{Mood: stylist.MoodCalm, Event: "dinner", Band: stylist.BandMild},
	}
	_, err := newPlannerUnderTest(svc).Pack(context.Background(), 1, catalog.Snapshot{}, contexts, 4)
	require.NoError(t, err)
	require.Equal(t, []string{"office", "dinner", "dinner", "dinner"}, seen)
}
