package rotation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

type fakeWearStore struct {
	lastWorn map[string]time.Time
	err      error
	recorded [][]string
}

func newFakeWearStore() *fakeWearStore {
	return &fakeWearStore{lastWorn: make(map[string]time.Time)}
}

func (f *fakeWearStore) LastWorn(_ context.Context, _ int64, itemIDs []string) (map[string]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]time.Time, len(itemIDs))
	for _, id := range itemIDs {
		if at, ok := f.lastWorn[id]; ok {
			out[id] = at
		}
	}
	return out, nil
}

func (f *fakeWearStore) RecordWorn(_ context.Context, _ int64, itemIDs []string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	for _, id := range itemIDs {
		if existing, ok := f.lastWorn[id]; ok && at.Before(existing) {
			return ErrStaleRecord
		}
	}
	for _, id := range itemIDs {
		f.lastWorn[id] = at
	}
	f.recorded = append(f.recorded, itemIDs)
	return nil
}

func (f *fakeWearStore) WornBetween(_ context.Context, _ int64, from, to time.Time) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var ids []string
	for id, at := range f.lastWorn {
		if !at.Before(from) && at.Before(to) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newTrackerUnderTest(store WearStore) Tracker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTracker(DefaultConfig(), store, logger)
}

func TestFreshnessCurve(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	store := newFakeWearStore()
	store.lastWorn["worn-now"] = now
	store.lastWorn["worn-week"] = now.AddDate(0, 0, -7)
	store.lastWorn["worn-old"] = now.AddDate(0, 0, -20)

	tracker := newTrackerUnderTest(store)
	fresh, err := tracker.FreshnessAll(context.Background(), 1, []string{"never", "worn-now", "worn-week", "worn-old"}, now)
	require.NoError(t, err)

	require.Equal(t, 1.0, fresh["never"])
	require.Equal(t, 0.1, fresh["worn-now"])
	require.InDelta(t, 0.55, fresh["worn-week"], 1e-9)
	require.Equal(t, 1.0, fresh["worn-old"])
}

func TestNewTrackerNormalizesBadConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	store := newFakeWearStore()
	store.lastWorn["a"] = now

	tracker := NewTracker(Config{WindowDays: -3, Floor: 2.5}, store, logger)
	fresh, err := tracker.FreshnessAll(context.Background(), 1, []string{"a"}, now)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Floor, fresh["a"])
}

func TestRecordWornValidatesInput(t *testing.T) {
	tracker := newTrackerUnderTest(newFakeWearStore())
	at := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)

	err := tracker.RecordWorn(context.Background(), 1, nil, at)
	require.True(t, apperrors.IsCode(err, "invalid_request"))

	err = tracker.RecordWorn(context.Background(), 1, []string{"a"}, time.Time{})
	require.True(t, apperrors.IsCode(err, "invalid_request"))
}

func TestRecordWornRejectsStaleBatch(t *testing.T) {
	store := newFakeWearStore()
	tracker := newTrackerUnderTest(store)
	later := time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)

	require.NoError(t, tracker.RecordWorn(context.Background(), 1, []string{"a", "b"}, later))

	err := tracker.RecordWorn(context.Background(), 1, []string{"b", "c"}, later.Add(-time.Hour))
	require.True(t, apperrors.IsCode(err, "stale_wear_record"))
	require.True(t, store.lastWorn["c"].IsZero(), "stale batch must not be partially applied")
}

func TestWornTodayUsesUTCDay(t *testing.T) {
	now := time.Date(2026, 8, 20, 23, 30, 0, 0, time.UTC)
	store := newFakeWearStore()
	store.lastWorn["today"] = time.Date(2026, 8, 20, 0, 15, 0, 0, time.UTC)
	store.lastWorn["yesterday"] = time.Date(2026, 8, 19, 23, 45, 0, 0, time.UTC)

	tracker := newTrackerUnderTest(store)
	ids, err := tracker.WornToday(context.Background(), 1, now)
	require.NoError(t, err)
	require.Equal(t, []string{"today"}, ids)
}

func TestTrackerWrapsStoreFailures(t *testing.T) {
	store := newFakeWearStore()
	store.err = context.DeadlineExceeded
	tracker := newTrackerUnderTest(store)

	_, err := tracker.FreshnessAll(context.Background(), 1, []string{"a"}, time.Now())
	require.True(t, apperrors.IsCode(err, "rotation_error"))

	_, err = tracker.WornToday(context.Background(), 1, time.Now())
	require.True(t, apperrors.IsCode(err, "rotation_error"))
}
