package rotation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

// Config holds the freshness curve parameters.
type Config struct {
	// WindowDays is how long an item takes to return to full freshness.
	WindowDays int
	// Floor is the freshness immediately after wear; items are
	// deprioritized, never excluded.
	Floor float64
}

// DefaultConfig returns the published rotation defaults.
func DefaultConfig() Config {
	return Config{WindowDays: 14, Floor: 0.1}
}

// Tracker maintains wear history and derives per-item freshness.
type Tracker interface {
	FreshnessAll(ctx context.Context, userID int64, itemIDs []string, now time.Time) (map[string]float64, error)
	RecordWorn(ctx context.Context, userID int64, itemIDs []string, at time.Time) error
	WornToday(ctx context.Context, userID int64, now time.Time) ([]string, error)
}

type tracker struct {
	cfg    Config
	store  WearStore
	logger *slog.Logger
}

// NewTracker wires up the rotation domain.
func NewTracker(cfg Config, store WearStore, logger *slog.Logger) Tracker {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultConfig().WindowDays
	}
	if cfg.Floor <= 0 || cfg.Floor >= 1 {
		cfg.Floor = DefaultConfig().Floor
	}
	return &tracker{
		cfg:    cfg,
		store:  store,
		logger: logger.With("component", "rotation.tracker"),
	}
}

// FreshnessAll maps every requested id to its freshness at now. Items with
// no wear record are maximally fresh.
func (t *tracker) FreshnessAll(ctx context.Context, userID int64, itemIDs []string, now time.Time) (map[string]float64, error) {
	worn, err := t.store.LastWorn(ctx, userID, itemIDs)
	if err != nil {
		return nil, apperrors.Wrap("rotation_error", "failed to load wear records", err)
	}

	out := make(map[string]float64, len(itemIDs))
	for _, id := range itemIDs {
		last, ok := worn[id]
		if !ok || last.IsZero() {
			out[id] = 1.0
			continue
		}
		out[id] = t.freshness(last, now)
	}
	return out, nil
}

// freshness ramps linearly from the floor at wear time to 1.0 once the
// rotation window has elapsed.
func (t *tracker) freshness(lastWorn, now time.Time) float64 {
	elapsed := now.Sub(lastWorn)
	if elapsed <= 0 {
		return t.cfg.Floor
	}
	window := time.Duration(t.cfg.WindowDays) * 24 * time.Hour
	if elapsed >= window {
		return 1.0
	}
	frac := float64(elapsed) / float64(window)
	return t.cfg.Floor + (1.0-t.cfg.Floor)*frac
}

// RecordWorn is the only mutator of wear history. The write is rejected
// whole when any timestamp would go backwards, so out-of-order acceptance
// events never corrupt the record.
func (t *tracker) RecordWorn(ctx context.Context, userID int64, itemIDs []string, at time.Time) error {
	if len(itemIDs) == 0 {
		return apperrors.Wrap("invalid_request", "itemIds cannot be empty", nil)
	}
	if at.IsZero() {
		return apperrors.Wrap("invalid_request", "wornAt timestamp is required", nil)
	}
	if err := t.store.RecordWorn(ctx, userID, itemIDs, at); err != nil {
		if errors.Is(err, ErrStaleRecord) {
			return apperrors.Wrap("stale_wear_record", "wear timestamp is older than an existing record", err)
		}
		return apperrors.Wrap("rotation_error", "failed to record wear", err)
	}
	t.logger.Info("wear recorded", "user", userID, "items", len(itemIDs), "at", at)
	return nil
}

// WornToday lists the item ids worn on now's calendar day (UTC).
func (t *tracker) WornToday(ctx context.Context, userID int64, now time.Time) ([]string, error) {
	day := now.UTC().Truncate(24 * time.Hour)
	ids, err := t.store.WornBetween(ctx, userID, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, apperrors.Wrap("rotation_error", "failed to list wear records", err)
	}
	return ids, nil
}
