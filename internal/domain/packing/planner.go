package packing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	"github.com/yuefen/wearwise/internal/domain/stylist"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

// Config bounds trip planning.
type Config struct {
	// MaxTripDays caps how far ahead a capsule can be planned.
	MaxTripDays int
	// CandidatesPerDay is how many ranked outfits the planner requests per
	// day before applying the reuse budget.
	CandidatesPerDay int
}

// DefaultConfig returns the published planner defaults.
func DefaultConfig() Config {
	return Config{MaxTripDays: 30, CandidatesPerDay: 10}
}

// Plan is a minimal capsule covering every trip day.
type Plan struct {
	TripDays      int              `json:"tripDays"`
	SelectedItems []string         `json:"selectedItems"`
	Days          []stylist.Outfit `json:"days"`
}

// Planner selects a minimal item set covering a trip horizon.
type Planner interface {
	Pack(ctx context.Context, userID int64, snap catalog.Snapshot, contexts []stylist.Context, tripDays int) (Plan, error)
}

type planner struct {
	cfg     Config
	stylist stylist.Service
	logger  *slog.Logger
}

// NewPlanner wires up the capsule packing domain.
func NewPlanner(cfg Config, svc stylist.Service, logger *slog.Logger) Planner {
	if cfg.MaxTripDays <= 0 {
		cfg.MaxTripDays = DefaultConfig().MaxTripDays
	}
	if cfg.CandidatesPerDay <= 0 {
		cfg.CandidatesPerDay = DefaultConfig().CandidatesPerDay
	}
	return &planner{cfg: cfg, stylist: svc, logger: logger.With("component", "packing.planner")}
}

// Pack scores each day independently, then greedily picks the best outfit
// per day whose items stay within the reuse budget of ceil(tripDays/2)
// appearances. Rotation state is never consumed by tentative packing.
func (p *planner) Pack(ctx context.Context, userID int64, snap catalog.Snapshot, contexts []stylist.Context, tripDays int) (Plan, error) {
	if tripDays < 1 || tripDays > p.cfg.MaxTripDays {
		return Plan{}, apperrors.Wrap("invalid_request", fmt.Sprintf("tripDays must be in [1,%d]", p.cfg.MaxTripDays), nil)
	}
	if len(contexts) == 0 {
		return Plan{}, apperrors.Wrap("invalid_request", "at least one context is required", nil)
	}

	budget := (tripDays + 1) / 2
	useCount := make(map[string]int)
	selected := make(map[string]struct{})
	days := make([]stylist.Outfit, 0, tripDays)

	for day := 0; day < tripDays; day++ {
		dayCtx := contexts[len(contexts)-1]
		if day < len(contexts) {
			dayCtx = contexts[day]
		}

		candidates, err := p.stylist.Suggest(ctx, userID, snap, dayCtx, p.cfg.CandidatesPerDay)
		if err != nil {
			return Plan{}, err
		}
		if len(candidates) == 0 {
			gaps := stylist.MandatorySlotGaps(snap, dayCtx)
			return Plan{}, apperrors.Wrap("insufficient_wardrobe",
				fmt.Sprintf("day %d cannot be dressed: add more items of kind %s", day+1, strings.Join(gaps, ", ")), nil)
		}

		pick, relaxed := choose(candidates, useCount, budget, tripDays)
		if relaxed > 0 {
			// Copy before appending: candidates may be shared with the
			// suggestion cache.
			pick.Rationale = append(append([]string(nil), pick.Rationale...),
				fmt.Sprintf("reuse budget relaxed by %d for this day", relaxed))
			p.logger.Info("reuse budget relaxed", "user", userID, "day", day+1, "relaxed", relaxed)
		}

		for _, id := range pick.Slots.ItemIDs() {
			useCount[id]++
			selected[id] = struct{}{}
		}
		days = append(days, pick)
	}

	items := make([]string, 0, len(selected))
	for id := range selected {
		items = append(items, id)
	}
	sort.Strings(items)

	return Plan{TripDays: tripDays, SelectedItems: items, Days: days}, nil
}

// choose returns the highest-ranked candidate whose items all sit under the
// reuse budget, relaxing the budget one step at a time for this day only
// when nothing fits. With relaxation up to tripDays some candidate always
// qualifies, so degraded variety never fails the whole plan.
func choose(candidates []stylist.Outfit, useCount map[string]int, budget, tripDays int) (stylist.Outfit, int) {
	for relax := 0; ; relax++ {
		limit := budget + relax
		for _, cand := range candidates {
			if underBudget(cand, useCount, limit) {
				return cand, relax
			}
		}
		if limit >= tripDays {
			return candidates[0], relax
		}
	}
}

func underBudget(outfit stylist.Outfit, useCount map[string]int, limit int) bool {
	for _, id := range outfit.Slots.ItemIDs() {
		if useCount[id] >= limit {
			return false
		}
	}
	return true
}
