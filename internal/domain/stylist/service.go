package stylist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

// Service is the context-aware outfit scoring engine.
type Service interface {
	Suggest(ctx context.Context, userID int64, snap catalog.Snapshot, reqCtx Context, topN int) ([]Outfit, error)
}

// FreshnessProvider supplies rotation freshness per item. The rotation
// tracker implements it.
type FreshnessProvider interface {
	FreshnessAll(ctx context.Context, userID int64, itemIDs []string, now time.Time) (map[string]float64, error)
}

// SuggestionCache stores ranked results keyed by a request fingerprint.
type SuggestionCache interface {
	Get(ctx context.Context, key string) ([]Outfit, bool, error)
	Set(ctx context.Context, key string, outfits []Outfit, ttl time.Duration) error
}

type service struct {
	cfg    Config
	fresh  FreshnessProvider
	cache  SuggestionCache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the scoring engine.
func NewService(cfg Config, fresh FreshnessProvider, cache SuggestionCache, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg.normalized(),
		fresh:  fresh,
		cache:  cache,
		logger: logger.With("component", "stylist.service"),
		now:    time.Now,
	}
}

func (s *service) Suggest(ctx context.Context, userID int64, snap catalog.Snapshot, reqCtx Context, topN int) ([]Outfit, error) {
	if topN <= 0 {
		return nil, apperrors.Wrap("invalid_request", "topN must be at least 1", nil)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	cacheKey := suggestCacheKey(userID, snap, reqCtx, topN)
	if s.cache != nil {
		if cached, found, err := s.cache.Get(ctx, cacheKey); err == nil && found {
			return cached, nil
		} else if err != nil {
			s.logger.Warn("suggestion cache read failed", "error", err)
		}
	}

	bySlot := eligibleBySlot(snap, reqCtx)
	scored, err := s.scoreSlots(ctx, userID, bySlot, reqCtx)
	if err != nil {
		return nil, err
	}

	candidates := s.cfg.enumerate(scored, reqCtx)
	if len(candidates) == 0 {
		// No assemblable outfit is a valid zero-candidate outcome, not an
		// error.
		s.logger.Info("no outfit satisfies mandatory slots", "user", userID, "items", len(snap))
		return []Outfit{}, nil
	}

	if topN > len(candidates) {
		topN = len(candidates)
	}
	out := make([]Outfit, 0, topN)
	for _, cand := range candidates[:topN] {
		cand.outfit.Rationale = explain(cand.reasons, reqCtx)
		out = append(out, cand.outfit)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, out, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("suggestion cache write failed", "error", err)
		}
	}
	return out, nil
}

// scoreSlots resolves freshness once for all eligible items, scores them,
// and keeps the top-k per slot.
func (s *service) scoreSlots(ctx context.Context, userID int64, bySlot map[catalog.Kind][]catalog.Item, reqCtx Context) (map[catalog.Kind][]scoredItem, error) {
	var ids []string
	for _, items := range bySlot {
		for _, item := range items {
			ids = append(ids, item.ID)
		}
	}
	sort.Strings(ids)

	freshness := map[string]float64{}
	if s.fresh != nil && len(ids) > 0 {
		var err error
		freshness, err = s.fresh.FreshnessAll(ctx, userID, ids, reqCtx.Timestamp)
		if err != nil {
			return nil, apperrors.Wrap("rotation_error", "failed to resolve rotation freshness", err)
		}
	}

	out := make(map[catalog.Kind][]scoredItem, len(bySlot))
	for kind, items := range bySlot {
		scored := make([]scoredItem, 0, len(items))
		for _, item := range items {
			fresh, ok := freshness[item.ID]
			if !ok {
				fresh = 1.0 // never worn
			}
			scored = append(scored, s.cfg.scoreItem(item, reqCtx, fresh))
		}
		out[kind] = rankSlot(scored, s.cfg.TopKPerSlot)
	}
	return out, nil
}

// suggestCacheKey fingerprints everything the ranking depends on except the
// request timestamp; the cache TTL bounds freshness staleness instead.
func suggestCacheKey(userID int64, snap catalog.Snapshot, reqCtx Context, topN int) string {
	avoid := make([]string, 0, len(reqCtx.AvoidMaterials))
	for m := range reqCtx.AvoidMaterials {
		avoid = append(avoid, m)
	}
	sort.Strings(avoid)

	blob, _ := json.Marshal(struct {
		UserID        int64
		Digest        string
		Mood          Mood
		Event         string
		TimeOfDay     TimeOfDay
		Band          Band
		IdealWarmth   int
		Precipitation bool
		Avoid         []string
		TopN          int
	}{userID, snap.Digest(), reqCtx.Mood, reqCtx.Event, reqCtx.TimeOfDay, reqCtx.Band, reqCtx.IdealWarmth, reqCtx.Precipitation, avoid, topN})
	sum := sha256.Sum256(blob)
	return "suggest:" + hex.EncodeToString(sum[:])
}
