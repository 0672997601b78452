package closet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

// Service manages a user's wardrobe inventory and produces the immutable
// snapshots the scoring engine consumes.
type Service interface {
	Create(ctx context.Context, userID int64, in ItemInput) (catalog.Item, error)
	Update(ctx context.Context, userID int64, itemID string, in ItemInput) (catalog.Item, error)
	Delete(ctx context.Context, userID int64, itemID string) error
	Get(ctx context.Context, userID int64, itemID string) (catalog.Item, error)
	List(ctx context.Context, userID int64) ([]catalog.Item, error)
	Snapshot(ctx context.Context, userID int64) (catalog.Snapshot, error)
	AttachImage(ctx context.Context, userID int64, itemID string, data []byte, mimeType string) (catalog.Item, error)
}

// Repository abstracts item persistence.
type Repository interface {
	Insert(ctx context.Context, userID int64, item catalog.Item) error
	Update(ctx context.Context, userID int64, item catalog.Item) (bool, error)
	Delete(ctx context.Context, userID int64, itemID string) (bool, error)
	Get(ctx context.Context, userID int64, itemID string) (catalog.Item, bool, error)
	List(ctx context.Context, userID int64) ([]catalog.Item, error)
}

// Indexer keeps the similar-item index in sync with inventory changes. The
// search domain implements it.
type Indexer interface {
	IndexItem(ctx context.Context, userID int64, item catalog.Item) error
	RemoveItem(ctx context.Context, userID int64, itemID string) error
}

// ImageStorage stores item photos. The object storage adapter implements it.
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
}

// ItemInput carries the mutable item attributes.
type ItemInput struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	BaseColor  string   `json:"baseColor"`
	Material   string   `json:"material"`
	Warmth     int      `json:"warmth"`
	Formality  float64  `json:"formality"`
	StyleTags  []string `json:"styleTags"`
	EventTags  []string `json:"eventTags"`
	SeasonTags []string `json:"seasonTags"`
}

type service struct {
	repo    Repository
	indexer Indexer
	images  ImageStorage
	logger  *slog.Logger
}

// NewService wires up the closet domain. Indexer and images may be nil when
// the corresponding infrastructure is disabled.
func NewService(repo Repository, indexer Indexer, images ImageStorage, logger *slog.Logger) Service {
	return &service{
		repo:    repo,
		indexer: indexer,
		images:  images,
		logger:  logger.With("component", "closet.service"),
	}
}

func (s *service) Create(ctx context.Context, userID int64, in ItemInput) (catalog.Item, error) {
	item := in.toItem(uuid.NewString())
	if err := item.Validate(); err != nil {
		return catalog.Item{}, err
	}
	if err := s.repo.Insert(ctx, userID, item); err != nil {
		return catalog.Item{}, apperrors.Wrap("closet_error", "failed to store item", err)
	}
	s.reindex(ctx, userID, item)
	return item, nil
}

func (s *service) Update(ctx context.Context, userID int64, itemID string, in ItemInput) (catalog.Item, error) {
	current, found, err := s.repo.Get(ctx, userID, itemID)
	if err != nil {
		return catalog.Item{}, apperrors.Wrap("closet_error", "failed to load item", err)
	}
	if !found {
		return catalog.Item{}, apperrors.Wrap("not_found", "item not found", nil)
	}
	item := in.toItem(itemID)
	item.ImageKey = current.ImageKey
	if err := item.Validate(); err != nil {
		return catalog.Item{}, err
	}
	updated, err := s.repo.Update(ctx, userID, item)
	if err != nil {
		return catalog.Item{}, apperrors.Wrap("closet_error", "failed to update item", err)
	}
	if !updated {
		return catalog.Item{}, apperrors.Wrap("not_found", "item not found", nil)
	}
	s.reindex(ctx, userID, item)
	return item, nil
}

func (s *service) Delete(ctx context.Context, userID int64, itemID string) error {
	deleted, err := s.repo.Delete(ctx, userID, itemID)
	if err != nil {
		return apperrors.Wrap("closet_error", "failed to delete item", err)
	}
	if !deleted {
		return apperrors.Wrap("not_found", "item not found", nil)
	}
	if s.indexer != nil {
		if err := s.indexer.RemoveItem(ctx, userID, itemID); err != nil {
			s.logger.Warn("search index removal failed", "item", itemID, "error", err)
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID int64, itemID string) (catalog.Item, error) {
	item, found, err := s.repo.Get(ctx, userID, itemID)
	if err != nil {
		return catalog.Item{}, apperrors.Wrap("closet_error", "failed to load item", err)
	}
	if !found {
		return catalog.Item{}, apperrors.Wrap("not_found", "item not found", nil)
	}
	return item, nil
}

func (s *service) List(ctx context.Context, userID int64) ([]catalog.Item, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("closet_error", "failed to list items", err)
	}
	return items, nil
}

// Snapshot materializes the user's wardrobe for one engine invocation.
func (s *service) Snapshot(ctx context.Context, userID int64) (catalog.Snapshot, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("closet_error", "failed to snapshot wardrobe", err)
	}
	snap := make(catalog.Snapshot, len(items))
	for _, item := range items {
		snap[item.ID] = item
	}
	return snap, nil
}

func (s *service) AttachImage(ctx context.Context, userID int64, itemID string, data []byte, mimeType string) (catalog.Item, error) {
	if s.images == nil {
		return catalog.Item{}, apperrors.Wrap("storage_disabled", "image storage is not configured", nil)
	}
	if len(data) == 0 {
		return catalog.Item{}, apperrors.Wrap("invalid_request", "image payload is empty", nil)
	}
	item, found, err := s.repo.Get(ctx, userID, itemID)
	if err != nil {
		return catalog.Item{}, apperrors.Wrap("closet_error", "failed to load item", err)
	}
	if !found {
		return catalog.Item{}, apperrors.Wrap("not_found", "item not found", nil)
	}

	key := imageKey(userID, itemID, mimeType)
	if err := s.images.Put(ctx, key, data, mimeType); err != nil {
		return catalog.Item{}, apperrors.Wrap("storage_error", "failed to store image", err)
	}
	item.ImageKey = key
	if _, err := s.repo.Update(ctx, userID, item); err != nil {
		return catalog.Item{}, apperrors.Wrap("closet_error", "failed to link image", err)
	}
	return item, nil
}

func (s *service) reindex(ctx context.Context, userID int64, item catalog.Item) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexItem(ctx, userID, item); err != nil {
		// Search stays best-effort; inventory writes must not fail on it.
		s.logger.Warn("search indexing failed", "item", item.ID, "error", err)
	}
}

func (in ItemInput) toItem(id string) catalog.Item {
	return catalog.Item{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		Kind:       catalog.Kind(strings.ToLower(strings.TrimSpace(in.Kind))),
		BaseColor:  strings.ToLower(strings.TrimSpace(in.BaseColor)),
		Material:   strings.ToLower(strings.TrimSpace(in.Material)),
		Warmth:     in.Warmth,
		Formality:  in.Formality,
		StyleTags:  normalizeTags(in.StyleTags),
		EventTags:  normalizeTags(in.EventTags),
		SeasonTags: normalizeTags(in.SeasonTags),
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		clean := strings.ToLower(strings.TrimSpace(tag))
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func imageKey(userID int64, itemID, mimeType string) string {
	ext := ".bin"
	switch mimeType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	return fmt.Sprintf("users/%d/items/%s%s", userID, itemID, ext)
}
