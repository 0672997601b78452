package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

// Config bounds similarity search behavior.
type Config struct {
	// Dimensions is the feature vector width the index expects.
	Dimensions int
	// MaxResults caps the neighbours returned per query.
	MaxResults int
}

// DefaultConfig returns the published search defaults.
func DefaultConfig() Config {
	return Config{Dimensions: 64, MaxResults: 10}
}

// Request asks for items similar to an existing item or to a free-form
// query string.
type Request struct {
	ItemID string `json:"itemId,omitempty"`
	Query  string `json:"query,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Match is one neighbour with its distance (smaller is closer).
type Match struct {
	ItemID   string  `json:"itemId"`
	Distance float64 `json:"distance"`
}

// Neighbor is a raw index hit.
type Neighbor struct {
	ItemID   string
	Distance float64
}

// Index persists item feature vectors and answers nearest-neighbour
// queries. Backed by pgvector or memory.
type Index interface {
	Upsert(ctx context.Context, userID int64, itemID string, vector []float32) error
	Remove(ctx context.Context, userID int64, itemID string) error
	VectorFor(ctx context.Context, userID int64, itemID string) ([]float32, bool, error)
	Nearest(ctx context.Context, userID int64, vector []float32, limit int) ([]Neighbor, error)
}

// Embedder turns text into a feature vector. The default implementation is
// deterministic hashing, not a learned model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service answers similar-item queries and keeps the index in sync with the
// wardrobe; it implements closet.Indexer.
type Service interface {
	Similar(ctx context.Context, userID int64, req Request) ([]Match, error)
	IndexItem(ctx context.Context, userID int64, item catalog.Item) error
	RemoveItem(ctx context.Context, userID int64, itemID string) error
}

type service struct {
	cfg      Config
	index    Index
	embedder Embedder
	logger   *slog.Logger
}

// NewService wires up the search domain.
func NewService(cfg Config, index Index, embedder Embedder, logger *slog.Logger) Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	return &service{
		cfg:      cfg,
		index:    index,
		embedder: embedder,
		logger:   logger.With("component", "search.service"),
	}
}

func (s *service) Similar(ctx context.Context, userID int64, req Request) ([]Match, error) {
	limit := req.Limit
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}

	var (
		vector []float32
		err    error
		anchor string
	)
	switch {
	case strings.TrimSpace(req.ItemID) != "":
		anchor = strings.TrimSpace(req.ItemID)
		var found bool
		vector, found, err = s.index.VectorFor(ctx, userID, anchor)
		if err != nil {
			return nil, apperrors.Wrap("search_error", "failed to load item vector", err)
		}
		if !found {
			return nil, apperrors.Wrap("not_found", "item is not indexed", nil)
		}
	case strings.TrimSpace(req.Query) != "":
		vector, err = s.embedder.Embed(ctx, strings.TrimSpace(req.Query))
		if err != nil {
			return nil, apperrors.Wrap("search_error", "failed to embed query", err)
		}
	default:
		return nil, apperrors.Wrap("invalid_request", "either itemId or query is required", nil)
	}

	// Fetch one extra so the anchor item can be dropped from its own
	// results.
	neighbors, err := s.index.Nearest(ctx, userID, vector, limit+1)
	if err != nil {
		return nil, apperrors.Wrap("search_error", "nearest neighbour lookup failed", err)
	}

	out := make([]Match, 0, limit)
	for _, n := range neighbors {
		if n.ItemID == anchor {
			continue
		}
		out = append(out, Match{ItemID: n.ItemID, Distance: n.Distance})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// IndexItem embeds the item's descriptive attributes and upserts its vector.
func (s *service) IndexItem(ctx context.Context, userID int64, item catalog.Item) error {
	vector, err := s.embedder.Embed(ctx, describeItem(item))
	if err != nil {
		return err
	}
	return s.index.Upsert(ctx, userID, item.ID, vector)
}

func (s *service) RemoveItem(ctx context.Context, userID int64, itemID string) error {
	return s.index.Remove(ctx, userID, itemID)
}

// describeItem flattens the attributes that make two garments "similar"
// into the text fed to the embedder.
func describeItem(item catalog.Item) string {
	parts := []string{string(item.Kind), item.BaseColor, item.Material, item.Name}
	parts = append(parts, item.StyleTags...)
	parts = append(parts, item.EventTags...)
	parts = append(parts, item.SeasonTags...)
	clean := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			clean = append(clean, strings.ToLower(strings.TrimSpace(p)))
		}
	}
	return strings.Join(clean, " ")
}
