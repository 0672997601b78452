package suggestcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yuefen/wearwise/internal/domain/stylist"
)

// ValkeyStore caches ranked suggestions in a Valkey-compatible database so
// replicas share results.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a cache backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "wearwise"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements stylist.SuggestionCache.
func (s *ValkeyStore) Get(ctx context.Context, key string) ([]stylist.Outfit, bool, error) {
	cmd := s.client.B().Get().Key(s.prefix + ":" + key).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var outfits []stylist.Outfit
	if err := json.Unmarshal([]byte(payload), &outfits); err != nil {
		return nil, false, err
	}
	return outfits, true, nil
}

// Set implements stylist.SuggestionCache.
func (s *ValkeyStore) Set(ctx context.Context, key string, outfits []stylist.Outfit, ttl time.Duration) error {
	payload, err := json.Marshal(outfits)
	if err != nil {
		return err
	}
	fullKey := s.prefix + ":" + key
	if ttl > 0 {
		cmd := s.client.B().Set().Key(fullKey).Value(string(payload)).Ex(ttl).Build()
		return s.client.Do(ctx, cmd).Error()
	}
	cmd := s.client.B().Set().Key(fullKey).Value(string(payload)).Build()
	return s.client.Do(ctx, cmd).Error()
}

var _ stylist.SuggestionCache = (*ValkeyStore)(nil)
