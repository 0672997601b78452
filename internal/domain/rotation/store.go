package rotation

import (
	"context"
	"errors"
	"time"
)

// ErrStaleRecord indicates an acceptance write older than an already
// recorded wear for the same item.
var ErrStaleRecord = errors.New("wear record older than stored value")

// WearRecord tracks the most recent wear of one item. A zero LastWornAt
// means never worn.
type WearRecord struct {
	ItemID     string    `json:"itemId"`
	LastWornAt time.Time `json:"lastWornAt"`
}

// WearStore persists last-worn timestamps per user and item. Implementations
// must serialize RecordWorn against concurrent reads and reject
// out-of-order timestamps with ErrStaleRecord before mutating anything.
type WearStore interface {
	LastWorn(ctx context.Context, userID int64, itemIDs []string) (map[string]time.Time, error)
	RecordWorn(ctx context.Context, userID int64, itemIDs []string, at time.Time) error
	WornBetween(ctx context.Context, userID int64, from, to time.Time) ([]string, error)
}
