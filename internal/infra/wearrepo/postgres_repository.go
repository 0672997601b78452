package wearrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yuefen/wearwise/internal/domain/rotation"
)

// PostgresRepository implements rotation.WearStore using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// LastWorn fetches the stored timestamps for the requested items.
func (r *PostgresRepository) LastWorn(ctx context.Context, userID int64, itemIDs []string) (map[string]time.Time, error) {
	if len(itemIDs) == 0 {
		return map[string]time.Time{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT item_id, last_worn_at
		FROM wear_records
		WHERE user_id = $1 AND item_id = ANY($2)
	`, userID, itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time, len(itemIDs))
	for rows.Next() {
		var (
			itemID string
			worn   time.Time
		)
		if err := rows.Scan(&itemID, &worn); err != nil {
			return nil, err
		}
		out[itemID] = worn
	}
	return out, rows.Err()
}

// RecordWorn upserts the batch inside one transaction; a single stale
// timestamp rolls the whole write back.
func (r *PostgresRepository) RecordWorn(ctx context.Context, userID int64, itemIDs []string, at time.Time) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, itemID := range itemIDs {
			var stored time.Time
			err := tx.QueryRow(ctx, `
				SELECT last_worn_at FROM wear_records
				WHERE user_id = $1 AND item_id = $2
				FOR UPDATE
			`, userID, itemID).Scan(&stored)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				// first wear
			case err != nil:
				return err
			case at.Before(stored):
				return rotation.ErrStaleRecord
			}

			if _, err := tx.Exec(ctx, `
				INSERT INTO wear_records (user_id, item_id, last_worn_at)
				VALUES ($1, $2, $3)
				ON CONFLICT (user_id, item_id)
				DO UPDATE SET last_worn_at = EXCLUDED.last_worn_at
			`, userID, itemID, at); err != nil {
				return err
			}
		}
		return nil
	})
}

// WornBetween lists items whose last wear falls inside [from, to).
func (r *PostgresRepository) WornBetween(ctx context.Context, userID int64, from, to time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT item_id
		FROM wear_records
		WHERE user_id = $1 AND last_worn_at >= $2 AND last_worn_at < $3
		ORDER BY item_id
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, err
		}
		out = append(out, itemID)
	}
	return out, rows.Err()
}

var _ rotation.WearStore = (*PostgresRepository)(nil)
