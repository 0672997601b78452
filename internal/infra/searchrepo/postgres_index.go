package searchrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yuefen/wearwise/internal/domain/search"
)

// PostgresIndex implements search.Index on pgvector.
type PostgresIndex struct {
	pool *pgxpool.Pool
}

// NewPostgresIndex constructs the index.
func NewPostgresIndex(pool *pgxpool.Pool) *PostgresIndex {
	return &PostgresIndex{pool: pool}
}

// Upsert stores or replaces the item's feature vector.
func (i *PostgresIndex) Upsert(ctx context.Context, userID int64, itemID string, vector []float32) error {
	_, err := i.pool.Exec(ctx, `
		INSERT INTO item_vectors (user_id, item_id, features)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id)
		DO UPDATE SET features = EXCLUDED.features
	`, userID, itemID, pgvector.NewVector(vector))
	return err
}

// Remove deletes the item's vector.
func (i *PostgresIndex) Remove(ctx context.Context, userID int64, itemID string) error {
	_, err := i.pool.Exec(ctx, `
		DELETE FROM item_vectors WHERE user_id = $1 AND item_id = $2
	`, userID, itemID)
	return err
}

// VectorFor fetches a stored vector.
func (i *PostgresIndex) VectorFor(ctx context.Context, userID int64, itemID string) ([]float32, bool, error) {
	rows, err := i.pool.Query(ctx, `
		SELECT features FROM item_vectors
		WHERE user_id = $1 AND item_id = $2
		LIMIT 1
	`, userID, itemID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, false, rows.Err()
	}
	var vec pgvector.Vector
	if err := rows.Scan(&vec); err != nil {
		return nil, false, err
	}
	return vec.Slice(), true, rows.Err()
}

// Nearest returns the closest vectors by L2 distance.
func (i *PostgresIndex) Nearest(ctx context.Context, userID int64, vector []float32, limit int) ([]search.Neighbor, error) {
	rows, err := i.pool.Query(ctx, `
		SELECT item_id, features <-> $2 AS distance
		FROM item_vectors
		WHERE user_id = $1
		ORDER BY features <-> $2, item_id
		LIMIT $3
	`, userID, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []search.Neighbor
	for rows.Next() {
		var n search.Neighbor
		if err := rows.Scan(&n.ItemID, &n.Distance); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

var _ search.Index = (*PostgresIndex)(nil)
