package closetrepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	"github.com/yuefen/wearwise/internal/domain/closet"
)

// PostgresRepository implements closet.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const itemColumns = `id, name, kind, base_color, material, warmth, formality,
	style_tags, event_tags, season_tags, image_key`

// Insert stores a new item row.
func (r *PostgresRepository) Insert(ctx context.Context, userID int64, item catalog.Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO items (id, user_id, name, kind, base_color, material, warmth,
			formality, style_tags, event_tags, season_tags, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, item.ID, userID, item.Name, string(item.Kind), item.BaseColor, nullable(item.Material),
		item.Warmth, item.Formality, item.StyleTags, item.EventTags, item.SeasonTags,
		nullable(item.ImageKey))
	return err
}

// Update rewrites every mutable column.
func (r *PostgresRepository) Update(ctx context.Context, userID int64, item catalog.Item) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE items
		SET name = $3, kind = $4, base_color = $5, material = $6, warmth = $7,
			formality = $8, style_tags = $9, event_tags = $10, season_tags = $11,
			image_key = $12
		WHERE id = $1 AND user_id = $2
	`, item.ID, userID, item.Name, string(item.Kind), item.BaseColor, nullable(item.Material),
		item.Warmth, item.Formality, item.StyleTags, item.EventTags, item.SeasonTags,
		nullable(item.ImageKey))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the item row.
func (r *PostgresRepository) Delete(ctx context.Context, userID int64, itemID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM items WHERE id = $1 AND user_id = $2
	`, itemID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Get fetches one item scoped to its owner.
func (r *PostgresRepository) Get(ctx context.Context, userID int64, itemID string) (catalog.Item, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE id = $1 AND user_id = $2
		LIMIT 1
	`, itemID, userID)
	if err != nil {
		return catalog.Item{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return catalog.Item{}, false, rows.Err()
	}
	item, err := scanItem(rows)
	if err != nil {
		return catalog.Item{}, false, err
	}
	return item, true, rows.Err()
}

// List returns the user's wardrobe ordered by id.
func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanItem(rows pgx.Rows) (catalog.Item, error) {
	var (
		item     catalog.Item
		kind     string
		material sql.NullString
		imageKey sql.NullString
	)
	if err := rows.Scan(&item.ID, &item.Name, &kind, &item.BaseColor, &material,
		&item.Warmth, &item.Formality, &item.StyleTags, &item.EventTags,
		&item.SeasonTags, &imageKey); err != nil {
		return catalog.Item{}, err
	}
	item.Kind = catalog.Kind(kind)
	item.Material = material.String
	item.ImageKey = imageKey.String
	return item, nil
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var _ closet.Repository = (*PostgresRepository)(nil)
