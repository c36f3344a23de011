// Package categories stores per-user favourite categories.
package categories

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mangasync/internal/dbx"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Upsert(ctx context.Context, c *models.Category) error {
	query :=
		`INSERT INTO categories (id, user_id, created_at, sort_key, title, "order", track, show_in_lib, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id, user_id) DO UPDATE SET
		   created_at = EXCLUDED.created_at,
		   sort_key = EXCLUDED.sort_key,
		   title = EXCLUDED.title,
		   "order" = EXCLUDED."order",
		   track = EXCLUDED.track,
		   show_in_lib = EXCLUDED.show_in_lib,
		   deleted_at = EXCLUDED.deleted_at`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.CreatedAt, c.SortKey, c.Title, c.Order, c.Track, c.ShowInLib, c.DeletedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Category, error) {
	query :=
		`SELECT id, user_id, created_at, sort_key, title, "order", track, show_in_lib, deleted_at
		 FROM categories
		 WHERE user_id = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Category, 0)
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.SortKey, &c.Title, &c.Order,
			&c.Track, &c.ShowInLib, &c.DeletedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
