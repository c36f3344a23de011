// Package favourites stores per-user favourite entries.
package favourites

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mangasync/internal/dbx"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/manga"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Upsert(ctx context.Context, f *models.Favourite) error {
	query :=
		`INSERT INTO favourites (manga_id, category_id, user_id, sort_key, pinned, created_at, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (manga_id, category_id, user_id) DO UPDATE SET
		   sort_key = EXCLUDED.sort_key,
		   pinned = EXCLUDED.pinned,
		   created_at = EXCLUDED.created_at,
		   deleted_at = EXCLUDED.deleted_at`

	_, err := r.db.ExecContext(ctx, query,
		f.MangaID, f.CategoryID, f.UserID, f.SortKey, f.Pinned, f.CreatedAt, f.DeletedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID int64) ([]*models.FavouriteWithManga, error) {
	query := `SELECT f.manga_id, f.category_id, f.user_id, f.sort_key, f.pinned, f.created_at, f.deleted_at, ` +
		manga.Columns("m") + `
		 FROM favourites f
		 JOIN manga m ON m.id = f.manga_id
		 WHERE f.user_id = $1
		 ORDER BY f.category_id, f.manga_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.FavouriteWithManga, 0)
	for rows.Next() {
		f := &models.FavouriteWithManga{}
		dest := append([]any{
			&f.MangaID, &f.CategoryID, &f.UserID, &f.SortKey, &f.Pinned, &f.CreatedAt, &f.DeletedAt,
		}, manga.ScanTargets(&f.Manga)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
