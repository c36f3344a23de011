// Package tags stores catalog tags and their association with manga.
package tags

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

func (r *SQLRepository) Upsert(ctx context.Context, t *models.Tag) error {
	query :=
		`INSERT INTO tags (id, title, "key", source)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, "key" = EXCLUDED."key", source = EXCLUDED.source`

	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Title, t.Key, t.Source); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) LinkManga(ctx context.Context, mangaID, tagID int64) error {
	query :=
		`INSERT INTO manga_tags (manga_id, tag_id)
		 VALUES ($1, $2)
		 ON CONFLICT (manga_id, tag_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, mangaID, tagID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListTagIDs(ctx context.Context, mangaID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag_id FROM manga_tags WHERE manga_id = $1 ORDER BY tag_id`, mangaID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

func (r *SQLRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error) {
	result := make([]*models.Tag, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf(
		`SELECT id, title, "key", source FROM tags WHERE id IN (%s) ORDER BY id`,
		dbx.Placeholders(1, len(ids)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t := &models.Tag{}
		if err := rows.Scan(&t.ID, &t.Title, &t.Key, &t.Source); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) ListForManga(ctx context.Context, mangaID int64) ([]*models.Tag, error) {
	ids, err := r.ListTagIDs(ctx, mangaID)
	if err != nil {
		return nil, err
	}
	return r.ListByIDs(ctx, ids)
}
