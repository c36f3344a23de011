// Package history stores per-user reading progress.
package history

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

func (r *SQLRepository) Upsert(ctx context.Context, h *models.History) error {
	query :=
		`INSERT INTO history (manga_id, user_id, created_at, updated_at, chapter_id, page, scroll, percent, chapters, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (manga_id, user_id) DO UPDATE SET
		   created_at = EXCLUDED.created_at,
		   updated_at = EXCLUDED.updated_at,
		   chapter_id = EXCLUDED.chapter_id,
		   page = EXCLUDED.page,
		   scroll = EXCLUDED.scroll,
		   percent = EXCLUDED.percent,
		   chapters = EXCLUDED.chapters,
		   deleted_at = EXCLUDED.deleted_at`

	_, err := r.db.ExecContext(ctx, query,
		h.MangaID, h.UserID, h.CreatedAt, h.UpdatedAt, h.ChapterID, h.Page, h.Scroll, h.Percent, h.Chapters, h.DeletedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID int64) ([]*models.HistoryWithManga, error) {
	query := `SELECT h.manga_id, h.user_id, h.created_at, h.updated_at, h.chapter_id, h.page, h.scroll, h.percent, h.chapters, h.deleted_at, ` +
		manga.Columns("m") + `
		 FROM history h
		 JOIN manga m ON m.id = h.manga_id
		 WHERE h.user_id = $1
		 ORDER BY h.manga_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.HistoryWithManga, 0)
	for rows.Next() {
		h := &models.HistoryWithManga{}
		dest := append([]any{
			&h.MangaID, &h.UserID, &h.CreatedAt, &h.UpdatedAt, &h.ChapterID, &h.Page,
			&h.Scroll, &h.Percent, &h.Chapters, &h.DeletedAt,
		}, manga.ScanTargets(&h.Manga)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
