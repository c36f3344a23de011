// Package manga stores the shared manga catalog.
package manga

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/dmitrijs2005/mangasync/internal/dbx"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

var columns = []string{
	"id", "title", "alt_title", "url", "public_url", "rating", "is_nsfw",
	"content_rating", "cover_url", "large_cover_url", "state", "author", "source",
}

// Columns returns the manga column list, each prefixed with alias when it is
// not empty. The order matches ScanTargets.
func Columns(alias string) string {
	if alias == "" {
		return strings.Join(columns, ", ")
	}
	prefixed := make([]string, len(columns))
	for i, c := range columns {
		prefixed[i] = alias + "." + c
	}
	return strings.Join(prefixed, ", ")
}

// ScanTargets returns the Scan destinations for a row selected with Columns.
func ScanTargets(m *models.Manga) []any {
	return []any{
		&m.ID, &m.Title, &m.AltTitle, &m.URL, &m.PublicURL, &m.Rating, &m.IsNSFW,
		&m.ContentRating, &m.CoverURL, &m.LargeCoverURL, &m.State, &m.Author, &m.Source,
	}
}

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Upsert(ctx context.Context, m *models.Manga) error {
	updates := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		updates = append(updates, c+" = EXCLUDED."+c)
	}

	query := fmt.Sprintf(
		`INSERT INTO manga (%s)
		 VALUES (%s)
		 ON CONFLICT (id) DO UPDATE SET %s`,
		Columns(""), dbx.Placeholders(1, len(columns)), strings.Join(updates, ", "))

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Title, m.AltTitle, m.URL, m.PublicURL, m.Rating, m.IsNSFW,
		m.ContentRating, m.CoverURL, m.LargeCoverURL, m.State, m.Author, m.Source)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Manga, error) {
	query := `SELECT ` + Columns("") + ` FROM manga WHERE id = $1`

	m := &models.Manga{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(ScanTargets(m)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *SQLRepository) List(ctx context.Context, offset, limit int) ([]*models.Manga, error) {
	query := `SELECT ` + Columns("") + ` FROM manga ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Manga, 0)
	for rows.Next() {
		m := &models.Manga{}
		if err := rows.Scan(ScanTargets(m)...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM manga`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
