package manga

import (
	"context"

	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

type Repository interface {
	// Upsert inserts the manga or overwrites every non-key column.
	Upsert(ctx context.Context, m *models.Manga) error
	GetByID(ctx context.Context, id int64) (*models.Manga, error)
	List(ctx context.Context, offset, limit int) ([]*models.Manga, error)
	Count(ctx context.Context) (int64, error)
}
