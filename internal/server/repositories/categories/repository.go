package categories

import (
	"context"

	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

type Repository interface {
	// Upsert writes the category keyed by (id, user_id).
	Upsert(ctx context.Context, c *models.Category) error
	ListByUser(ctx context.Context, userID int64) ([]*models.Category, error)
}
