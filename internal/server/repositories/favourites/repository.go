package favourites

import (
	"context"

	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

type Repository interface {
	// Upsert writes the favourite keyed by (manga_id, category_id, user_id).
	Upsert(ctx context.Context, f *models.Favourite) error
	// ListByUser returns the user's favourites joined with their manga,
	// ordered by category and manga id.
	ListByUser(ctx context.Context, userID int64) ([]*models.FavouriteWithManga, error)
}
