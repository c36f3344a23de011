package history

import (
	"context"

	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

type Repository interface {
	// Upsert writes the entry keyed by (manga_id, user_id).
	Upsert(ctx context.Context, h *models.History) error
	// ListByUser returns the user's history joined with manga, ordered by manga id.
	ListByUser(ctx context.Context, userID int64) ([]*models.HistoryWithManga, error)
}
