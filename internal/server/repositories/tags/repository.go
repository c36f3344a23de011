package tags

import (
	"context"

	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, t *models.Tag) error
	// LinkManga records that tagID belongs to mangaID. Existing links are kept.
	LinkManga(ctx context.Context, mangaID, tagID int64) error
	ListTagIDs(ctx context.Context, mangaID int64) ([]int64, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error)
	// ListForManga resolves the tags of a manga through the join table.
	ListForManga(ctx context.Context, mangaID int64) ([]*models.Tag, error)
}
