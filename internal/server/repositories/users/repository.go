package users

import (
	"context"

	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	// SetFavouritesSynchronized advances the favourites watermark to
	// max(ts, previous+1) and returns the stored value.
	SetFavouritesSynchronized(ctx context.Context, id int64, ts int64) (int64, error)
	// SetHistorySynchronized is the history counterpart of SetFavouritesSynchronized.
	SetHistorySynchronized(ctx context.Context, id int64, ts int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
