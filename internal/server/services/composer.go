package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mangasync/internal/dbx"
	"github.com/dmitrijs2005/mangasync/internal/logging"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/tags"
)

// Composer assembles the nested favourites and history packages of a user
// from the flat tables.
type Composer struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewComposer(m repomanager.RepositoryManager, l logging.Logger) *Composer {
	return &Composer{repomanager: m, log: l.With("module", "composer")}
}

// tagLookup resolves the tags of each distinct manga once per composition.
type tagLookup struct {
	repo tags.Repository
	seen map[int64][]*models.Tag
}

func (t *tagLookup) forManga(ctx context.Context, mangaID int64) ([]*models.Tag, error) {
	if tt, ok := t.seen[mangaID]; ok {
		return tt, nil
	}
	tt, err := t.repo.ListForManga(ctx, mangaID)
	if err != nil {
		return nil, err
	}
	t.seen[mangaID] = tt
	return tt, nil
}

func (c *Composer) newTagLookup(db dbx.DBTX) *tagLookup {
	return &tagLookup{repo: c.repomanager.Tags(db), seen: make(map[int64][]*models.Tag)}
}

func (c *Composer) manga(ctx context.Context, lookup *tagLookup, m *models.Manga) (dto.Manga, error) {
	tt, err := lookup.forManga(ctx, m.ID)
	if err != nil {
		return dto.Manga{}, fmt.Errorf("error loading tags of manga %d: %w", m.ID, err)
	}
	out, unknown := dto.MangaFromModel(m, tt)
	if len(unknown) > 0 {
		c.log.Warn(ctx, "unrecognised stored values replaced by defaults", "manga_id", m.ID, "columns", unknown)
	}
	return out, nil
}

// ComposeFavourites loads the categories and favourites of userID together
// with the favourites watermark. Categories are ordered by id, favourites by
// category then manga id.
func (c *Composer) ComposeFavourites(ctx context.Context, db dbx.DBTX, userID int64) (*dto.FavouritesPackage, error) {
	user, err := c.repomanager.Users(db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	cats, err := c.repomanager.Categories(db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading categories: %w", err)
	}

	favs, err := c.repomanager.Favourites(db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading favourites: %w", err)
	}

	pkg := &dto.FavouritesPackage{
		Categories: make([]dto.Category, 0, len(cats)),
		Favourites: make([]dto.Favourite, 0, len(favs)),
		Timestamp:  user.FavouritesSyncTimestamp,
	}
	for _, cat := range cats {
		pkg.Categories = append(pkg.Categories, dto.CategoryFromModel(cat))
	}

	lookup := c.newTagLookup(db)
	for _, f := range favs {
		m, err := c.manga(ctx, lookup, &f.Manga)
		if err != nil {
			return nil, err
		}
		pkg.Favourites = append(pkg.Favourites, dto.FavouriteFromModel(&f.Favourite, m))
	}

	return pkg, nil
}

// ComposeHistory loads the history of userID ordered by manga id together
// with the history watermark.
func (c *Composer) ComposeHistory(ctx context.Context, db dbx.DBTX, userID int64) (*dto.HistoryPackage, error) {
	user, err := c.repomanager.Users(db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	rows, err := c.repomanager.History(db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading history: %w", err)
	}

	pkg := &dto.HistoryPackage{
		History:   make([]dto.History, 0, len(rows)),
		Timestamp: user.HistorySyncTimestamp,
	}

	lookup := c.newTagLookup(db)
	for _, h := range rows {
		m, err := c.manga(ctx, lookup, &h.Manga)
		if err != nil {
			return nil, err
		}
		pkg.History = append(pkg.History, dto.HistoryFromModel(&h.History, m))
	}

	return pkg, nil
}
