package services

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/dmitrijs2005/mangasync/internal/dbx"
	"github.com/dmitrijs2005/mangasync/internal/logging"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/manga"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/tags"
	"github.com/dmitrijs2005/mangasync/internal/timex"
)

// Package kinds, used in cache keys and archive object keys.
const (
	KindFavourites = "favourites"
	KindHistory    = "history"
)

// PackageCache keeps the last composed package of a user.
type PackageCache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

// Archiver stores a snapshot of a merged package.
type Archiver interface {
	Archive(ctx context.Context, kind string, userID int64, v any) (string, error)
}

// DefaultArchiveTimeout bounds one snapshot upload in the write path.
const DefaultArchiveTimeout = 15 * time.Second

// CacheKey is the cache key of the kind package of userID.
func CacheKey(kind string, userID int64) string {
	return "mangasync:" + kind + ":" + strconv.FormatInt(userID, 10)
}

// SyncService applies submitted packages and reconciles them with the
// stored state.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	composer    *Composer
	cache       PackageCache
	archiver    Archiver
	log         logging.Logger
	now         func() time.Time

	archiveTimeout time.Duration
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, composer *Composer, cache PackageCache, archiver Archiver, l logging.Logger) *SyncService {
	return &SyncService{
		db:          db,
		repomanager: m,
		composer:    composer,
		cache:       cache,
		archiver:    archiver,
		log:         l.With("module", "sync"),
		now:         time.Now,

		archiveTimeout: DefaultArchiveTimeout,
	}
}

func upsertManga(ctx context.Context, mangaRepo manga.Repository, tagRepo tags.Repository, m *dto.Manga) error {
	if err := mangaRepo.Upsert(ctx, m.ToModel()); err != nil {
		return fmt.Errorf("error saving manga %d: %w", m.ID, err)
	}
	for _, t := range m.TagsToModel() {
		if err := tagRepo.Upsert(ctx, t); err != nil {
			return fmt.Errorf("error saving tag %d: %w", t.ID, err)
		}
		if err := tagRepo.LinkManga(ctx, m.ID, t.ID); err != nil {
			return fmt.Errorf("error linking tag %d to manga %d: %w", t.ID, m.ID, err)
		}
	}
	return nil
}

func (s *SyncService) applyFavourites(ctx context.Context, tx dbx.DBTX, userID int64, pkg *dto.FavouritesPackage) error {
	categoryRepo := s.repomanager.Categories(tx)
	mangaRepo := s.repomanager.Manga(tx)
	tagRepo := s.repomanager.Tags(tx)
	favouriteRepo := s.repomanager.Favourites(tx)

	for i := range pkg.Categories {
		c := &pkg.Categories[i]
		if err := categoryRepo.Upsert(ctx, c.ToModel(userID)); err != nil {
			return fmt.Errorf("error saving category %d: %w", c.ID, err)
		}
	}

	for i := range pkg.Favourites {
		f := &pkg.Favourites[i]
		if err := upsertManga(ctx, mangaRepo, tagRepo, &f.Manga); err != nil {
			return err
		}
		if err := favouriteRepo.Upsert(ctx, f.ToModel(userID)); err != nil {
			return fmt.Errorf("error saving favourite %d/%d: %w", f.CategoryID, f.Manga.ID, err)
		}
	}

	if _, err := s.repomanager.Users(tx).SetFavouritesSynchronized(ctx, userID, timex.NowMillis(s.now())); err != nil {
		return fmt.Errorf("error stamping favourites watermark: %w", err)
	}
	return nil
}

func (s *SyncService) applyHistory(ctx context.Context, tx dbx.DBTX, userID int64, pkg *dto.HistoryPackage) error {
	mangaRepo := s.repomanager.Manga(tx)
	tagRepo := s.repomanager.Tags(tx)
	historyRepo := s.repomanager.History(tx)

	for i := range pkg.History {
		h := &pkg.History[i]
		if err := upsertManga(ctx, mangaRepo, tagRepo, &h.Manga); err != nil {
			return err
		}
		if err := historyRepo.Upsert(ctx, h.ToModel(userID)); err != nil {
			return fmt.Errorf("error saving history %d: %w", h.Manga.ID, err)
		}
	}

	if _, err := s.repomanager.Users(tx).SetHistorySynchronized(ctx, userID, timex.NowMillis(s.now())); err != nil {
		return fmt.Errorf("error stamping history watermark: %w", err)
	}
	return nil
}

// SyncFavourites writes pkg for userID in one transaction and returns the
// merged state. changed is false when the merged state equals both the
// submission and the state before the write, in which case the returned
// package may be ignored. Timestamps take no part in the comparison.
func (s *SyncService) SyncFavourites(ctx context.Context, userID int64, pkg *dto.FavouritesPackage) (*dto.FavouritesPackage, bool, error) {
	var before *dto.FavouritesPackage
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if before, err = s.composer.ComposeFavourites(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.applyFavourites(ctx, tx, userID, pkg); err != nil {
			return err
		}
		s.invalidate(ctx, KindFavourites, userID)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("error applying favourites: %w", err)
	}

	merged, err := s.composer.ComposeFavourites(ctx, s.db, userID)
	if err != nil {
		return nil, false, fmt.Errorf("error reloading favourites: %w", err)
	}

	s.afterWrite(ctx, KindFavourites, userID, merged)

	after := merged.Normalized()
	changed := !reflect.DeepEqual(pkg.Normalized(), after) || !reflect.DeepEqual(before.Normalized(), after)
	s.log.Info(ctx, "favourites synced", "user_id", userID,
		"categories", len(pkg.Categories), "favourites", len(pkg.Favourites), "changed", changed)
	return merged, changed, nil
}

// SyncHistory is the history counterpart of SyncFavourites.
func (s *SyncService) SyncHistory(ctx context.Context, userID int64, pkg *dto.HistoryPackage) (*dto.HistoryPackage, bool, error) {
	var before *dto.HistoryPackage
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if before, err = s.composer.ComposeHistory(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.applyHistory(ctx, tx, userID, pkg); err != nil {
			return err
		}
		s.invalidate(ctx, KindHistory, userID)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("error applying history: %w", err)
	}

	merged, err := s.composer.ComposeHistory(ctx, s.db, userID)
	if err != nil {
		return nil, false, fmt.Errorf("error reloading history: %w", err)
	}

	s.afterWrite(ctx, KindHistory, userID, merged)

	after := merged.Normalized()
	changed := !reflect.DeepEqual(pkg.Normalized(), after) || !reflect.DeepEqual(before.Normalized(), after)
	s.log.Info(ctx, "history synced", "user_id", userID, "entries", len(pkg.History), "changed", changed)
	return merged, changed, nil
}

// afterWrite refreshes the cache and archives the merged package. Failures
// are only logged; the write has already been committed.
func (s *SyncService) afterWrite(ctx context.Context, kind string, userID int64, merged any) {
	if err := s.cache.Set(ctx, CacheKey(kind, userID), merged); err != nil {
		s.log.Warn(ctx, "cache refresh failed", "kind", kind, "user_id", userID, "error", err)
		s.invalidate(ctx, kind, userID)
	}

	actx, cancel := context.WithTimeout(ctx, s.archiveTimeout)
	defer cancel()
	key, err := s.archiver.Archive(actx, kind, userID, merged)
	if err != nil {
		s.log.Warn(ctx, "archive failed", "kind", kind, "user_id", userID, "error", err)
		return
	}
	if key != "" {
		s.log.Debug(ctx, "package archived", "kind", kind, "user_id", userID, "key", key)
	}
}

func (s *SyncService) invalidate(ctx context.Context, kind string, userID int64) {
	if err := s.cache.Delete(ctx, CacheKey(kind, userID)); err != nil {
		s.log.Warn(ctx, "cache invalidate failed", "kind", kind, "user_id", userID, "error", err)
	}
}

// watermark returns the current sync timestamp of the kind collection.
func (s *SyncService) watermark(ctx context.Context, kind string, userID int64) (*int64, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if kind == KindHistory {
		return u.HistorySyncTimestamp, nil
	}
	return u.FavouritesSyncTimestamp, nil
}

// fresh reports whether a cached package stamped ts still matches the
// stored watermark. Every committed write moves the watermark forward, so an
// entry composed before it no longer matches.
func (s *SyncService) fresh(ctx context.Context, kind string, userID int64, ts *int64) bool {
	wm, err := s.watermark(ctx, kind, userID)
	if err != nil {
		s.log.Warn(ctx, "watermark read failed", "kind", kind, "user_id", userID, "error", err)
		return false
	}
	if wm == nil || ts == nil {
		return wm == nil && ts == nil
	}
	return *wm == *ts
}

// Favourites returns the stored favourites package of userID.
func (s *SyncService) Favourites(ctx context.Context, userID int64) (*dto.FavouritesPackage, error) {
	key := CacheKey(KindFavourites, userID)
	var pkg dto.FavouritesPackage
	if s.cached(ctx, key, &pkg) && s.fresh(ctx, KindFavourites, userID, pkg.Timestamp) {
		return &pkg, nil
	}

	out, err := s.composer.ComposeFavourites(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading favourites: %w", err)
	}
	if err := s.cache.Set(ctx, key, out); err != nil {
		s.log.Warn(ctx, "cache fill failed", "kind", KindFavourites, "user_id", userID, "error", err)
	}
	return out, nil
}

// History returns the stored history package of userID.
func (s *SyncService) History(ctx context.Context, userID int64) (*dto.HistoryPackage, error) {
	key := CacheKey(KindHistory, userID)
	var pkg dto.HistoryPackage
	if s.cached(ctx, key, &pkg) && s.fresh(ctx, KindHistory, userID, pkg.Timestamp) {
		return &pkg, nil
	}

	out, err := s.composer.ComposeHistory(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading history: %w", err)
	}
	if err := s.cache.Set(ctx, key, out); err != nil {
		s.log.Warn(ctx, "cache fill failed", "kind", KindHistory, "user_id", userID, "error", err)
	}
	return out, nil
}

func (s *SyncService) cached(ctx context.Context, key string, dst any) bool {
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	return ok
}
