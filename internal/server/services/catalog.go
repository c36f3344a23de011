package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/repomanager"
)

// CatalogService serves the shared manga catalog and server statistics.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	composer    *Composer
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, composer *Composer) *CatalogService {
	return &CatalogService{db: db, repomanager: m, composer: composer}
}

// GetManga returns the manga with its tags, or common.ErrorNotFound.
func (s *CatalogService) GetManga(ctx context.Context, id int64) (*dto.Manga, error) {
	m, err := s.repomanager.Manga(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.composer.manga(ctx, s.composer.newTagLookup(s.db), m)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListManga pages through the catalog ordered by id.
func (s *CatalogService) ListManga(ctx context.Context, offset, limit int) ([]dto.Manga, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", common.ErrorValidation)
	}
	if limit < 0 || limit > common.MaxListLimit {
		return nil, fmt.Errorf("%w: limit should be from 0 to %d", common.ErrorValidation, common.MaxListLimit)
	}

	rows, err := s.repomanager.Manga(s.db).List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing manga: %w", err)
	}

	lookup := s.composer.newTagLookup(s.db)
	out := make([]dto.Manga, 0, len(rows))
	for _, m := range rows {
		item, err := s.composer.manga(ctx, lookup, m)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *CatalogService) Stats(ctx context.Context) (*dto.Stats, error) {
	users, err := s.repomanager.Users(s.db).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	manga, err := s.repomanager.Manga(s.db).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting manga: %w", err)
	}
	return &dto.Stats{UsersCount: users, MangaCount: manga}, nil
}

// Ping reports whether the database answers.
func (s *CatalogService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
