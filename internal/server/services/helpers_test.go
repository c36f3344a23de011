package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mangasync/internal/logging"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a migrated SQLite database in a temp dir.
func newTestDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	db, err := repomanager.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "sync.db"), 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.NewSQLRepositoryManager("sqlite")
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db))
	return db, rm
}

func createUser(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager, email string) int64 {
	t.Helper()
	u, err := rm.Users(db).Create(context.Background(), &models.User{Email: email, PasswordHash: "x"})
	require.NoError(t, err)
	return u.ID
}

type memCache struct {
	mu        sync.Mutex
	data      map[string][]byte
	getErr    error
	setErr    error
	deleteErr error

	// beforeSet, when set, runs once at the start of the next Set.
	beforeSet func()
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.data, key)
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type archived struct {
	kind   string
	userID int64
}

type fakeArchiver struct {
	mu    sync.Mutex
	calls []archived
	err   error
}

func (a *fakeArchiver) Archive(_ context.Context, kind string, userID int64, _ any) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, archived{kind, userID})
	if a.err != nil {
		return "", a.err
	}
	return "snapshots/" + kind, nil
}

var errBoom = errors.New("boom")

type syncFixture struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	cache    *memCache
	archiver *fakeArchiver
	svc      *SyncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	db, rm := newTestDB(t)
	f := &syncFixture{db: db, rm: rm, cache: newMemCache(), archiver: &fakeArchiver{}}
	f.svc = NewSyncService(db, rm, NewComposer(rm, logging.Nop{}), f.cache, f.archiver, logging.Nop{})
	return f
}

func ptr[T any](v T) *T { return &v }

func sampleManga(id int64, tags ...dto.MangaTag) dto.Manga {
	if tags == nil {
		tags = []dto.MangaTag{}
	}
	return dto.Manga{
		ID:            id,
		Title:         "Manga",
		URL:           "/manga/1",
		PublicURL:     "https://example.org/manga/1",
		Rating:        0.5,
		ContentRating: ptr(dto.RatingSafe),
		CoverURL:      "https://example.org/cover.jpg",
		State:         ptr(dto.StateOngoing),
		Author:        ptr("Author"),
		Source:        "EXAMPLE",
		Tags:          tags,
	}
}

func sampleFavourites() *dto.FavouritesPackage {
	return &dto.FavouritesPackage{
		Categories: []dto.Category{
			{ID: 1, CreatedAt: 1000, SortKey: 0, Track: true, Title: "Reading", Order: "NAME", ShowInLib: true},
			{ID: 2, CreatedAt: 1001, SortKey: 1, Title: "Planned", Order: "NEWEST"},
		},
		Favourites: []dto.Favourite{
			{MangaID: 10, Manga: sampleManga(10, dto.MangaTag{ID: 1, Title: "Action", Key: "action", Source: "EXAMPLE"},
				dto.MangaTag{ID: 2, Title: "Drama", Key: "drama", Source: "EXAMPLE"}), CategoryID: 1, CreatedAt: 1000},
			{MangaID: 11, Manga: sampleManga(11), CategoryID: 2, SortKey: 3, Pinned: true, CreatedAt: 1002},
		},
	}
}

func sampleHistory() *dto.HistoryPackage {
	return &dto.HistoryPackage{
		History: []dto.History{
			{MangaID: 10, Manga: sampleManga(10, dto.MangaTag{ID: 1, Title: "Action", Key: "action", Source: "EXAMPLE"}),
				CreatedAt: 1, UpdatedAt: 2, ChapterID: 100, Page: 5, Scroll: 0.25, Percent: 0.5, Chapters: 20},
			{MangaID: 12, Manga: sampleManga(12), CreatedAt: 3, UpdatedAt: 4, ChapterID: 200, Chapters: dto.UnknownChapters},
		},
	}
}
