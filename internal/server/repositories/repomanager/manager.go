package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mangasync/internal/dbx"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/categories"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/favourites"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/history"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/manga"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/tags"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code runs
// against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Manga(db dbx.DBTX) manga.Repository
	Tags(db dbx.DBTX) tags.Repository
	Categories(db dbx.DBTX) categories.Repository
	Favourites(db dbx.DBTX) favourites.Repository
	History(db dbx.DBTX) history.Repository
}
