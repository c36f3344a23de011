// Package repomanager provides the SQL RepositoryManager shared by the
// PostgreSQL and SQLite backends, wiring repository constructors and goose
// migrations for the configured driver.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mangasync/internal/dbx"
	"github.com/dmitrijs2005/mangasync/internal/server/migrations"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/categories"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/favourites"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/history"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/manga"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/tags"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends SQL-backed repositories and runs the migrations
// matching its driver ("sqlite" or "pgx").
type SQLRepositoryManager struct {
	driver string
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Manga(db dbx.DBTX) manga.Repository {
	return manga.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Tags(db dbx.DBTX) tags.Repository {
	return tags.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Favourites(db dbx.DBTX) favourites.Repository {
	return favourites.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) History(db dbx.DBTX) history.Repository {
	return history.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations points goose at the embedded migrations for the driver's
// dialect and applies everything pending.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	dir, dialect, err := migrations.ForDriver(m.driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return err
	}
	return nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for driver.
func NewSQLRepositoryManager(driver string) (RepositoryManager, error) {
	if _, _, err := migrations.ForDriver(driver); err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{driver: driver}, nil
}

// Open opens a pooled database handle for driver and checks it is reachable.
// SQLite handles get foreign keys and a busy timeout enabled.
func Open(ctx context.Context, driver, dsn string, maxOpenConns int) (*sql.DB, error) {
	if driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
