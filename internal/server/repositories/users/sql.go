// Package users stores accounts and their per-collection sync watermarks.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/dmitrijs2005/mangasync/internal/dbx"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

const selectUser = `SELECT id, email, password, nickname, favourites_sync_timestamp, history_sync_timestamp
		 FROM users`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, password, nickname)
		 VALUES ($1, $2, $3)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.Nickname).Scan(&user.ID)
	if dbx.IsUniqueViolation(err) {
		return nil, fmt.Errorf("email %s: %w", user.Email, common.ErrorAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Nickname,
		&user.FavouritesSyncTimestamp, &user.HistorySyncTimestamp)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) SetFavouritesSynchronized(ctx context.Context, id int64, ts int64) (int64, error) {
	return r.advance(ctx, "favourites_sync_timestamp", id, ts)
}

func (r *SQLRepository) SetHistorySynchronized(ctx context.Context, id int64, ts int64) (int64, error) {
	return r.advance(ctx, "history_sync_timestamp", id, ts)
}

// advance keeps the watermark strictly increasing even when the clock stalls
// or goes backwards.
func (r *SQLRepository) advance(ctx context.Context, column string, id int64, ts int64) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE users SET %[1]s = CASE WHEN %[1]s IS NULL OR %[1]s < $1 THEN $1 ELSE %[1]s + 1 END
		 WHERE id = $2
		 RETURNING %[1]s`, column)

	var stamped int64
	err := r.db.QueryRowContext(ctx, query, ts, id).Scan(&stamped)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return stamped, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
