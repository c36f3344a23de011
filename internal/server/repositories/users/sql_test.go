package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewSQLRepository(db), mock
}

var userColumns = []string{"id", "email", "password", "nickname", "favourites_sync_timestamp", "history_sync_timestamp"}

const (
	qInsert   = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password,\s*nickname\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id$`
	qByEmail  = `(?s)^SELECT\s+id,\s*email,\s*password,\s*nickname,\s*favourites_sync_timestamp,\s*history_sync_timestamp\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	qByID     = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	qPassword = `^UPDATE\s+users\s+SET\s+password\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2$`
	qFavSync  = `(?s)^UPDATE\s+users\s+SET\s+favourites_sync_timestamp\s*=\s*CASE\s+WHEN\s+favourites_sync_timestamp\s+IS\s+NULL\s+OR\s+favourites_sync_timestamp\s*<\s*\$1\s+THEN\s+\$1\s+ELSE\s+favourites_sync_timestamp\s*\+\s*1\s+END\s+WHERE\s+id\s*=\s*\$2\s+RETURNING\s+favourites_sync_timestamp$`
	qHistSync = `(?s)^UPDATE\s+users\s+SET\s+history_sync_timestamp\s*=.*RETURNING\s+history_sync_timestamp$`
)

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qInsert).
		WithArgs("test@example.com", "hash", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	u, err := repo.Create(context.Background(), &models.User{Email: "test@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, "test@example.com", u.Email)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qInsert).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a@b.c", PasswordHash: "h"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qInsert).WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), &models.User{Email: "a@b.c", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByEmail).
		WithArgs("test@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(1), "test@example.com", "hash", "nick", int64(100), nil))

	u, err := repo.GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
	require.NotNil(t, u.Nickname)
	assert.Equal(t, "nick", *u.Nickname)
	require.NotNil(t, u.FavouritesSyncTimestamp)
	assert.Equal(t, int64(100), *u.FavouritesSyncTimestamp)
	assert.Nil(t, u.HistorySyncTimestamp)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByEmail).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByID).WithArgs(int64(5)).WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "db error")
}

func TestUpdatePassword(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(qPassword).WithArgs("newhash", int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.UpdatePassword(context.Background(), 3, "newhash"))
	})
	t.Run("missing user", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(qPassword).WithArgs("newhash", int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.UpdatePassword(context.Background(), 3, "newhash"), common.ErrorNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(qPassword).WillReturnError(errors.New("locked"))
		err := repo.UpdatePassword(context.Background(), 3, "newhash")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked")
	})
}

func TestSetSynchronized(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qFavSync).WithArgs(int64(1000), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"favourites_sync_timestamp"}).AddRow(int64(1000)))
	mock.ExpectQuery(qHistSync).WithArgs(int64(2000), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"history_sync_timestamp"}).AddRow(int64(2001)))

	got, err := repo.SetFavouritesSynchronized(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)

	got, err = repo.SetHistorySynchronized(context.Background(), 1, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2001), got)
}

func TestSetSynchronized_MissingUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qFavSync).WillReturnError(sql.ErrNoRows)

	_, err := repo.SetFavouritesSynchronized(context.Background(), 9, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCount(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+users$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
