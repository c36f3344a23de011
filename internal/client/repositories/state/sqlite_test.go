package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	repo := NewSQLiteRepository(db)
	repo.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return repo, mock
}

const (
	qGet    = `^SELECT value FROM client_state WHERE key = \?$`
	qSet    = `(?s)INSERT INTO client_state \(key, value, updated_at\) VALUES \(\?, \?, \?\).*ON CONFLICT\(key\) DO UPDATE`
	qDelete = `^DELETE FROM client_state WHERE key = \?$`
	qClear  = `^DELETE FROM client_state$`
)

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qGet).WithArgs(KeyToken).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("tok"))

		v, ok, err := repo.Get(context.Background(), KeyToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok", v)
	})

	t.Run("missing key", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qGet).WithArgs(KeyEmail).WillReturnRows(sqlmock.NewRows([]string{"value"}))

		v, ok, err := repo.Get(context.Background(), KeyEmail)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qGet).WillReturnError(errors.New("boom"))

		_, _, err := repo.Get(context.Background(), KeyToken)
		require.EqualError(t, err, `read state "token": boom`)
	})
}

func TestSet_StampsUpdatedAt(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(qSet).WithArgs(KeyHistoryWatermark, "42", int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set(context.Background(), KeyHistoryWatermark, "42"))
}

func TestDeleteAndClear(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(qDelete).WithArgs(KeyToken).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qClear).WillReturnResult(sqlmock.NewResult(0, 3))

	ctx := context.Background()
	require.NoError(t, repo.Delete(ctx, KeyToken))
	require.NoError(t, repo.Clear(ctx))
}

func TestWriteErrors(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(qSet).WillReturnError(errors.New("readonly"))
	mock.ExpectExec(qDelete).WillReturnError(errors.New("locked"))
	mock.ExpectExec(qClear).WillReturnError(errors.New("locked"))

	ctx := context.Background()
	assert.ErrorContains(t, repo.Set(ctx, KeyEmail, "x"), `write state "email"`)
	assert.ErrorContains(t, repo.Delete(ctx, KeyToken), `delete state "token"`)
	assert.ErrorContains(t, repo.Clear(ctx), "clear state")
}
