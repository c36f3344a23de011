package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/mangasync/internal/client/repositories/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	repos, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repos.State.Set(ctx, state.KeyToken, "abc"))
	require.NoError(t, repos.State.Set(ctx, state.KeyToken, "def"))
	require.NoError(t, repos.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	v, ok, err := reopened.State.Get(ctx, state.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def", v)

	require.NoError(t, reopened.State.Clear(ctx))
	_, ok, err = reopened.State.Get(ctx, state.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "client.db"))
	require.Error(t, err)
}
