package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.GetObject(ctx, "preferences.json")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.PutObject(ctx, "preferences.json", []byte(`{"diet":"vegan"}`), "application/json")
	require.NoError(t, err)
	assert.EqualValues(t, 16, n)

	data, err := store.GetObject(ctx, "preferences.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"diet":"vegan"}`, string(data))

	_, err = store.PutObject(ctx, "preferences.json", []byte(`{"diet":"omnivore"}`), "application/json")
	require.NoError(t, err)
	data, err = store.GetObject(ctx, "preferences.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"diet":"omnivore"}`, string(data))

	require.NoError(t, store.DeleteObject(ctx, "preferences.json"))
	require.NoError(t, store.DeleteObject(ctx, "preferences.json"))
	_, err = store.GetObject(ctx, "preferences.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	exerciseStore(t, store)

	_, err = store.PutObject(context.Background(), "meal_plan.json", []byte(`{"plan":[]}`), "application/json")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "meal_plan.json", entries[0].Name())
}

func TestLocalStoreKeysStayInsideRoot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "docs"))
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "../escape.json", []byte("{}"), "application/json")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "escape.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "docs", "escape.json"))
	assert.NoError(t, err)
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)

	store, err := NewRedisStore("redis://"+srv.Addr(), "meale:")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(context.Background()))

	exerciseStore(t, store)

	_, err = store.PutObject(context.Background(), "meal_plan.json", []byte(`{"plan":[]}`), "application/json")
	require.NoError(t, err)
	assert.True(t, srv.Exists("meale:meal_plan.json"))
	assert.False(t, srv.Exists("meal_plan.json"))

	// Ошибка соединения не должна выглядеть как отсутствующий объект.
	srv.Close()
	_, err = store.GetObject(context.Background(), "meal_plan.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
