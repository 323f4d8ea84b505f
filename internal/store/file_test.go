package store_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routinelab/routined/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	f, err := store.OpenFile(path, discardLogger())
	require.NoError(t, err)

	_, err = f.Get(ctx, "dailyTasks")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, f.Set(ctx, "dailyTasks", []byte(`{"2026-01-07":{"sport":true}}`)))

	// Reopen from disk and read the same blob back.
	reopened, err := store.OpenFile(path, discardLogger())
	require.NoError(t, err)
	raw, err := reopened.Get(ctx, "dailyTasks")
	require.NoError(t, err)
	assert.JSONEq(t, `{"2026-01-07":{"sport":true}}`, string(raw))
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	f, err := store.OpenFile(path, discardLogger())
	require.NoError(t, err)

	require.NoError(t, f.Set(ctx, "k", []byte(`1`)))
	require.NoError(t, f.Delete(ctx, "k"))
	_, err = f.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, f.Delete(ctx, "missing"))
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	f, err := store.OpenFile(path, discardLogger())
	require.NoError(t, err)
	_, err = f.Get(context.Background(), "anything")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadJSONFallbacks(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	// Missing key leaves the default untouched.
	tasks := map[string]bool{"seed": true}
	store.LoadJSON(ctx, kv, "missing", &tasks, discardLogger())
	assert.Equal(t, map[string]bool{"seed": true}, tasks)

	// Corrupt blob likewise.
	require.NoError(t, kv.Set(ctx, "corrupt", []byte("{{")))
	store.LoadJSON(ctx, kv, "corrupt", &tasks, discardLogger())
	assert.Equal(t, map[string]bool{"seed": true}, tasks)

	// A valid blob decodes.
	require.NoError(t, store.SaveJSON(ctx, kv, "good", map[string]bool{"a": true}))
	var got map[string]bool
	store.LoadJSON(ctx, kv, "good", &got, discardLogger())
	assert.Equal(t, map[string]bool{"a": true}, got)
}
