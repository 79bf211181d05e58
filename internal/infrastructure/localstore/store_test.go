package localstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestStoreSetGetDelete(t *testing.T) {
	store := newTestStore(t)

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, store.Set("rec:1", record{Name: "alpha", Count: 3}))

	var got record
	found, err := store.Get("rec:1", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, record{Name: "alpha", Count: 3}, got)

	found, err = store.Get("rec:missing", &got)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Delete("rec:1"))
	found, err = store.Get("rec:1", &got)
	require.NoError(t, err)
	require.False(t, found)

	// Deleting a missing key is fine.
	require.NoError(t, store.Delete("rec:1"))
}

func TestStoreScanPrefix(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("room:a:1", "one"))
	require.NoError(t, store.Set("room:a:2", "two"))
	require.NoError(t, store.Set("room:b:1", "other owner"))
	require.NoError(t, store.Set("revealed:x", true))

	var keys []string
	err := store.ScanPrefix("room:a:", func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"room:a:1", "room:a:2"}, keys)
}

func TestSeenStore(t *testing.T) {
	ctx := context.Background()
	seen := NewSeenStore(newTestStore(t))

	ok, err := seen.Contains(ctx, "msg_1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, seen.Add(ctx, "msg_1"))

	ok, err = seen.Contains(ctx, "msg_1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = seen.Contains(ctx, "msg_2")
	require.NoError(t, err)
	require.False(t, ok)
}
