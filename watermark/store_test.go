package watermark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStores(t *testing.T) map[string]Store {
	t.Helper()

	badgerStore, err := OpenBadger("", true) // in-memory
	require.NoError(t, err)
	t.Cleanup(func() { badgerStore.Close() })

	return map[string]Store{
		"badger": badgerStore,
		"memory": NewMemoryStore(),
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := store.Load(context.Background(), "posts")
			require.NoError(t, err)
			assert.False(t, found, "fresh store should have no cursor")
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cursor := Cursor{
				Mode:          ModeUpdatedAt,
				LastUpdatedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
			}

			require.NoError(t, store.Save(ctx, "merits", cursor))

			got, found, err := store.Load(ctx, "merits")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, ModeUpdatedAt, got.Mode)
			assert.True(t, cursor.LastUpdatedAt.Equal(got.LastUpdatedAt))

			// Cursors are namespaced per pipeline.
			_, found, err = store.Load(ctx, "topics")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStore_SaveRejectsRegression(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

			require.NoError(t, store.Save(ctx, "posts", Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base}))

			err := store.Save(ctx, "posts", Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base.Add(-time.Hour)})
			require.ErrorIs(t, err, ErrCursorRegression)

			// The stored cursor is untouched.
			got, found, err := store.Load(ctx, "posts")
			require.NoError(t, err)
			require.True(t, found)
			assert.True(t, base.Equal(got.LastUpdatedAt))
		})
	}
}

func TestStore_ResetMayRegress(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

			require.NoError(t, store.Save(ctx, "posts", Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base}))
			require.NoError(t, store.Reset(ctx, "posts", FromID(1000)))

			got, found, err := store.Load(ctx, "posts")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, ModeMonotonicID, got.Mode)
			assert.EqualValues(t, 1000, got.LastID)
		})
	}
}
