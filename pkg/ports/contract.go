package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	now := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID, now)
		session.Cart = []domain.CartLine{
			{ItemKey: "mocha", Quantity: 2},
			{ItemKey: "latte", Quantity: 1},
		}
		session.Memory = []domain.MemoryEntry{domain.NewMemoryEntry("add a latte", "Added 1x Latte", now)}

		err := store.Save(ctx, sessionID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		// Insertion order of cart lines must survive persistence.
		assert.Equal(t, session.Cart, loaded.Cart)
		require.Len(t, loaded.Memory, 1)
		assert.Equal(t, "add a latte", loaded.Memory[0].UserText)
		assert.Equal(t, 6, loaded.Memory[0].TokenCount)
		assert.True(t, now.Equal(loaded.CreatedAt))
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSession(sessionID, now)))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Cart = append(loaded.Cart, domain.CartLine{ItemKey: "phantom", Quantity: 1})

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, again.Cart, "mutating a loaded session must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID, now))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting a missing session should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, now))
		_ = store.Save(ctx, id2, domain.NewSession(id2, now))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunCatalogContract verifies that a Catalog serves the given available items and
// hides everything else.
func RunCatalogContract(t *testing.T, catalog Catalog, want []domain.CatalogItem) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		for _, item := range want {
			got, err := catalog.Get(ctx, item.Key)
			require.NoError(t, err, "Get(%q)", item.Key)
			assert.Equal(t, item.Name, got.Name)
			assert.Equal(t, item.Price, got.Price)
			assert.Equal(t, item.Category, got.Category)
		}
	})

	t.Run("Get Unknown", func(t *testing.T) {
		_, err := catalog.Get(ctx, "unicorn-latte")
		assert.True(t, errors.Is(err, domain.ErrItemNotFound), "expected ErrItemNotFound, got %v", err)
	})

	t.Run("List", func(t *testing.T) {
		items, err := catalog.List(ctx)
		require.NoError(t, err)
		keys := make([]string, 0, len(items))
		for _, it := range items {
			assert.True(t, it.Available)
			keys = append(keys, it.Key)
		}
		for _, item := range want {
			assert.Contains(t, keys, item.Key)
		}
		assert.Len(t, items, len(want))
	})
}
