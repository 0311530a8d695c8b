package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/adapters/file"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
)

var _ ports.StateStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_ListEmpty(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileStore_ListSkipsTempAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", domain.NewSession("b", time.Now())))
	require.NoError(t, store.Save(ctx, "a", domain.NewSession("a", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-c-123.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)
}

func TestFileStore_Overwrite(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	s := domain.NewSession("s1", time.Now())
	require.NoError(t, store.Save(ctx, "s1", s))
	s.Cart = []domain.CartLine{{ItemKey: "latte", Quantity: 3}}
	require.NoError(t, store.Save(ctx, "s1", s))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, s.Cart, loaded.Cart)
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", `a\b`, "tmp-x"} {
		t.Run(id, func(t *testing.T) {
			err := store.Save(ctx, id, domain.NewSession(id, time.Now()))
			assert.ErrorIs(t, err, file.ErrInvalidSessionID)
			_, err = store.Load(ctx, id)
			assert.ErrorIs(t, err, file.ErrInvalidSessionID)
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
