package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCatalog_Contract(t *testing.T) {
	ports.RunCatalogContract(t, memory.NewDefaultCatalog(), domain.DefaultCatalog())
}

func TestMemoryCatalog_Unavailable(t *testing.T) {
	catalog, err := memory.NewCatalog(
		domain.CatalogItem{Key: "latte", Name: "Latte", Price: 450, Category: "coffee", Available: true},
		domain.CatalogItem{Key: "chai", Name: "Chai", Price: 400, Category: "tea", Available: false},
	)
	require.NoError(t, err)

	_, err = catalog.Get(context.Background(), "chai")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	items, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMemoryCatalog_RejectsInvalid(t *testing.T) {
	_, err := memory.NewCatalog(domain.CatalogItem{Key: "latte", Price: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestMemoryCatalog_SetNotifiesWatchers(t *testing.T) {
	catalog := memory.NewDefaultCatalog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := catalog.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, catalog.Set(domain.CatalogItem{Key: "latte", Name: "Latte", Price: 475, Category: "coffee", Available: true}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected change notification")
	}

	item, err := catalog.Get(ctx, "Latte")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(475), item.Price)

	// Order is preserved on replace.
	items, _ := catalog.List(ctx)
	assert.Equal(t, "latte", items[2].Key)
}
