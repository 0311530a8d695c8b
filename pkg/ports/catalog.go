package ports

import (
	"context"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// Catalog provides read-only access to menu items.
// Catalog data is read-mostly and safe to share across sessions without locking.
type Catalog interface {
	// Get returns the available item with the given normalized key.
	// Returns domain.ErrItemNotFound if the key is unknown or the item is unavailable.
	Get(ctx context.Context, key string) (domain.CatalogItem, error)

	// List returns every available item in a stable order.
	List(ctx context.Context) ([]domain.CatalogItem, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload of the menu.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying data changes.
	// It abstracts away the specific event details, signaling only that a reload happened.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
