package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// Catalog implements ports.Catalog and ports.Watchable using an in-memory map.
// Items keep the order in which they were first added.
type Catalog struct {
	mu       sync.RWMutex
	items    map[string]domain.CatalogItem
	order    []string
	watchers []chan struct{}
}

// NewCatalog creates a catalog from the given items.
func NewCatalog(items ...domain.CatalogItem) (*Catalog, error) {
	c := &Catalog{items: make(map[string]domain.CatalogItem)}
	for _, it := range items {
		if err := c.put(it); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewDefaultCatalog creates a catalog seeded with the house menu.
func NewDefaultCatalog() *Catalog {
	c, err := NewCatalog(domain.DefaultCatalog()...)
	if err != nil {
		panic(fmt.Sprintf("default catalog is invalid: %v", err))
	}
	return c
}

func (c *Catalog) put(it domain.CatalogItem) error {
	if err := it.Validate(); err != nil {
		return err
	}
	if _, exists := c.items[it.Key]; !exists {
		c.order = append(c.order, it.Key)
	}
	c.items[it.Key] = it
	return nil
}

// Get returns an available item by key.
func (c *Catalog) Get(ctx context.Context, key string) (domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[domain.NormalizeKey(key)]
	if !ok || !it.Available {
		return domain.CatalogItem{}, fmt.Errorf("%q: %w", key, domain.ErrItemNotFound)
	}
	return it, nil
}

// List returns available items in insertion order.
func (c *Catalog) List(ctx context.Context) ([]domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.CatalogItem, 0, len(c.order))
	for _, k := range c.order {
		if it := c.items[k]; it.Available {
			out = append(out, it)
		}
	}
	return out, nil
}

// Set inserts or replaces an item and notifies watchers.
func (c *Catalog) Set(item domain.CatalogItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.put(item); err != nil {
		return err
	}
	notify(c.watchers)
	return nil
}

// Watch returns a channel signaled after every Set. It is closed when ctx is done.
func (c *Catalog) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	c.watchers = append(c.watchers, ch)
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, w := range c.watchers {
			if w == ch {
				c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// notify performs a non-blocking send; a pending signal already covers this change.
func notify(watchers []chan struct{}) {
	for _, w := range watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}
