package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/logging"
	memadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// itemRecord is the on-disk shape of a menu item. Prices are decimal dollars.
type itemRecord struct {
	Key         string  `json:"key" yaml:"key" toml:"key"`
	Name        string  `json:"name" yaml:"name" toml:"name"`
	Price       float64 `json:"price" yaml:"price" toml:"price"`
	Description string  `json:"description" yaml:"description" toml:"description"`
	Category    string  `json:"category" yaml:"category" toml:"category"`
	// Available defaults to true when omitted.
	Available *bool `json:"available" yaml:"available" toml:"available"`
}

type menuFile struct {
	Items []itemRecord `json:"items" yaml:"items" toml:"items"`
}

func (r itemRecord) toDomain() domain.CatalogItem {
	key := domain.NormalizeKey(r.Key)
	if key == "" {
		key = domain.NormalizeKey(r.Name)
	}
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return domain.CatalogItem{
		Key:         key,
		Name:        strings.TrimSpace(r.Name),
		Price:       domain.MoneyFromFloat(r.Price),
		Description: r.Description,
		Category:    domain.NormalizeKey(r.Category),
		Available:   available,
	}
}

// ParseMenu decodes a menu document. format is a file extension: yaml, yml, toml or json.
func ParseMenu(data []byte, format string) ([]domain.CatalogItem, error) {
	var doc menuFile
	var err error
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &doc)
	case "toml":
		err = toml.Unmarshal(data, &doc)
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return nil, fmt.Errorf("unsupported menu format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(doc.Items))
	for _, r := range doc.Items {
		items = append(items, r.toDomain())
	}
	return items, nil
}

// Catalog implements ports.Catalog and ports.Watchable over a menu file.
// Reads are served from the last successfully parsed snapshot.
type Catalog struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.RWMutex
	current *memadapter.Catalog
}

type CatalogOption func(*Catalog)

// WithCatalogLogger sets the logger used to report reload failures.
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithDebounce sets how long Watch waits for writes to settle before reloading.
func WithDebounce(d time.Duration) CatalogOption {
	return func(c *Catalog) {
		c.debounce = d
	}
}

// NewCatalog loads the menu at path.
func NewCatalog(path string, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		path:     path,
		logger:   logging.NewNop(),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the menu file. On error the previous snapshot stays active.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read menu file: %w", err)
	}
	items, err := ParseMenu(data, filepath.Ext(c.path))
	if err != nil {
		return fmt.Errorf("%s: %w", c.path, err)
	}
	next, err := memadapter.NewCatalog(items...)
	if err != nil {
		return fmt.Errorf("%s: %w", c.path, err)
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()
	return nil
}

func (c *Catalog) snapshot() *memadapter.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Get returns an available item by key.
func (c *Catalog) Get(ctx context.Context, key string) (domain.CatalogItem, error) {
	return c.snapshot().Get(ctx, key)
}

// List returns available items in file order.
func (c *Catalog) List(ctx context.Context) ([]domain.CatalogItem, error) {
	return c.snapshot().List(ctx)
}

// Watch reloads the menu whenever the file changes and signals after each
// successful reload. The channel is closed when ctx is done.
func (c *Catalog) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", c.path, err)
	}

	ch := make(chan struct{}, 1)
	go c.watchLoop(ctx, watcher, ch)
	return ch, nil
}

func (c *Catalog) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, ch chan struct{}) {
	defer close(ch)
	defer watcher.Close()

	target := filepath.Clean(c.path)
	timer := time.NewTimer(c.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(c.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("Menu watcher error", "path", c.path, "err", err)
		case <-timer.C:
			if err := c.Reload(); err != nil {
				c.logger.Warn("Menu reload failed, keeping previous menu", "path", c.path, "err", err)
				continue
			}
			c.logger.Info("Menu reloaded", "path", c.path)
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
