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

const yamlMenu = `items:
  - name: Latte
    price: 4.50
    description: Espresso with steamed milk
    category: coffee
  - name: Blueberry Muffin
    price: 3.00
    category: Pastry
  - name: Seasonal Tart
    price: 5.25
    category: pastry
    available: false
`

const tomlMenu = `[[items]]
name = "Latte"
price = 4.5
category = "coffee"

[[items]]
key = "blueberry muffin"
name = "Blueberry Muffin"
price = 3.0
category = "pastry"
`

const jsonMenu = `{"items": [
  {"name": "Latte", "price": 4.5, "category": "coffee"},
  {"name": "Blueberry Muffin", "price": 3, "category": "pastry"}
]}`

var wantMenu = []domain.CatalogItem{
	{Key: "latte", Name: "Latte", Price: 450, Category: "coffee", Available: true},
	{Key: "blueberry muffin", Name: "Blueberry Muffin", Price: 300, Category: "pastry", Available: true},
}

func writeMenu(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCatalog_Formats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"menu.yaml", yamlMenu},
		{"menu.toml", tomlMenu},
		{"menu.json", jsonMenu},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := file.NewCatalog(writeMenu(t, tt.name, tt.content))
			require.NoError(t, err)
			ports.RunCatalogContract(t, catalog, wantMenu)
		})
	}
}

func TestFileCatalog_UnavailableHidden(t *testing.T) {
	catalog, err := file.NewCatalog(writeMenu(t, "menu.yml", yamlMenu))
	require.NoError(t, err)

	_, err = catalog.Get(context.Background(), "seasonal tart")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestParseMenu_Errors(t *testing.T) {
	_, err := file.ParseMenu([]byte("items: []"), "ini")
	assert.ErrorContains(t, err, "unsupported menu format")

	_, err = file.ParseMenu([]byte(`{"items": [{"nme": "x"}]}`), "json")
	assert.Error(t, err, "unknown JSON fields are rejected")

	_, err = file.ParseMenu([]byte("items: [[["), ".yaml")
	assert.Error(t, err)
}

func TestNewFileCatalog_Invalid(t *testing.T) {
	_, err := file.NewCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = file.NewCatalog(writeMenu(t, "neg.yaml", "items:\n  - name: Free\n    price: -1\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestFileCatalog_ReloadKeepsSnapshotOnError(t *testing.T) {
	path := writeMenu(t, "menu.yaml", yamlMenu)
	catalog, err := file.NewCatalog(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("items: [[["), 0o644))
	require.Error(t, catalog.Reload())

	it, err := catalog.Get(context.Background(), "latte")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(450), it.Price)
}

func TestFileCatalog_Watch(t *testing.T) {
	path := writeMenu(t, "menu.yaml", yamlMenu)
	catalog, err := file.NewCatalog(path, file.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := catalog.Watch(ctx)
	require.NoError(t, err)

	updated := "items:\n  - name: Latte\n    price: 4.75\n    category: coffee\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload signal")
	}

	it, err := catalog.Get(ctx, "latte")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(475), it.Price)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-changes
		return !open
	}, time.Second, 10*time.Millisecond)
}
