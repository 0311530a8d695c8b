// Package sql provides a relational menu catalog over a menu_items table,
// backed by SQLite (modernc.org/sqlite) or Postgres (lib/pq).
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// Dialect selects the driver and placeholder style.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect accepts the configured catalog source name.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported sql dialect %q", s)
}

const schema = `CREATE TABLE IF NOT EXISTS menu_items (
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	available   BOOLEAN NOT NULL DEFAULT TRUE,
	position    INTEGER NOT NULL DEFAULT 0
)`

const columns = "key, name, price_cents, description, category, available"

// Catalog implements ports.Catalog over a database/sql handle.
type Catalog struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to dsn with the driver for dialect and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Catalog, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s catalog: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s catalog: %w", dialect, err)
	}
	return New(db, dialect), nil
}

// New wraps an existing handle.
func New(db *sql.DB, dialect Dialect) *Catalog {
	return &Catalog{db: db, dialect: dialect}
}

// arg returns the n-th (1-based) bind placeholder.
func (c *Catalog) arg(n int) string {
	if c.dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Migrate creates the menu_items table if needed.
func (c *Catalog) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

// Seed upserts items in one transaction, keeping their order as the listing order.
func (c *Catalog) Seed(ctx context.Context, items []domain.CatalogItem) (err error) {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`INSERT INTO menu_items (%s, position) VALUES (%s, %s, %s, %s, %s, %s, %s)
ON CONFLICT (key) DO UPDATE SET name = excluded.name, price_cents = excluded.price_cents,
description = excluded.description, category = excluded.category,
available = excluded.available, position = excluded.position`,
		columns, c.arg(1), c.arg(2), c.arg(3), c.arg(4), c.arg(5), c.arg(6), c.arg(7))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare seed: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		if _, err = stmt.ExecContext(ctx, it.Key, it.Name, int64(it.Price), it.Description, it.Category, it.Available, i); err != nil {
			return fmt.Errorf("failed to seed %q: %w", it.Key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (domain.CatalogItem, error) {
	var (
		it    domain.CatalogItem
		cents int64
	)
	if err := row.Scan(&it.Key, &it.Name, &cents, &it.Description, &it.Category, &it.Available); err != nil {
		return domain.CatalogItem{}, err
	}
	it.Price = domain.Money(cents)
	return it, nil
}

// Get returns an available item by key.
func (c *Catalog) Get(ctx context.Context, key string) (domain.CatalogItem, error) {
	query := fmt.Sprintf("SELECT %s FROM menu_items WHERE key = %s AND available", columns, c.arg(1))
	it, err := scanItem(c.db.QueryRowContext(ctx, query, domain.NormalizeKey(key)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CatalogItem{}, fmt.Errorf("%q: %w", key, domain.ErrItemNotFound)
		}
		return domain.CatalogItem{}, fmt.Errorf("failed to get menu item: %w", err)
	}
	return it, nil
}

// List returns available items ordered by position.
func (c *Catalog) List(ctx context.Context) ([]domain.CatalogItem, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT "+columns+" FROM menu_items WHERE available ORDER BY position, key")
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	items := []domain.CatalogItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}
