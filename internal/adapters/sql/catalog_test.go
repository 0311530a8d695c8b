package sql_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqladapter "github.com/GenAICloudDevOps/AgenticBarista/internal/adapters/sql"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
)

var _ ports.Catalog = (*sqladapter.Catalog)(nil)

func openSQLite(t *testing.T) *sqladapter.Catalog {
	t.Helper()
	ctx := context.Background()
	catalog, err := sqladapter.Open(ctx, sqladapter.SQLite, filepath.Join(t.TempDir(), "menu.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = catalog.Close() })
	require.NoError(t, catalog.Migrate(ctx))
	return catalog
}

func TestSQLiteCatalog_Contract(t *testing.T) {
	catalog := openSQLite(t)
	items := domain.DefaultCatalog()
	items = append(items, domain.CatalogItem{Key: "chai", Name: "Chai", Price: 400, Category: "coffee", Available: false})
	require.NoError(t, catalog.Seed(context.Background(), items))

	ports.RunCatalogContract(t, catalog, domain.DefaultCatalog())
}

func TestSQLiteCatalog_OrderAndUpsert(t *testing.T) {
	catalog := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, catalog.Seed(ctx, domain.DefaultCatalog()))
	require.NoError(t, catalog.Migrate(ctx), "migrate is idempotent")

	repriced := domain.CatalogItem{Key: "latte", Name: "Latte", Price: 475, Category: "coffee", Available: true}
	require.NoError(t, catalog.Seed(ctx, []domain.CatalogItem{repriced}))

	it, err := catalog.Get(ctx, " LATTE ")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(475), it.Price)

	items, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(domain.DefaultCatalog()))
	assert.Equal(t, "espresso", items[0].Key)
	for _, it := range items {
		if it.Key == "latte" {
			assert.Equal(t, domain.Money(475), it.Price)
		}
	}
}

func TestSQLiteCatalog_SeedRejectsInvalid(t *testing.T) {
	catalog := openSQLite(t)
	err := catalog.Seed(context.Background(), []domain.CatalogItem{{Key: "free", Name: "Free", Price: -1}})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func newMock(t *testing.T, dialect sqladapter.Dialect) (*sqladapter.Catalog, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqladapter.New(db, dialect), mock
}

func TestCatalog_GetPostgres(t *testing.T) {
	catalog, mock := newMock(t, sqladapter.Postgres)
	query := regexp.QuoteMeta("SELECT key, name, price_cents, description, category, available FROM menu_items WHERE key = $1 AND available")

	mock.ExpectQuery(query).WithArgs("latte").
		WillReturnRows(sqlmock.NewRows([]string{"key", "name", "price_cents", "description", "category", "available"}).
			AddRow("latte", "Latte", 450, "", "coffee", true))
	mock.ExpectQuery(query).WithArgs("unicorn").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(query).WithArgs("mocha").WillReturnError(errors.New("connection refused"))

	it, err := catalog.Get(context.Background(), "Latte")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(450), it.Price)

	_, err = catalog.Get(context.Background(), "unicorn")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = catalog.Get(context.Background(), "mocha")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrItemNotFound)
	assert.ErrorContains(t, err, "failed to get menu item")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_ListErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		want      string
	}{
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM menu_items").WillReturnError(errors.New("boom"))
			},
			want: "failed to list menu items",
		},
		{
			name: "scan error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM menu_items").
					WillReturnRows(sqlmock.NewRows([]string{"key", "name", "price_cents", "description", "category", "available"}).
						AddRow("latte", "Latte", "not-a-number", "", "coffee", true))
			},
			want: "failed to scan menu item",
		},
		{
			name: "row error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM menu_items").
					WillReturnRows(sqlmock.NewRows([]string{"key", "name", "price_cents", "description", "category", "available"}).
						AddRow("latte", "Latte", 450, "", "coffee", true).
						RowError(0, errors.New("network")))
			},
			want: "failed to list menu items",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, mock := newMock(t, sqladapter.SQLite)
			tt.setupMock(mock)

			_, err := catalog.List(context.Background())
			assert.ErrorContains(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCatalog_SeedRollsBack(t *testing.T) {
	catalog, mock := newMock(t, sqladapter.Postgres)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO menu_items")
	mock.ExpectExec("INSERT INTO menu_items").WithArgs("espresso", "Espresso", int64(250), sqlmock.AnyArg(), "coffee", true, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO menu_items").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := catalog.Seed(context.Background(), domain.DefaultCatalog()[:2])
	assert.ErrorContains(t, err, `failed to seed "americano"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_MigrateError(t *testing.T) {
	catalog, mock := newMock(t, sqladapter.Postgres)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS menu_items").WillReturnError(errors.New("permission denied"))

	assert.ErrorContains(t, catalog.Migrate(context.Background()), "failed to migrate catalog")
}

func TestParseDialect(t *testing.T) {
	d, err := sqladapter.ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, sqladapter.Postgres, d)

	d, err = sqladapter.ParseDialect("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, sqladapter.SQLite, d)

	_, err = sqladapter.ParseDialect("mysql")
	assert.Error(t, err)
}
