// Package testsupport provisions databases for repository and integration tests.
package testsupport

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-storefront-cms/internal/migrations"
	"github.com/goliatone/go-storefront-cms/pkg/storage"
)

var dbCounter atomic.Int64

// NewSQLiteMemoryDB opens a private shared-cache in-memory database. Each
// call gets its own name so parallel tests never see each other's rows.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbCounter.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewMigratedBunDB returns a bun.DB with the CMS schema applied. It is closed
// when the test ends.
func NewMigratedBunDB(t testing.TB) *bun.DB {
	t.Helper()
	sqlDB, err := NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migrations.Up(sqlDB, migrations.DialectSQLite); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	db, err := storage.Wrap(sqlDB, storage.DriverSQLite)
	if err != nil {
		sqlDB.Close()
		t.Fatalf("wrap: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
