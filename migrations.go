package cms

import (
	"database/sql"
	"io/fs"

	"github.com/goliatone/go-storefront-cms/internal/migrations"
)

const (
	DialectSQLite   = migrations.DialectSQLite
	DialectPostgres = migrations.DialectPostgres
)

// GetMigrationsFS returns the embedded migration files for dialect, for hosts
// that run migrations with their own tooling.
func GetMigrationsFS(dialect string) (fs.FS, error) {
	return migrations.FS(dialect)
}

// Migrate applies pending migrations to db.
func Migrate(db *sql.DB, dialect string) error {
	return migrations.Up(db, dialect)
}
