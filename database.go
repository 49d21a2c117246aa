package piranha

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteDB wraps an opened SQLite connection in a bun.DB suitable for
// di.WithBunDB.
func NewSQLiteDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, sqlitedialect.New())
}

// NewPostgresDB wraps an opened PostgreSQL connection in a bun.DB suitable
// for di.WithBunDB.
func NewPostgresDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, pgdialect.New())
}
