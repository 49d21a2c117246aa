package testsupport

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteMemoryDB opens a shared in-memory sqlite database. The shared
// cache keeps every connection on the same dataset for the test's lifetime.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}

// OpenSQLite returns a bun handle over an in-memory sqlite database, capped
// to a single connection so concurrent statements serialize instead of
// tripping sqlite's write lock.
func OpenSQLite() (*bun.DB, error) {
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}
