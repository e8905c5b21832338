//go:build !cgo

package bimrsid

// If cgo is not enabled, we will use the modernc.org/sqlite non-cgo sqlite
// driver. It is slower than the sqlite3 cgo driver.

import (
	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

const whichSQLiteDriver = "sqlite"

func connectSQLite(path string) (*sqlx.DB, error) {
	return sqlx.Connect(whichSQLiteDriver, sqliteDSN(path))
}
