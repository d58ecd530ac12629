//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteDriver is the cgo driver selected with -tags cgo_sqlite.
const sqliteDriver = "sqlite3"

func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open(sqliteDriver, dataSource)
}
