package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/goserg/todoserver/internal/migrate"
)

// Open connects to the sqlite file and applies migrations.
func Open(fileName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", buildSource(fileName))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	err = migrate.Up(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func buildSource(fileName string) string {
	return "file:" + fileName + "?cache=shared&_foreign_keys=on"
}
