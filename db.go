package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS classification_corrections (
		id                 TEXT PRIMARY KEY,
		activity_text      TEXT NOT NULL,
		context            TEXT DEFAULT '',
		was_fire_protection       INTEGER NOT NULL,
		should_be_fire_protection INTEGER NOT NULL,
		note               TEXT DEFAULT '',
		corrected_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_cc_corrected_at ON classification_corrections(corrected_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
