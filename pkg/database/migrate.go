package database

import (
	"database/sql"
	"fmt"
)

// Migrate applies the cache schema. Idempotent; safe to run on every start.
func Migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS menus (
	id        TEXT PRIMARY KEY,
	fecha     TEXT NOT NULL UNIQUE,
	main_dish TEXT NOT NULL,
	side      TEXT NOT NULL,
	beverage  TEXT NOT NULL,
	likes     INTEGER NOT NULL DEFAULT 0,
	dislikes  INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
