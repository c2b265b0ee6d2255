package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Open opens (creating if needed) the settings database and ensures the schema
// and the singleton settings row exist.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	_, err = conn.Exec(`INSERT OR IGNORE INTO settings (id, auto_refresh, failure_simulated) VALUES (1, TRUE, FALSE)`)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to seed settings row: %w", err)
	}

	return conn, nil
}
