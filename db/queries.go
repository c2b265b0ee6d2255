package db

import (
	"database/sql"
	"fmt"

	"github.com/aquaponics-lab/aquamon/internal/model"
)

// GetSettings retrieves the persisted operator toggles.
func GetSettings(db *sql.DB) (*model.Settings, error) {
	var s model.Settings
	err := db.QueryRow(`SELECT auto_refresh, failure_simulated FROM settings WHERE id = 1`).
		Scan(&s.AutoRefresh, &s.FailureSimulated)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// CommandRecord is one dispatched control command, kept for operator audit.
type CommandRecord struct {
	Target    string
	State     string
	Succeeded bool
	CreatedAt string
}

// RecentCommands retrieves the most recently dispatched commands, newest first.
func RecentCommands(db *sql.DB, limit int) ([]CommandRecord, error) {
	rows, err := db.Query(`SELECT target, state, succeeded, created_at FROM command_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query command log: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var r CommandRecord
		if err := rows.Scan(&r.Target, &r.State, &r.Succeeded, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan command record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}
