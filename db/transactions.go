package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/aquaponics-lab/aquamon/internal/model"
)

func UpdateAutoRefresh(db *sql.DB, enabled bool) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	_, err = tx.Exec(`UPDATE settings SET auto_refresh = ?, updated_at = ? WHERE id = 1`,
		enabled, time.Now().Format(time.RFC3339))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("update auto_refresh: %w", err)
	}
	return tx.Commit()
}

func UpdateFailureSimulated(db *sql.DB, enabled bool) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	_, err = tx.Exec(`UPDATE settings SET failure_simulated = ?, updated_at = ? WHERE id = 1`,
		enabled, time.Now().Format(time.RFC3339))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("update failure_simulated: %w", err)
	}
	return tx.Commit()
}

// RecordCommand appends a dispatched command to the audit log. Sensor readings
// are never stored; only outbound commands are.
func RecordCommand(db *sql.DB, cmd model.CommandRequest, succeeded bool) error {
	state := string(cmd.State)
	if cmd.Target == model.TargetFailureSim {
		state = strconv.FormatBool(cmd.Enable)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO command_log (target, state, succeeded, created_at) VALUES (?, ?, ?, ?)`,
		string(cmd.Target), state, succeeded, time.Now().Format(time.RFC3339))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert command record: %w", err)
	}
	return tx.Commit()
}
