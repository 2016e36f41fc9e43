package db

import (
	"database/sql"
	"fmt"
)

// LedgerKey is the state row holding the current ledger snapshot.
const LedgerKey = "ledger"

// SaveState upserts the current value for key and records the previous
// value (if any) in state_history before overwriting it.
func SaveState(database *sql.DB, key string, value []byte, updatedAt int64) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var prev string
	var prevAt int64
	err = tx.QueryRow("SELECT value, updated_at FROM state WHERE key = ?", key).Scan(&prev, &prevAt)
	switch {
	case err == sql.ErrNoRows:
		// first write, nothing to archive
	case err != nil:
		return fmt.Errorf("failed to read previous state: %w", err)
	default:
		_, err = tx.Exec(
			"INSERT INTO state_history (key, value, created_at) VALUES (?, ?, ?)",
			key, prev, prevAt,
		)
		if err != nil {
			return fmt.Errorf("failed to archive previous state: %w", err)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return tx.Commit()
}

// LoadState returns the current value for key. The second return value
// reports whether a row exists.
func LoadState(database *sql.DB, key string) ([]byte, bool, error) {
	var value string
	err := database.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load state: %w", err)
	}
	return []byte(value), true, nil
}

// PruneHistory keeps the newest keep rows for key and deletes the rest.
// Returns the number of rows removed.
func PruneHistory(database *sql.DB, key string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := database.Exec(
		`DELETE FROM state_history WHERE key = ? AND id NOT IN (
		   SELECT id FROM state_history WHERE key = ? ORDER BY created_at DESC, id DESC LIMIT ?
		 )`,
		key, key, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// HistoryCount returns the number of archived states for key.
func HistoryCount(database *sql.DB, key string) (int, error) {
	var count int
	err := database.QueryRow("SELECT COUNT(*) FROM state_history WHERE key = ?", key).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}
