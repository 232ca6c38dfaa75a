package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/tratativa/internal/errors"
)

// GetRecord returns the raw value stored under key.
// The bool is false when no record exists.
func GetRecord(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}

// PutRecord creates or overwrites the record under key.
func PutRecord(ctx context.Context, db *sql.DB, key, value string) error {
	query := `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteRecord removes the record under key. Deleting a missing key is not an error.
func DeleteRecord(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// RecordUpdatedAt returns the unix time of the last write to key, or 0 when absent.
func RecordUpdatedAt(ctx context.Context, db *sql.DB, key string) (int64, error) {
	var ts int64
	err := db.QueryRowContext(ctx, `SELECT updated_at FROM records WHERE key = ?`, key).Scan(&ts)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return ts, nil
}
