// Package db holds small helpers shared by the sqlite stores.
package db

import (
	"context"
	"database/sql"
	"time"
)

// WithTx executes fn within a transaction.
// It handles Begin, Rollback on error, and Commit on success.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Millis converts a duration to the integer milliseconds stored in the
// database.
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}

// NullMillis stores d as milliseconds, or NULL when d is negative (unknown).
func NullMillis(d time.Duration) sql.NullInt64 {
	if d < 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.Milliseconds(), Valid: true}
}

// DurationValue converts stored milliseconds back. An invalid value yields
// -1, the unknown duration.
func DurationValue(n sql.NullInt64) time.Duration {
	if !n.Valid {
		return -1
	}
	return time.Duration(n.Int64) * time.Millisecond
}

// NullStringValue returns the string value or empty string if not valid.
func NullStringValue(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}

// NullString stores s, or NULL when it is empty.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
