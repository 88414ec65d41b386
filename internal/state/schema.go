package state

import (
	"context"
	"database/sql"
	"fmt"

	dbutil "github.com/llehouerou/vbplayer/internal/db"
)

// migrations[i] upgrades the schema from version i to i+1.
var migrations = []string{
	`CREATE TABLE resume_positions (
		cdn TEXT PRIMARY KEY,
		position_ms INTEGER NOT NULL,
		duration_ms INTEGER,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX idx_resume_updated_at ON resume_positions(updated_at DESC);

	CREATE TABLE play_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cdn TEXT NOT NULL,
		title TEXT,
		player_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		outcome TEXT NOT NULL DEFAULT 'playing'
	);
	CREATE INDEX idx_history_started_at ON play_history(started_at DESC);`,

	`ALTER TABLE play_history ADD COLUMN failure TEXT;`,
}

var currentSchemaVersion = len(migrations)

// execer is what *sql.DB and *sql.Tx have in common for writes.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// initSchema brings db up to currentSchemaVersion, one transaction per
// step.
func initSchema(db *sql.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}

	var version int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("state database has schema version %d, newer than %d", version, currentSchemaVersion)
	}

	for v := version; v < currentSchemaVersion; v++ {
		err := dbutil.WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, v+1)
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate state database to version %d: %w", v+1, err)
		}
	}
	return nil
}
