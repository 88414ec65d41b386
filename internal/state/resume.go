package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/vbplayer/internal/db"
)

// Resume is the last known playhead of one piece of content.
type Resume struct {
	CDN      string
	Position time.Duration
	Duration time.Duration // -1 when indefinite
	Updated  time.Time
}

// Worth reports whether resuming at the saved position makes sense: not at
// the very start and not within the last seconds of known-length content.
func (r Resume) Worth() bool {
	const edge = 5 * time.Second
	if r.Position < edge {
		return false
	}
	return r.Duration < 0 || r.Position < r.Duration-edge
}

func getResume(ctx context.Context, db *sql.DB, cdn string) (*Resume, error) {
	var (
		r                   = Resume{CDN: cdn}
		position, updatedAt int64
		duration            sql.NullInt64
	)
	row := db.QueryRowContext(ctx, `
		SELECT position_ms, duration_ms, updated_at
		FROM resume_positions
		WHERE cdn = ?
	`, cdn)
	err := row.Scan(&position, &duration, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.Position = time.Duration(position) * time.Millisecond
	r.Duration = dbutil.DurationValue(duration)
	r.Updated = time.UnixMilli(updatedAt)
	return &r, nil
}

func saveResume(ctx context.Context, db execer, r Resume, now time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO resume_positions (cdn, position_ms, duration_ms, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cdn) DO UPDATE SET
			position_ms = excluded.position_ms,
			duration_ms = excluded.duration_ms,
			updated_at = excluded.updated_at
	`, r.CDN, dbutil.Millis(r.Position), dbutil.NullMillis(r.Duration), now.UnixMilli())
	return err
}

func clearResume(ctx context.Context, db *sql.DB, cdn string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM resume_positions WHERE cdn = ?`, cdn)
	return err
}
