package state

import (
	"context"
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/vbplayer/internal/db"
)

// Outcome is how a play ended.
type Outcome string

const (
	OutcomePlaying  Outcome = "playing"
	OutcomeFinished Outcome = "finished"
	OutcomeStopped  Outcome = "stopped"
	OutcomeFailed   Outcome = "failed"
)

// HistoryEntry is one play of one piece of content.
type HistoryEntry struct {
	ID        int64
	CDN       string
	Title     string
	PlayerID  string
	StartedAt time.Time
	EndedAt   time.Time // zero while playing
	Outcome   Outcome
	Failure   string
}

func startPlay(ctx context.Context, db *sql.DB, e HistoryEntry) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO play_history (cdn, title, player_id, started_at, outcome)
		VALUES (?, ?, ?, ?, ?)
	`, e.CDN, dbutil.NullString(e.Title), e.PlayerID, e.StartedAt.UnixMilli(), OutcomePlaying)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func endPlay(ctx context.Context, sqlDB *sql.DB, id int64, outcome Outcome, failure string, now time.Time) error {
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		// only the first outcome sticks
		_, err := tx.ExecContext(ctx, `
			UPDATE play_history
			SET ended_at = ?, outcome = ?, failure = ?
			WHERE id = ? AND outcome = ?
		`, now.UnixMilli(), outcome, dbutil.NullString(failure), id, OutcomePlaying)
		if err != nil {
			return err
		}

		// keep the table bounded
		_, err = tx.ExecContext(ctx, `
			DELETE FROM play_history
			WHERE id NOT IN (SELECT id FROM play_history ORDER BY started_at DESC, id DESC LIMIT ?)
		`, historyLimit)
		return err
	})
}

const historyLimit = 500

func listHistory(ctx context.Context, db *sql.DB, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, cdn, title, player_id, started_at, ended_at, outcome, failure
		FROM play_history
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e              HistoryEntry
			title, failure sql.NullString
			started        int64
			ended          sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.CDN, &title, &e.PlayerID, &started, &ended, &e.Outcome, &failure); err != nil {
			return nil, err
		}
		e.Title = dbutil.NullStringValue(title)
		e.Failure = dbutil.NullStringValue(failure)
		e.StartedAt = time.UnixMilli(started)
		if ended.Valid {
			e.EndedAt = time.UnixMilli(ended.Int64)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
