// Package state persists what the vbplay demo remembers between runs:
// resume positions per CDN identifier and a play history.
package state

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	dbutil "github.com/llehouerou/vbplayer/internal/db"
)

const (
	appName      = "vbplayer"
	dbFileName   = "vbplayer.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager is the sqlite backed Interface.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string]Resume
	now       func() time.Time
}

// Open opens the database in the xdg data directory.
func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at path. ":memory:" gives a private
// in-memory database.
func OpenPath(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared and serializes writes
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db, pending: map[string]Resume{}, now: time.Now}, nil
}

// Close writes pending resume positions and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveMu.Unlock()

	flushErr := m.Flush(context.Background())
	return errors.Join(flushErr, m.db.Close())
}

// SaveResume records r after a short delay. Saves for the same CDN
// identifier within the delay coalesce into the last one.
func (m *Manager) SaveResume(r Resume) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending[r.CDN] = r

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, m.flush)
}

// Flush writes pending resume positions now, in one transaction. On
// failure the positions stay pending for the next attempt unless newer
// ones replaced them.
func (m *Manager) Flush(ctx context.Context) error {
	m.saveMu.Lock()
	pending := m.pending
	m.pending = map[string]Resume{}
	m.saveMu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	now := m.now()
	err := dbutil.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		for _, r := range pending {
			if err := saveResume(ctx, tx, r, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		m.saveMu.Lock()
		for cdn, r := range pending {
			if _, newer := m.pending[cdn]; !newer {
				m.pending[cdn] = r
			}
		}
		m.saveMu.Unlock()
	}
	return err
}

func (m *Manager) flush() {
	_ = m.Flush(context.Background())
}

// GetResume returns the saved position for cdn, or nil.
func (m *Manager) GetResume(ctx context.Context, cdn string) (*Resume, error) {
	m.saveMu.Lock()
	if r, ok := m.pending[cdn]; ok {
		m.saveMu.Unlock()
		return &r, nil
	}
	m.saveMu.Unlock()
	return getResume(ctx, m.db, cdn)
}

// ClearResume forgets the position of cdn, typically once it finished.
func (m *Manager) ClearResume(ctx context.Context, cdn string) error {
	m.saveMu.Lock()
	delete(m.pending, cdn)
	m.saveMu.Unlock()
	return clearResume(ctx, m.db, cdn)
}

// StartPlay opens a history entry and returns its id.
func (m *Manager) StartPlay(ctx context.Context, e HistoryEntry) (int64, error) {
	if e.StartedAt.IsZero() {
		e.StartedAt = m.now()
	}
	return startPlay(ctx, m.db, e)
}

// EndPlay closes a history entry with its outcome.
func (m *Manager) EndPlay(ctx context.Context, id int64, outcome Outcome, failure string) error {
	return endPlay(ctx, m.db, id, outcome, failure, m.now())
}

// History returns the most recent entries first.
func (m *Manager) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	return listHistory(ctx, m.db, limit)
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
