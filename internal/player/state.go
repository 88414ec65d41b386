// internal/player/state.go
package player

import "github.com/llehouerou/vbplayer/internal/errmsg"

// StatusKind is the lifecycle state of a player.
//
// The lifecycle has three states:
//
//	┌──────────┐   prepared    ┌──────────────┐
//	│  Unknown │ ─────────────▶│  ReadyToPlay │
//	└──────────┘               └──────────────┘
//	     │                            │
//	     │ error                error │
//	     ▼                            ▼
//	┌──────────────────────────────────────────┐
//	│                 Failed                   │
//	└──────────────────────────────────────────┘
//
// Valid transitions:
//   - Unknown     → ReadyToPlay (engine prepared)
//   - Unknown     → Failed      (construction or preparation error)
//   - ReadyToPlay → Failed      (fatal decode error)
//
// Failed is terminal. Play, pause and seek never change the status.
type StatusKind int

const (
	StatusUnknown StatusKind = iota
	StatusReadyToPlay
	StatusFailed
)

// String returns the state name for debugging.
func (k StatusKind) String() string {
	switch k {
	case StatusUnknown:
		return "Unknown"
	case StatusReadyToPlay:
		return "ReadyToPlay"
	case StatusFailed:
		return "Failed"
	default:
		return "Invalid"
	}
}

// Status is the player status. A failed status always carries its error;
// statuses can only be built inside this package.
type Status struct {
	kind StatusKind
	err  error
}

var (
	unknownStatus = Status{kind: StatusUnknown}
	readyStatus   = Status{kind: StatusReadyToPlay}
)

func failedStatus(err error) Status {
	if err == nil {
		err = errmsg.New(errmsg.OpDecode, errmsg.CodeFailed, nil)
	}
	return Status{kind: StatusFailed, err: err}
}

// Kind returns the lifecycle state.
func (s Status) Kind() StatusKind { return s.kind }

// Err returns the failure, or nil unless the status is Failed.
func (s Status) Err() error { return s.err }

// IsReady reports whether the player is ReadyToPlay.
func (s Status) IsReady() bool { return s.kind == StatusReadyToPlay }

// IsFailed reports whether the player is Failed.
func (s Status) IsFailed() bool { return s.kind == StatusFailed }

func (s Status) String() string {
	if s.kind == StatusFailed {
		return "Failed(" + s.err.Error() + ")"
	}
	return s.kind.String()
}

// advance returns the status after moving to next, and whether the move is
// a valid transition.
func (s Status) advance(next Status) (Status, bool) {
	switch s.kind {
	case StatusUnknown:
		if next.kind == StatusReadyToPlay || next.kind == StatusFailed {
			return next, true
		}
	case StatusReadyToPlay:
		if next.kind == StatusFailed {
			return next, true
		}
	case StatusFailed:
		// terminal
	}
	return s, false
}
