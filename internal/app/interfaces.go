package app

import (
	"github.com/llehouerou/vbplayer/internal/dispatch"
	"github.com/llehouerou/vbplayer/internal/display"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
)

// The capabilities below are optional. *player.Player, *player.DataPlayer
// and *feeder.Player have all of them; player.Mock has none.

// Surfacer is a player that can present to a display surface.
type Surfacer interface {
	SetDisplaySurface(s *display.Surface)
	DisplaySurface() *display.Surface
}

// Observable is a player with periodic time observers.
type Observable interface {
	AddPeriodicTimeObserver(interval mediatime.Time, q *dispatch.Queue, fn func(mediatime.Time)) *player.TimeObserver
}

// ToleranceSeeker is a player that can seek exactly.
type ToleranceSeeker interface {
	SeekWithTolerance(t, tolerance mediatime.Time)
}

// Identified is a player with an instance id, recorded in the play history.
type Identified interface {
	ID() string
}

type buffering interface {
	BufferedDuration() mediatime.Time
}
