// Package app is the vbplay terminal model: it drives one player from the
// keyboard and shows its status, time, buffer and display surface.
package app

import (
	"time"

	"github.com/llehouerou/vbplayer/internal/display"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
	"github.com/llehouerou/vbplayer/internal/state"
)

// TickMsg refreshes the clock while playing.
type TickMsg time.Time

// StatusChangedMsg wraps a player status change.
type StatusChangedMsg player.StatusChange

// StallChangedMsg wraps a stall change.
type StallChangedMsg player.StallChange

// RateChangedMsg wraps a rate change.
type RateChangedMsg player.RateChange

// FinishedMsg is sent when the player reaches the end of content.
type FinishedMsg player.FinishEvent

// MetadataMsg carries a timed metadata sample.
type MetadataMsg player.MetadataEvent

// PlayerClosedMsg is sent once the player subscription is done.
type PlayerClosedMsg struct{}

// SurfaceChangedMsg wraps a display surface change.
type SurfaceChangedMsg display.Change

// MarkerMsg is sent each time the marker observer fires.
type MarkerMsg mediatime.Time

// FeedErrorMsg is sent when the segment feeder stops on an error.
type FeedErrorMsg struct{ Err error }

// ResumeLoadedMsg carries the saved position, or nil.
type ResumeLoadedMsg struct {
	Resume *state.Resume
	Err    error
}
