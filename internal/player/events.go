package player

import "github.com/llehouerou/vbplayer/internal/mediatime"

// StatusChange is emitted when the player status changes.
type StatusChange struct {
	Previous Status
	Current  Status
}

// StallChange is emitted when playback stalls for lack of data, and again
// when it resumes. Stalls never change the status.
type StallChange struct {
	Stalled bool
	Time    mediatime.Time
}

// RateChange is emitted when the effective rate changes, including the
// drop to zero at the end of content.
type RateChange struct {
	Previous float64
	Current  float64
}

// FinishEvent is emitted once per arrival at the end of content.
type FinishEvent struct {
	Time mediatime.Time
}

// MetadataEvent carries a timed metadata sample reached by the playhead.
//
// Emitted by data players only, for fragments appended with
// CodingMetadata or carried by a metadata track of a muxed payload.
type MetadataEvent struct {
	Time mediatime.Time
	Data []byte
}
