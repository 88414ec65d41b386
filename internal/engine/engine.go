// Package engine models the media pipeline behind a player.
//
// An Engine reports what the pipeline can play: the media description once
// prepared, how far playable data reaches, and whether more data is
// expected. The player drives the playhead; engines never decode.
package engine

import (
	"context"
	"image"

	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Media describes prepared content.
type Media struct {
	Title    string
	Artist   string
	Duration mediatime.Time // Indefinite when unknown in advance
	Video    image.Rectangle
	Codecs   []string
}

// Metadata is a timed metadata payload reached by the playhead.
type Metadata struct {
	Time mediatime.Time
	Data []byte
}

// Engine is the pipeline behind one player. Prepare, Seek and Advance are
// only called from the player loop; the remaining methods may be called
// from any goroutine.
type Engine interface {
	// Prepare blocks until the content can be played.
	Prepare(ctx context.Context) (Media, error)
	// Seek resolves target within [target-tolerance, target].
	Seek(ctx context.Context, target, tolerance mediatime.Time) (mediatime.Time, error)
	// Horizon returns the end of playable data.
	Horizon() mediatime.Time
	// Ended reports that no data beyond Horizon will arrive.
	Ended() bool
	// Advance tells the engine the playhead reached pos. It returns the
	// metadata crossed since the previous call.
	Advance(pos mediatime.Time) ([]Metadata, error)
	// Frame reports the decoded frame rectangle at pos.
	Frame(pos mediatime.Time) (image.Rectangle, bool)
	Close() error
}
