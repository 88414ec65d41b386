// Package fmp4 reads the parts of ISO-BMFF (MP4) files a player needs to
// schedule media: track declarations from init segments, time ranges of
// movie fragments, and the sync-sample index of progressive files.
package fmp4

import (
	"errors"
	"image"

	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Kind is the media type of a track.
type Kind int

const (
	KindUnknown Kind = iota
	KindAudio
	KindVideo
	KindMetadata
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	case KindMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// kindFromHandler maps an hdlr handler type to a Kind.
func kindFromHandler(handler string) Kind {
	switch handler {
	case "soun":
		return KindAudio
	case "vide":
		return KindVideo
	case "meta", "text", "subt", "sbtl":
		return KindMetadata
	default:
		return KindUnknown
	}
}

var (
	ErrNoBoxes      = errors.New("fmp4: payload contains no boxes")
	ErrNoMedia      = errors.New("fmp4: payload carries neither init segment nor fragments")
	ErrUnknownTrack = errors.New("fmp4: fragment references an undeclared track")
	ErrNoTimescale  = errors.New("fmp4: track has no timescale")
	ErrMissingMdat  = errors.New("fmp4: movie fragment without media data")
	ErrTruncated    = errors.New("fmp4: sample data outside media data box")
	ErrNoDuration   = errors.New("fmp4: cannot determine sample durations")
)

// Track is a track declared in a moov box.
type Track struct {
	ID        uint32
	Kind      Kind
	Handler   string // hdlr handler type, e.g. "vide"
	Codec     string // first sample entry type, e.g. "avc1"
	Timescale uint32
	Width     int // video only, from tkhd
	Height    int

	DefaultSampleDuration uint32 // from trex
	DefaultSampleSize     uint32
}

// Rect returns the frame rectangle of a video track.
func (t Track) Rect() image.Rectangle {
	return image.Rect(0, 0, t.Width, t.Height)
}

// Init is the set of tracks declared by an initialization segment.
type Init struct {
	Tracks []Track
}

// Track returns the track with the given ID.
func (i *Init) Track(id uint32) (Track, bool) {
	if i == nil {
		return Track{}, false
	}
	for _, t := range i.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}

// Kinds returns the distinct kinds declared, in track order.
func (i *Init) Kinds() []Kind {
	if i == nil {
		return nil
	}
	var kinds []Kind
	seen := map[Kind]bool{}
	for _, t := range i.Tracks {
		if !seen[t.Kind] {
			seen[t.Kind] = true
			kinds = append(kinds, t.Kind)
		}
	}
	return kinds
}

// Fragment is one track run of a movie fragment (one traf).
type Fragment struct {
	TrackID   uint32
	Kind      Kind
	Timescale uint32
	BaseTime  uint64 // tfdt base media decode time
	Duration  uint64 // sum of sample durations
	Samples   int
	Size      int    // bytes of sample data
	Data      []byte // copied sample data, metadata tracks only
}

// Start returns the decode time of the first sample.
func (f Fragment) Start() mediatime.Time {
	return mediatime.Make(int64(f.BaseTime), int32(f.Timescale))
}

// End returns the decode time just past the last sample.
func (f Fragment) End() mediatime.Time {
	return mediatime.Make(int64(f.BaseTime+f.Duration), int32(f.Timescale))
}

// Segment is the parsed content of one appended payload.
type Segment struct {
	Init      *Init // non-nil when the payload carried a moov box
	Fragments []Fragment
}
