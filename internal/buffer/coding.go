package buffer

import "github.com/llehouerou/vbplayer/internal/fmp4"

// Coding tags an appended payload with the tracks it may carry.
type Coding int

const (
	// CodingMP4 is fragmented MP4 with any mix of audio, video and metadata.
	CodingMP4 Coding = iota
	CodingMP4Audio
	CodingMP4Video
	CodingMetadata
)

// String returns the coding name for debugging.
func (c Coding) String() string {
	switch c {
	case CodingMP4:
		return "mp4"
	case CodingMP4Audio:
		return "mp4-audio"
	case CodingMP4Video:
		return "mp4-video"
	case CodingMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the declared codings.
func (c Coding) Valid() bool {
	return c >= CodingMP4 && c <= CodingMetadata
}

// Accepts reports whether a track of kind k may arrive under c.
func (c Coding) Accepts(k fmp4.Kind) bool {
	switch c {
	case CodingMP4:
		return k != fmp4.KindUnknown
	case CodingMP4Audio:
		return k == fmp4.KindAudio
	case CodingMP4Video:
		return k == fmp4.KindVideo
	case CodingMetadata:
		return k == fmp4.KindMetadata
	default:
		return false
	}
}
