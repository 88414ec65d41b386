// Package buffer holds the media appended to a data player: one track buffer
// per media kind, fed from fragmented MP4 payloads.
//
// A Set is not safe for concurrent use; the data engine guards it.
package buffer

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"time"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/fmp4"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Range is the time span of one buffered fragment.
type Range struct {
	Start mediatime.Time
	End   mediatime.Time
	Size  int
}

// Sample is a timed metadata payload.
type Sample struct {
	Time mediatime.Time
	Data []byte
}

// Track is the buffer of one media kind.
type Track struct {
	Kind  fmp4.Kind
	Codec string
	Rect  image.Rectangle

	ranges []Range
	end    mediatime.Time // end of the newest fragment, or the discard point
	last   mediatime.Time // continuity anchor; Invalid accepts any start
}

// End returns the end of the newest buffered data.
func (t *Track) End() mediatime.Time { return t.end }

// Ranges returns the buffered fragments, oldest first.
func (t *Track) Ranges() []Range { return slices.Clone(t.ranges) }

// Bytes returns the amount of buffered sample data.
func (t *Track) Bytes() int {
	n := 0
	for _, r := range t.ranges {
		n += r.Size
	}
	return n
}

func (t *Track) undrained() bool { return len(t.ranges) > 0 }

// Appended summarizes a committed payload.
type Appended struct {
	Init      bool
	Kinds     []fmp4.Kind
	Fragments int
}

// Set is the collection of track buffers of one data player.
type Set struct {
	tolerance mediatime.Time
	inits     map[Coding]*fmp4.Init
	tracks    map[fmp4.Kind]*Track
	meta      []Sample
	base      mediatime.Time
	ended     bool
}

// New returns an empty Set. Consecutive fragments of one kind may be apart
// by at most tolerance.
func New(tolerance time.Duration) *Set {
	return &Set{
		tolerance: mediatime.FromDuration(tolerance),
		inits:     map[Coding]*fmp4.Init{},
		tracks:    map[fmp4.Kind]*Track{},
		base:      mediatime.Zero,
	}
}

// Append validates payload and commits it. A rejected payload leaves the
// Set unchanged. Errors are *errmsg.Error values; ErrDecode means the
// payload cannot be isolated from data already buffered.
func (s *Set) Append(payload []byte, coding Coding) (Appended, error) {
	if !coding.Valid() {
		return Appended{}, errmsg.Errorf(errmsg.OpAppend, errmsg.CodeInvalidArgument, "unknown coding %d", coding)
	}
	if s.ended {
		return Appended{}, errmsg.New(errmsg.OpAppend, errmsg.CodeEndOfStream, nil)
	}
	if len(payload) == 0 {
		return Appended{}, errmsg.Errorf(errmsg.OpAppend, errmsg.CodeMalformed, "empty payload")
	}

	seg, err := fmp4.Parse(payload, s.declared(coding))
	if err != nil {
		if errors.Is(err, fmp4.ErrUnknownTrack) {
			return Appended{}, errmsg.New(errmsg.OpAppend, errmsg.CodeNoInit, err)
		}
		return Appended{}, errmsg.New(errmsg.OpAppend, errmsg.CodeMalformed, err)
	}

	if seg.Init != nil {
		if err := s.checkInit(seg.Init, coding); err != nil {
			return Appended{}, err
		}
	}
	if err := s.checkFragments(seg, coding); err != nil {
		return Appended{}, err
	}

	return s.commit(seg, coding), nil
}

// declared returns the tracks a payload under coding is parsed against:
// those of the init appended under coding, then tracks of a kind coding
// carries that other codings declared. An audio fragment may thus follow
// a muxed init. On a track ID clash the earlier declaration wins.
func (s *Set) declared(coding Coding) *fmp4.Init {
	var tracks []fmp4.Track
	if own := s.inits[coding]; own != nil {
		tracks = append(tracks, own.Tracks...)
	}
	seen := func(id uint32) bool {
		return slices.ContainsFunc(tracks, func(t fmp4.Track) bool { return t.ID == id })
	}
	for c := CodingMP4; c <= CodingMetadata; c++ {
		other := s.inits[c]
		if c == coding || other == nil {
			continue
		}
		for _, t := range other.Tracks {
			if coding.Accepts(t.Kind) && !seen(t.ID) {
				tracks = append(tracks, t)
			}
		}
	}
	if len(tracks) == 0 {
		return nil
	}
	return &fmp4.Init{Tracks: tracks}
}

func (s *Set) checkInit(init *fmp4.Init, coding Coding) error {
	media := 0
	for _, t := range init.Tracks {
		if t.Kind == fmp4.KindUnknown {
			continue
		}
		if !coding.Accepts(t.Kind) {
			return errmsg.Errorf(errmsg.OpAppend, errmsg.CodeCodingMismatch,
				"%s track %d under %s coding", t.Kind, t.ID, coding)
		}
		media++
		if cur := s.tracks[t.Kind]; cur != nil && cur.Codec != t.Codec && cur.undrained() {
			return errmsg.Errorf(errmsg.OpAppend, errmsg.CodeDecode,
				"%s codec changed from %s to %s with data still buffered", t.Kind, cur.Codec, t.Codec)
		}
	}
	if media == 0 {
		return errmsg.Errorf(errmsg.OpAppend, errmsg.CodeMalformed, "init segment declares no media tracks")
	}
	return nil
}

func (s *Set) checkFragments(seg *fmp4.Segment, coding Coding) error {
	anchors := map[fmp4.Kind]mediatime.Time{}
	for k, t := range s.tracks {
		anchors[k] = t.last
	}
	for _, f := range seg.Fragments {
		if f.Kind == fmp4.KindUnknown {
			continue
		}
		if !coding.Accepts(f.Kind) {
			return errmsg.Errorf(errmsg.OpAppend, errmsg.CodeCodingMismatch,
				"%s fragment under %s coding", f.Kind, coding)
		}
		if s.tracks[f.Kind] == nil && !declares(seg.Init, f.Kind) {
			return errmsg.Errorf(errmsg.OpAppend, errmsg.CodeNoInit, "no init segment for %s", f.Kind)
		}
		if prev, ok := anchors[f.Kind]; ok && prev.IsValid() {
			gap := f.Start().Sub(prev)
			if gap.Neg().After(gap) {
				gap = gap.Neg()
			}
			if gap.After(s.tolerance) {
				return errmsg.Errorf(errmsg.OpAppend, errmsg.CodeDiscontinuity,
					"%s fragment starts at %.3fs, previous ended at %.3fs",
					f.Kind, f.Start().Seconds(), prev.Seconds())
			}
		}
		anchors[f.Kind] = f.End()
	}
	return nil
}

func declares(init *fmp4.Init, k fmp4.Kind) bool {
	return init != nil && slices.Contains(init.Kinds(), k)
}

func (s *Set) commit(seg *fmp4.Segment, coding Coding) Appended {
	res := Appended{Init: seg.Init != nil}
	touched := map[fmp4.Kind]bool{}

	if seg.Init != nil {
		s.inits[coding] = seg.Init
		for _, t := range seg.Init.Tracks {
			if t.Kind == fmp4.KindUnknown {
				continue
			}
			tr := s.tracks[t.Kind]
			if tr == nil {
				tr = &Track{Kind: t.Kind, end: s.base, last: mediatime.Invalid}
				s.tracks[t.Kind] = tr
			}
			tr.Codec = t.Codec
			if t.Kind == fmp4.KindVideo {
				tr.Rect = t.Rect()
			}
			touched[t.Kind] = true
		}
	}

	for _, f := range seg.Fragments {
		tr := s.tracks[f.Kind]
		if tr == nil {
			continue
		}
		tr.ranges = append(tr.ranges, Range{Start: f.Start(), End: f.End(), Size: f.Size})
		tr.end = mediatime.Max(tr.end, f.End())
		tr.last = f.End()
		if f.Kind == fmp4.KindMetadata {
			s.meta = append(s.meta, Sample{Time: f.Start(), Data: f.Data})
		}
		touched[f.Kind] = true
		res.Fragments++
	}

	for k := range touched {
		res.Kinds = append(res.Kinds, k)
	}
	slices.Sort(res.Kinds)
	return res
}

// Horizon returns the smallest end over initialized audio and video
// tracks. ok is false until one of them is initialized.
func (s *Set) Horizon() (h mediatime.Time, ok bool) {
	h = mediatime.PositiveInfinity
	for _, k := range []fmp4.Kind{fmp4.KindAudio, fmp4.KindVideo} {
		if t := s.tracks[k]; t != nil {
			h = mediatime.Min(h, t.end)
			ok = true
		}
	}
	if !ok {
		return mediatime.Invalid, false
	}
	return h, true
}

// Buffered returns Horizon()-pos, floored at zero.
func (s *Set) Buffered(pos mediatime.Time) mediatime.Time {
	h, ok := s.Horizon()
	if !ok || !h.After(pos) {
		return mediatime.Zero
	}
	return h.Sub(pos)
}

// Release drops fragments that end at or before pos.
func (s *Set) Release(pos mediatime.Time) {
	for _, t := range s.tracks {
		i := 0
		for i < len(t.ranges) && !t.ranges[i].End.After(pos) {
			i++
		}
		if i > 0 {
			t.ranges = slices.Delete(t.ranges, 0, i)
		}
	}
}

// Discard drops all buffered data and restarts every track at pos: the
// next fragment of each kind may start anywhere and end of stream is
// cleared. Init segments are kept.
func (s *Set) Discard(pos mediatime.Time) {
	for _, t := range s.tracks {
		t.ranges = nil
		t.end = pos
		t.last = mediatime.Invalid
	}
	s.meta = nil
	s.base = pos
	s.ended = false
}

// EndOfStream marks the Set as complete. Further appends fail.
func (s *Set) EndOfStream() { s.ended = true }

// Ended reports whether EndOfStream was called since the last Discard.
func (s *Set) Ended() bool { return s.ended }

// Initialized reports whether any init segment has been accepted.
func (s *Set) Initialized() bool { return len(s.tracks) > 0 }

// Kinds returns the initialized kinds in ascending order.
func (s *Set) Kinds() []fmp4.Kind {
	kinds := make([]fmp4.Kind, 0, len(s.tracks))
	for k := range s.tracks {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Track returns a snapshot of the buffer of kind k.
func (s *Set) Track(k fmp4.Kind) (Track, bool) {
	t := s.tracks[k]
	if t == nil {
		return Track{}, false
	}
	cp := *t
	cp.ranges = slices.Clone(t.ranges)
	return cp, true
}

// Bytes returns the sample data held across all tracks.
func (s *Set) Bytes() int {
	n := 0
	for _, t := range s.tracks {
		n += t.Bytes()
	}
	return n
}

// Frame reports the video frame rectangle if a buffered video fragment
// covers pos.
func (s *Set) Frame(pos mediatime.Time) (image.Rectangle, bool) {
	t := s.tracks[fmp4.KindVideo]
	if t == nil || t.Rect.Empty() {
		return image.Rectangle{}, false
	}
	for _, r := range t.ranges {
		if !pos.Before(r.Start) && pos.Before(r.End) {
			return t.Rect, true
		}
	}
	return image.Rectangle{}, false
}

// TakeMetadata removes and returns the metadata samples starting at or
// before pos.
func (s *Set) TakeMetadata(pos mediatime.Time) []Sample {
	i := 0
	for i < len(s.meta) && !s.meta[i].Time.After(pos) {
		i++
	}
	if i == 0 {
		return nil
	}
	out := slices.Clone(s.meta[:i])
	s.meta = slices.Delete(s.meta, 0, i)
	return out
}

func (s *Set) String() string {
	h, _ := s.Horizon()
	return fmt.Sprintf("buffer{kinds=%v horizon=%v ended=%t}", s.Kinds(), h, s.ended)
}
