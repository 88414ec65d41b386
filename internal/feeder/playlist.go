// Package feeder feeds a data player from a directory of fragmented MP4
// segments, keeping a bounded amount of media buffered ahead of the
// playhead.
package feeder

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/fmp4"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// initNames lists the accepted init segment filenames in priority order.
var initNames = []string{"init.mp4", "init.m4s", "init.cmfi"}

var segmentExts = map[string]bool{
	".m4s":  true,
	".mp4":  true,
	".m4v":  true,
	".m4a":  true,
	".cmfv": true,
	".cmfa": true,
}

// Segment is one media segment file.
type Segment struct {
	Path  string
	Start mediatime.Time
	End   mediatime.Time
	Size  int64
}

// Name returns the file name of the segment.
func (s Segment) Name() string { return filepath.Base(s.Path) }

// Playlist is an init segment followed by media segments in time order.
type Playlist struct {
	InitPath string
	Init     *fmp4.Init
	Segments []Segment
}

// Scan reads dir. Every segment is parsed once to learn its time range;
// segments are ordered by start time, then name.
func Scan(dir string) (*Playlist, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errmsg.New(errmsg.OpFeed, errmsg.CodeSourceUnavailable, err)
	}

	pl := &Playlist{}
	for _, name := range initNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			pl.InitPath = path
			break
		}
	}
	if pl.InitPath == "" {
		return nil, errmsg.Errorf(errmsg.OpFeed, errmsg.CodeNoInit, "no init segment in %s", dir)
	}

	data, err := os.ReadFile(pl.InitPath)
	if err != nil {
		return nil, errmsg.New(errmsg.OpFeed, errmsg.CodeSourceUnavailable, err)
	}
	seg, err := fmp4.Parse(data, nil)
	if err != nil || seg.Init == nil {
		return nil, errmsg.Errorf(errmsg.OpFeed, errmsg.CodeMalformed, "%s: not an init segment", filepath.Base(pl.InitPath))
	}
	pl.Init = seg.Init

	for _, e := range entries {
		if e.IsDir() || !segmentExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if path == pl.InitPath {
			continue
		}
		s, err := readSegment(path, pl.Init)
		if err != nil {
			return nil, err
		}
		pl.Segments = append(pl.Segments, s)
	}

	slices.SortStableFunc(pl.Segments, func(a, b Segment) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return pl, nil
}

func readSegment(path string, init *fmp4.Init) (Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Segment{}, errmsg.New(errmsg.OpFeed, errmsg.CodeSourceUnavailable, err)
	}
	parsed, err := fmp4.Parse(data, init)
	if err != nil {
		return Segment{}, errmsg.New(errmsg.OpFeed, errmsg.CodeMalformed, fmt.Errorf("%s: %w", filepath.Base(path), err))
	}

	s := Segment{Path: path, Start: mediatime.Invalid, End: mediatime.Invalid, Size: int64(len(data))}
	for _, f := range parsed.Fragments {
		if f.Kind != fmp4.KindAudio && f.Kind != fmp4.KindVideo {
			continue
		}
		if !s.Start.IsValid() || f.Start().Before(s.Start) {
			s.Start = f.Start()
		}
		if !s.End.IsValid() || f.End().After(s.End) {
			s.End = f.End()
		}
	}
	if !s.Start.IsValid() {
		return Segment{}, errmsg.Errorf(errmsg.OpFeed, errmsg.CodeMalformed, "%s: no audio or video fragments", filepath.Base(path))
	}
	return s, nil
}

// Duration returns the end of the last segment.
func (p *Playlist) Duration() mediatime.Time {
	if len(p.Segments) == 0 {
		return mediatime.Zero
	}
	return p.Segments[len(p.Segments)-1].End
}

// Size returns the bytes of all media segments.
func (p *Playlist) Size() int64 {
	var n int64
	for _, s := range p.Segments {
		n += s.Size
	}
	return n
}

// IndexAt returns the index of the segment to feed first for playback from
// t: the last segment starting at or before t.
func (p *Playlist) IndexAt(t mediatime.Time) int {
	i, found := slices.BinarySearchFunc(p.Segments, t, func(s Segment, t mediatime.Time) int {
		return s.Start.Compare(t)
	})
	if found {
		return i
	}
	return max(i-1, 0)
}
