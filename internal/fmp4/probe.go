package fmp4

import (
	"io"
	"sort"

	"github.com/abema/go-mp4"

	"github.com/llehouerou/vbplayer/internal/mediatime"
)

type movieInfo struct {
	timescale uint32
	duration  uint64
}

type sampleIndex struct {
	stts *mp4.Stts
	stss *mp4.Stss
}

// Movie describes a progressive (non-fragmented) MP4 file.
type Movie struct {
	Duration mediatime.Time
	Tracks   []Track
	// Keyframes lists sync sample times of the first video track in
	// ascending order. Nil means every sample is a sync sample.
	Keyframes []mediatime.Time
}

// Video returns the first video track.
func (m *Movie) Video() (Track, bool) {
	for _, t := range m.Tracks {
		if t.Kind == KindVideo {
			return t, true
		}
	}
	return Track{}, false
}

// Probe reads the moov box of a progressive MP4 file. Media data is skipped.
func Probe(r io.ReadSeeker) (*Movie, error) {
	w := &walker{
		trex:      map[uint32]*mp4.Trex{},
		probe:     true,
		sampleIdx: map[uint32]*sampleIndex{},
	}
	if _, err := mp4.ReadBoxStructure(r, w.handle); err != nil {
		return nil, err
	}
	if !w.hasMoov {
		return nil, ErrNoBoxes
	}

	m := &Movie{Tracks: w.init().Tracks, Duration: mediatime.Indefinite}
	if w.movie.timescale > 0 {
		m.Duration = mediatime.Make(int64(w.movie.duration), int32(w.movie.timescale))
	}

	if video, ok := m.Video(); ok {
		if idx := w.sampleIdx[video.ID]; idx != nil && idx.stss != nil && idx.stts != nil {
			m.Keyframes = keyframeTimes(idx.stts, idx.stss, video.Timescale)
		}
	}
	return m, nil
}

func (w *walker) readSampleTable(h *mp4.ReadHandle) error {
	box, _, err := h.ReadPayload()
	if err != nil {
		return err
	}
	// The track ID is known once tkhd (which precedes mdia) has been read.
	idx := w.sampleIdx[w.cur.ID]
	if idx == nil {
		idx = &sampleIndex{}
		w.sampleIdx[w.cur.ID] = idx
	}
	switch b := box.(type) {
	case *mp4.Stts:
		idx.stts = b
	case *mp4.Stss:
		idx.stss = b
	}
	return nil
}

// keyframeTimes converts 1-based sync sample numbers to decode times.
func keyframeTimes(stts *mp4.Stts, stss *mp4.Stss, timescale uint32) []mediatime.Time {
	if timescale == 0 {
		return nil
	}
	numbers := append([]uint32(nil), stss.SampleNumber...)
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	times := make([]mediatime.Time, 0, len(numbers))
	var (
		sample  uint32 = 1 // first sample number of the current stts entry
		elapsed uint64
		entry   int
	)
	for _, n := range numbers {
		for entry < len(stts.Entries) && n >= sample+stts.Entries[entry].SampleCount {
			e := stts.Entries[entry]
			elapsed += uint64(e.SampleCount) * uint64(e.SampleDelta)
			sample += e.SampleCount
			entry++
		}
		t := elapsed
		if entry < len(stts.Entries) {
			t += uint64(n-sample) * uint64(stts.Entries[entry].SampleDelta)
		}
		times = append(times, mediatime.Make(int64(t), int32(timescale)))
	}
	return times
}
