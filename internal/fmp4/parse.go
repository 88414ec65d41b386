package fmp4

import (
	"bytes"
	"fmt"

	"github.com/abema/go-mp4"
)

// tfhd / trun flag bits (ISO/IEC 14496-12 8.8.7, 8.8.8).
const (
	tfhdBaseDataOffsetPresent        = 0x000001
	tfhdDefaultSampleDurationPresent = 0x000008
	tfhdDefaultSampleSizePresent     = 0x000010

	trunDataOffsetPresent     = 0x000001
	trunSampleDurationPresent = 0x000100
	trunSampleSizePresent     = 0x000200
)

// walker accumulates state while go-mp4 traverses the box tree.
type walker struct {
	tracks  []Track
	cur     *Track
	hasMoov bool
	trex    map[uint32]*mp4.Trex

	size    uint64 // payload length; 0 when unknown

	moofs   []*moofInfo
	curMoof *moofInfo
	curTraf *trafInfo
	mdats   []span

	// probe only
	probe     bool
	movie     movieInfo
	sampleIdx map[uint32]*sampleIndex
}

type span struct{ start, end uint64 }

type moofInfo struct {
	offset uint64
	trafs  []*trafInfo
}

type trafInfo struct {
	tfhd *mp4.Tfhd
	tfdt *mp4.Tfdt
	runs []*mp4.Trun
}

// Parse reads an appended payload. Fragments are resolved against the
// payload's own moov when present, otherwise against init.
func Parse(payload []byte, init *Init) (*Segment, error) {
	w := &walker{trex: map[uint32]*mp4.Trex{}, size: uint64(len(payload))}
	boxes, err := mp4.ReadBoxStructure(bytes.NewReader(payload), w.handle)
	if err != nil {
		return nil, err
	}
	if len(boxes) == 0 {
		return nil, ErrNoBoxes
	}

	if !w.hasMoov && len(w.moofs) == 0 {
		return nil, ErrNoMedia
	}

	seg := &Segment{}
	if w.hasMoov {
		seg.Init = w.init()
		init = seg.Init
	}

	for i, moof := range w.moofs {
		data, ok := w.mdatAfter(moof.offset, i)
		if !ok {
			return nil, ErrMissingMdat
		}
		frags, err := resolveMoof(payload, moof, data, init)
		if err != nil {
			return nil, err
		}
		seg.Fragments = append(seg.Fragments, frags...)
	}
	return seg, nil
}

func (w *walker) init() *Init {
	tracks := make([]Track, len(w.tracks))
	for i, t := range w.tracks {
		if trex, ok := w.trex[t.ID]; ok {
			t.DefaultSampleDuration = trex.DefaultSampleDuration
			t.DefaultSampleSize = trex.DefaultSampleSize
		}
		tracks[i] = t
	}
	return &Init{Tracks: tracks}
}

// mdatAfter returns the first mdat after the moof at offset and before the
// next moof.
func (w *walker) mdatAfter(offset uint64, idx int) (span, bool) {
	limit := ^uint64(0)
	if idx+1 < len(w.moofs) {
		limit = w.moofs[idx+1].offset
	}
	for _, m := range w.mdats {
		if m.start > offset && m.start < limit {
			return m, true
		}
	}
	return span{}, false
}

func (w *walker) handle(h *mp4.ReadHandle) (interface{}, error) {
	typ := h.BoxInfo.Type
	if w.size > 0 && h.BoxInfo.Offset+h.BoxInfo.Size > w.size {
		return nil, fmt.Errorf("%w: %s box overruns payload", ErrTruncated, typ)
	}
	parent := mp4.BoxType{}
	if len(h.Path) >= 2 {
		parent = h.Path[len(h.Path)-2]
	}

	switch typ {
	case mp4.BoxTypeMoov():
		w.hasMoov = true
		return h.Expand()

	case mp4.BoxTypeMdia(), mp4.BoxTypeMinf(), mp4.BoxTypeStbl(), mp4.BoxTypeMvex():
		return h.Expand()

	case mp4.BoxTypeTrak():
		w.cur = &Track{}
		if _, err := h.Expand(); err != nil {
			return nil, err
		}
		w.tracks = append(w.tracks, *w.cur)
		w.cur = nil
		return nil, nil

	case mp4.BoxTypeMvhd():
		if !w.probe {
			return nil, nil
		}
		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, err
		}
		mvhd := box.(*mp4.Mvhd)
		w.movie.timescale = mvhd.Timescale
		if mvhd.GetVersion() == 1 {
			w.movie.duration = mvhd.DurationV1
		} else {
			w.movie.duration = uint64(mvhd.DurationV0)
		}
		return nil, nil

	case mp4.BoxTypeTkhd():
		if w.cur == nil {
			return nil, nil
		}
		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, err
		}
		tkhd := box.(*mp4.Tkhd)
		w.cur.ID = tkhd.TrackID
		w.cur.Width = int(tkhd.Width >> 16)
		w.cur.Height = int(tkhd.Height >> 16)
		return nil, nil

	case mp4.BoxTypeMdhd():
		if w.cur == nil {
			return nil, nil
		}
		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, err
		}
		mdhd := box.(*mp4.Mdhd)
		w.cur.Timescale = mdhd.Timescale
		return nil, nil

	case mp4.BoxTypeHdlr():
		if w.cur == nil || parent != mp4.BoxTypeMdia() {
			return nil, nil
		}
		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, err
		}
		hdlr := box.(*mp4.Hdlr)
		w.cur.Handler = string(hdlr.HandlerType[:])
		w.cur.Kind = kindFromHandler(w.cur.Handler)
		return nil, nil

	case mp4.BoxTypeStsd():
		return h.Expand()

	case mp4.BoxTypeStts(), mp4.BoxTypeStss():
		if !w.probe || w.cur == nil {
			return nil, nil
		}
		return nil, w.readSampleTable(h)

	case mp4.BoxTypeTrex():
		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, err
		}
		trex := box.(*mp4.Trex)
		w.trex[trex.TrackID] = trex
		return nil, nil

	case mp4.BoxTypeMoof():
		w.curMoof = &moofInfo{offset: h.BoxInfo.Offset}
		if _, err := h.Expand(); err != nil {
			return nil, err
		}
		w.moofs = append(w.moofs, w.curMoof)
		w.curMoof = nil
		return nil, nil

	case mp4.BoxTypeTraf():
		if w.curMoof == nil {
			return nil, nil
		}
		w.curTraf = &trafInfo{}
		if _, err := h.Expand(); err != nil {
			return nil, err
		}
		w.curMoof.trafs = append(w.curMoof.trafs, w.curTraf)
		w.curTraf = nil
		return nil, nil

	case mp4.BoxTypeTfhd(), mp4.BoxTypeTfdt(), mp4.BoxTypeTrun():
		if w.curTraf == nil {
			return nil, nil
		}
		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, err
		}
		switch b := box.(type) {
		case *mp4.Tfhd:
			w.curTraf.tfhd = b
		case *mp4.Tfdt:
			w.curTraf.tfdt = b
		case *mp4.Trun:
			w.curTraf.runs = append(w.curTraf.runs, b)
		}
		return nil, nil

	case mp4.BoxTypeMdat():
		end := h.BoxInfo.Offset + h.BoxInfo.Size
		w.mdats = append(w.mdats, span{start: h.BoxInfo.Offset + h.BoxInfo.HeaderSize, end: end})
		return nil, nil
	}

	// Sample entries: record the codec of the current track.
	if parent == mp4.BoxTypeStsd() && w.cur != nil && w.cur.Codec == "" {
		w.cur.Codec = typ.String()
	}
	return nil, nil
}

func resolveMoof(payload []byte, moof *moofInfo, data span, init *Init) ([]Fragment, error) {
	frags := make([]Fragment, 0, len(moof.trafs))
	for _, traf := range moof.trafs {
		if traf.tfhd == nil {
			return nil, fmt.Errorf("fmp4: traf without tfhd")
		}
		track, ok := init.Track(traf.tfhd.TrackID)
		if !ok {
			return nil, fmt.Errorf("%w: track %d", ErrUnknownTrack, traf.tfhd.TrackID)
		}
		if track.Timescale == 0 {
			return nil, fmt.Errorf("%w: track %d", ErrNoTimescale, track.ID)
		}

		frag := Fragment{
			TrackID:   track.ID,
			Kind:      track.Kind,
			Timescale: track.Timescale,
		}
		if traf.tfdt != nil {
			if traf.tfdt.GetVersion() == 1 {
				frag.BaseTime = traf.tfdt.BaseMediaDecodeTimeV1
			} else {
				frag.BaseTime = uint64(traf.tfdt.BaseMediaDecodeTimeV0)
			}
		}

		defDuration := track.DefaultSampleDuration
		if traf.tfhd.CheckFlag(tfhdDefaultSampleDurationPresent) {
			defDuration = traf.tfhd.DefaultSampleDuration
		}
		defSize := track.DefaultSampleSize
		if traf.tfhd.CheckFlag(tfhdDefaultSampleSizePresent) {
			defSize = traf.tfhd.DefaultSampleSize
		}
		base := moof.offset
		if traf.tfhd.CheckFlag(tfhdBaseDataOffsetPresent) {
			base = traf.tfhd.BaseDataOffset
		}

		var dataRanges []span
		next := data.start
		for _, run := range traf.runs {
			start := next
			if run.CheckFlag(trunDataOffsetPresent) {
				start = uint64(int64(base) + int64(run.DataOffset))
			}
			var size uint64
			for i := range int(run.SampleCount) {
				dur, sz := defDuration, defSize
				if i < len(run.Entries) {
					if run.CheckFlag(trunSampleDurationPresent) {
						dur = run.Entries[i].SampleDuration
					}
					if run.CheckFlag(trunSampleSizePresent) {
						sz = run.Entries[i].SampleSize
					}
				}
				if dur == 0 && frag.Kind != KindMetadata {
					return nil, fmt.Errorf("%w: track %d", ErrNoDuration, track.ID)
				}
				frag.Duration += uint64(dur)
				size += uint64(sz)
			}
			frag.Samples += int(run.SampleCount)
			if start < data.start || start+size > data.end {
				return nil, fmt.Errorf("%w: track %d", ErrTruncated, track.ID)
			}
			dataRanges = append(dataRanges, span{start: start, end: start + size})
			frag.Size += int(size)
			next = start + size
		}

		if frag.Kind == KindMetadata {
			for _, r := range dataRanges {
				frag.Data = append(frag.Data, payload[r.start:r.end]...)
			}
		}
		frags = append(frags, frag)
	}
	return frags, nil
}
