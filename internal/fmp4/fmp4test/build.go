// Package fmp4test builds small synthetic MP4 payloads for tests.
package fmp4test

import (
	"encoding/binary"
)

// TrackSpec declares one track of an init segment.
type TrackSpec struct {
	ID        uint32
	Handler   string // "vide", "soun", "meta"
	Codec     string // sample entry type, e.g. "avc1"
	Timescale uint32
	Width     int
	Height    int
}

// Video returns a typical 90kHz H.264 track.
func Video(id uint32, width, height int) TrackSpec {
	return TrackSpec{ID: id, Handler: "vide", Codec: "avc1", Timescale: 90000, Width: width, Height: height}
}

// Audio returns a typical 48kHz AAC track.
func Audio(id uint32) TrackSpec {
	return TrackSpec{ID: id, Handler: "soun", Codec: "mp4a", Timescale: 48000}
}

// Metadata returns a timed metadata track at millisecond resolution.
func Metadata(id uint32) TrackSpec {
	return TrackSpec{ID: id, Handler: "meta", Codec: "mett", Timescale: 1000}
}

// FragSpec describes one traf: Samples samples of SampleDuration ticks
// starting at BaseTime. Data, when set, replaces the generated sample bytes
// and is split evenly across samples.
type FragSpec struct {
	TrackID        uint32
	BaseTime       uint64
	Samples        int
	SampleDuration uint32
	SampleSize     uint32
	Data           []byte
}

// Init returns ftyp+moov declaring the tracks.
func Init(tracks ...TrackSpec) []byte {
	var traks [][]byte
	for _, t := range tracks {
		traks = append(traks, trak(t))
	}
	var trexes [][]byte
	for _, t := range tracks {
		trexes = append(trexes, fullBox("trex", 0, 0, u32(t.ID), u32(1), u32(0), u32(0), u32(0)))
	}
	moovChildren := append([][]byte{mvhd(1000, 0)}, traks...)
	moovChildren = append(moovChildren, box("mvex", trexes...))
	return cat(ftyp(), box("moov", moovChildren...))
}

// Segment returns moof+mdat carrying the fragments.
func Segment(seq uint32, frags ...FragSpec) []byte {
	datas := make([][]byte, len(frags))
	for i, f := range frags {
		datas[i] = sampleData(f)
	}

	// First pass with zero offsets to learn the moof size.
	moof := buildMoof(seq, frags, datas, make([]int32, len(frags)))
	offsets := make([]int32, len(frags))
	next := int32(len(moof) + 8)
	for i := range frags {
		offsets[i] = next
		next += int32(len(datas[i]))
	}
	moof = buildMoof(seq, frags, datas, offsets)
	return cat(moof, box("mdat", datas...))
}

// Progressive returns ftyp+moov+mdat for a non-fragmented file with one
// video track whose samples are all sampleDelta long; syncSamples lists the
// 1-based sync sample numbers.
func Progressive(video TrackSpec, samples int, sampleDelta uint32, syncSamples []uint32) []byte {
	duration := uint64(samples) * uint64(sampleDelta)
	stts := fullBox("stts", 0, 0, u32(1), u32(uint32(samples)), u32(sampleDelta))
	stssFields := [][]byte{u32(uint32(len(syncSamples)))}
	for _, n := range syncSamples {
		stssFields = append(stssFields, u32(n))
	}
	stss := fullBox("stss", 0, 0, stssFields...)

	t := trakWith(video, uint32(duration), stts, stss)
	// movie timescale equals the track timescale to keep durations exact
	moov := box("moov", mvhd(video.Timescale, uint32(duration)), t)
	return cat(ftyp(), moov, box("mdat", make([]byte, 16)))
}

func buildMoof(seq uint32, frags []FragSpec, datas [][]byte, offsets []int32) []byte {
	children := [][]byte{fullBox("mfhd", 0, 0, u32(seq))}
	for i, f := range frags {
		tfhd := fullBox("tfhd", 0, 0x020000, u32(f.TrackID))
		tfdt := fullBox("tfdt", 1, 0, u64(f.BaseTime))
		fields := [][]byte{u32(uint32(f.Samples)), u32(uint32(offsets[i]))}
		sizes := splitSizes(len(datas[i]), f.Samples)
		for s := range f.Samples {
			fields = append(fields, u32(f.SampleDuration), u32(sizes[s]))
		}
		trun := fullBox("trun", 0, 0x000001|0x000100|0x000200, fields...)
		children = append(children, box("traf", tfhd, tfdt, trun))
	}
	return box("moof", children...)
}

func sampleData(f FragSpec) []byte {
	if f.Data != nil {
		return f.Data
	}
	size := f.SampleSize
	if size == 0 {
		size = 4
	}
	return make([]byte, int(size)*f.Samples)
}

func splitSizes(total, samples int) []uint32 {
	sizes := make([]uint32, samples)
	if samples == 0 {
		return sizes
	}
	each := total / samples
	for i := range sizes {
		sizes[i] = uint32(each)
	}
	sizes[samples-1] += uint32(total - each*samples)
	return sizes
}

func trak(t TrackSpec) []byte {
	return trakWith(t, 0)
}

func trakWith(t TrackSpec, duration uint32, tables ...[]byte) []byte {
	tkhd := fullBox("tkhd", 0, 3,
		u32(0), u32(0), u32(t.ID), u32(0), u32(duration),
		make([]byte, 8),   // reserved
		make([]byte, 8),   // layer, alternate group, volume, reserved
		make([]byte, 36),  // matrix
		u32(uint32(t.Width)<<16), u32(uint32(t.Height)<<16),
	)
	mdhd := fullBox("mdhd", 0, 0, u32(0), u32(0), u32(t.Timescale), u32(duration), u16(0x55c4), u16(0))
	hdlr := fullBox("hdlr", 0, 0, u32(0), []byte(t.Handler), make([]byte, 12), []byte("handler\x00"))
	stsd := fullBox("stsd", 0, 0, u32(1), sampleEntry(t))
	stbl := box("stbl", append([][]byte{stsd}, tables...)...)
	return box("trak", tkhd, box("mdia", mdhd, hdlr, box("minf", stbl)))
}

func sampleEntry(t TrackSpec) []byte {
	size := 8 // generic SampleEntry: reserved + data reference index
	switch t.Handler {
	case "vide":
		size = 78
	case "soun":
		size = 28
	}
	return box(t.Codec, make([]byte, size))
}

func mvhd(timescale, duration uint32) []byte {
	return fullBox("mvhd", 0, 0,
		u32(0), u32(0), u32(timescale), u32(duration),
		u32(0x00010000), u16(0x0100), u16(0),
		make([]byte, 8),  // reserved
		make([]byte, 36), // matrix
		make([]byte, 24), // pre_defined
		u32(0xffffffff),
	)
}

func ftyp() []byte {
	return box("ftyp", []byte("iso6"), u32(0), []byte("iso6"), []byte("mp41"))
}

func box(typ string, payload ...[]byte) []byte {
	body := cat(payload...)
	out := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint32(out, uint32(8+len(body)))
	copy(out[4:], typ)
	return append(out, body...)
}

func fullBox(typ string, version uint8, flags uint32, fields ...[]byte) []byte {
	header := []byte{version, byte(flags >> 16), byte(flags >> 8), byte(flags)}
	return box(typ, append([][]byte{header}, fields...)...)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func u16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func u64(v uint64) []byte { return binary.BigEndian.AppendUint64(nil, v) }
