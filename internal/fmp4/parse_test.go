package fmp4

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/vbplayer/internal/fmp4/fmp4test"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

func TestParse_InitSegment(t *testing.T) {
	payload := fmp4test.Init(fmp4test.Video(1, 1280, 720), fmp4test.Audio(2))

	seg, err := Parse(payload, nil)
	require.NoError(t, err)
	require.NotNil(t, seg.Init)
	assert.Empty(t, seg.Fragments)

	require.Len(t, seg.Init.Tracks, 2)
	video, ok := seg.Init.Track(1)
	require.True(t, ok)
	assert.Equal(t, KindVideo, video.Kind)
	assert.Equal(t, "avc1", video.Codec)
	assert.Equal(t, uint32(90000), video.Timescale)
	assert.Equal(t, image.Rect(0, 0, 1280, 720), video.Rect())

	audio, ok := seg.Init.Track(2)
	require.True(t, ok)
	assert.Equal(t, KindAudio, audio.Kind)
	assert.Equal(t, "mp4a", audio.Codec)
	assert.Equal(t, uint32(48000), audio.Timescale)

	assert.Equal(t, []Kind{KindVideo, KindAudio}, seg.Init.Kinds())
}

func TestParse_MediaSegmentAgainstKnownInit(t *testing.T) {
	init, err := Parse(fmp4test.Init(fmp4test.Video(1, 640, 360), fmp4test.Audio(2)), nil)
	require.NoError(t, err)

	payload := fmp4test.Segment(1,
		fmp4test.FragSpec{TrackID: 1, BaseTime: 180000, Samples: 50, SampleDuration: 3600},
		fmp4test.FragSpec{TrackID: 2, BaseTime: 96000, Samples: 94, SampleDuration: 1024},
	)
	seg, err := Parse(payload, init.Init)
	require.NoError(t, err)
	assert.Nil(t, seg.Init)
	require.Len(t, seg.Fragments, 2)

	v := seg.Fragments[0]
	assert.Equal(t, KindVideo, v.Kind)
	assert.Equal(t, 50, v.Samples)
	assert.True(t, v.Start().Equal(mediatime.Make(2, 1)))
	assert.True(t, v.End().Equal(mediatime.Make(4, 1)))
	assert.Equal(t, 200, v.Size)
	assert.Nil(t, v.Data, "sample data is only kept for metadata tracks")

	a := seg.Fragments[1]
	assert.Equal(t, KindAudio, a.Kind)
	assert.True(t, a.Start().Equal(mediatime.Make(2, 1)))
	assert.InDelta(t, 2.0+94*1024/48000.0, a.End().Seconds(), 1e-9)
}

func TestParse_InitAndMediaInOnePayload(t *testing.T) {
	payload := append(fmp4test.Init(fmp4test.Audio(1)),
		fmp4test.Segment(1, fmp4test.FragSpec{TrackID: 1, Samples: 10, SampleDuration: 1024})...)

	seg, err := Parse(payload, nil)
	require.NoError(t, err)
	require.NotNil(t, seg.Init)
	require.Len(t, seg.Fragments, 1)
	assert.Equal(t, uint64(10240), seg.Fragments[0].Duration)
}

func TestParse_MetadataKeepsSampleData(t *testing.T) {
	init, err := Parse(fmp4test.Init(fmp4test.Metadata(3)), nil)
	require.NoError(t, err)

	payload := fmp4test.Segment(7, fmp4test.FragSpec{
		TrackID: 3, BaseTime: 1500, Samples: 1, SampleDuration: 0, Data: []byte("chapter-2"),
	})
	seg, err := Parse(payload, init.Init)
	require.NoError(t, err)
	require.Len(t, seg.Fragments, 1)
	assert.Equal(t, KindMetadata, seg.Fragments[0].Kind)
	assert.Equal(t, []byte("chapter-2"), seg.Fragments[0].Data)
	assert.True(t, seg.Fragments[0].Start().Equal(mediatime.Make(1500, 1000)))
}

func TestParse_UnknownTrack(t *testing.T) {
	init, err := Parse(fmp4test.Init(fmp4test.Audio(1)), nil)
	require.NoError(t, err)

	payload := fmp4test.Segment(1, fmp4test.FragSpec{TrackID: 9, Samples: 1, SampleDuration: 1024})
	_, err = Parse(payload, init.Init)
	assert.True(t, errors.Is(err, ErrUnknownTrack), "got %v", err)

	_, err = Parse(payload, nil)
	assert.True(t, errors.Is(err, ErrUnknownTrack), "got %v", err)
}

func TestParse_MoofWithoutMdat(t *testing.T) {
	init, err := Parse(fmp4test.Init(fmp4test.Audio(1)), nil)
	require.NoError(t, err)

	full := fmp4test.Segment(1, fmp4test.FragSpec{TrackID: 1, Samples: 4, SampleDuration: 1024})
	// Cut off the mdat box entirely: moof is everything before the last 8+16 bytes.
	moofOnly := full[:len(full)-(8+16)]
	_, err = Parse(moofOnly, init.Init)
	assert.True(t, errors.Is(err, ErrMissingMdat), "got %v", err)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse(nil, nil)
	assert.Error(t, err)

	_, err = Parse([]byte{0, 0, 0, 1, 'x'}, nil)
	assert.Error(t, err)
}

func TestProbe_ProgressiveKeyframes(t *testing.T) {
	// 300 samples of 3000 ticks at 90kHz = 10s; keyframes every 60 samples (2s).
	file := fmp4test.Progressive(fmp4test.Video(1, 1920, 1080), 300, 3000, []uint32{1, 61, 121, 181, 241})

	movie, err := Probe(bytes.NewReader(file))
	require.NoError(t, err)

	assert.True(t, movie.Duration.Equal(mediatime.Make(10, 1)), "duration = %v", movie.Duration)
	video, ok := movie.Video()
	require.True(t, ok)
	assert.Equal(t, 1920, video.Width)

	require.Len(t, movie.Keyframes, 5)
	for i, kf := range movie.Keyframes {
		assert.Truef(t, kf.Equal(mediatime.Make(int64(2*i), 1)), "keyframe %d = %v", i, kf)
	}
}

func TestProbe_NoMoov(t *testing.T) {
	_, err := Probe(bytes.NewReader(fmp4test.Segment(1)))
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "audio", KindAudio.String())
	assert.Equal(t, "video", KindVideo.String())
	assert.Equal(t, "metadata", KindMetadata.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
