package buffer

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/fmp4"
	"github.com/llehouerou/vbplayer/internal/fmp4/fmp4test"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

func seconds(s int64) mediatime.Time { return mediatime.Make(s, 1) }

// videoFrag covers [start, start+dur) seconds of the 90kHz track 1.
func videoFrag(start, dur int64) fmp4test.FragSpec {
	return fmp4test.FragSpec{TrackID: 1, BaseTime: uint64(start * 90000), Samples: int(dur * 25), SampleDuration: 3600}
}

// audioFrag covers [start, start+dur) seconds of the 48kHz track 2.
func audioFrag(start, dur int64) fmp4test.FragSpec {
	return fmp4test.FragSpec{TrackID: 2, BaseTime: uint64(start * 48000), Samples: int(dur * 50), SampleDuration: 960}
}

func newMuxed(t *testing.T) *Set {
	t.Helper()
	s := New(time.Millisecond)
	_, err := s.Append(fmp4test.Init(fmp4test.Video(1, 1280, 720), fmp4test.Audio(2)), CodingMP4)
	require.NoError(t, err)
	return s
}

func TestAppend_InitThenFragments(t *testing.T) {
	s := New(time.Millisecond)
	assert.False(t, s.Initialized())
	_, ok := s.Horizon()
	assert.False(t, ok)

	res, err := s.Append(fmp4test.Init(fmp4test.Video(1, 1280, 720), fmp4test.Audio(2)), CodingMP4)
	require.NoError(t, err)
	assert.True(t, res.Init)
	assert.Equal(t, []fmp4.Kind{fmp4.KindAudio, fmp4.KindVideo}, res.Kinds)
	assert.True(t, s.Initialized())

	h, ok := s.Horizon()
	require.True(t, ok)
	assert.True(t, h.IsZero())

	res, err = s.Append(fmp4test.Segment(1, videoFrag(0, 2), audioFrag(0, 2)), CodingMP4)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fragments)

	h, _ = s.Horizon()
	assert.True(t, h.Equal(seconds(2)), "horizon = %v", h)
	assert.True(t, s.Buffered(seconds(1)).Equal(seconds(1)))
	assert.True(t, s.Buffered(seconds(3)).IsZero(), "floored at zero")
}

func TestHorizon_MinOfAudioAndVideo(t *testing.T) {
	s := newMuxed(t)
	_, err := s.Append(fmp4test.Segment(1, videoFrag(0, 2), audioFrag(0, 2)), CodingMP4)
	require.NoError(t, err)

	// Audio only: the video horizon caps the buffered duration.
	_, err = s.Append(fmp4test.Segment(2, audioFrag(2, 2)), CodingMP4)
	require.NoError(t, err)
	_, err = s.Append(fmp4test.Segment(3, audioFrag(4, 2)), CodingMP4)
	require.NoError(t, err)

	h, _ := s.Horizon()
	assert.True(t, h.Equal(seconds(2)), "horizon = %v", h)
	audio, _ := s.Track(fmp4.KindAudio)
	assert.True(t, audio.End().Equal(seconds(6)))

	_, err = s.Append(fmp4test.Segment(4, videoFrag(2, 2)), CodingMP4)
	require.NoError(t, err)
	h, _ = s.Horizon()
	assert.True(t, h.Equal(seconds(4)), "horizon = %v", h)
}

func TestHorizon_IgnoresMetadata(t *testing.T) {
	s := New(time.Millisecond)
	_, err := s.Append(fmp4test.Init(fmp4test.Metadata(1)), CodingMetadata)
	require.NoError(t, err)
	_, ok := s.Horizon()
	assert.False(t, ok)

	_, err = s.Append(fmp4test.Init(fmp4test.Audio(2)), CodingMP4Audio)
	require.NoError(t, err)
	_, err = s.Append(fmp4test.Segment(1, audioFrag(0, 3)), CodingMP4Audio)
	require.NoError(t, err)
	h, ok := s.Horizon()
	require.True(t, ok)
	assert.True(t, h.Equal(seconds(3)))
}

func TestAppend_SeparateAudioAndVideoInits(t *testing.T) {
	// Both init segments use track ID 1; each coding keeps its own context.
	s := New(time.Millisecond)
	_, err := s.Append(fmp4test.Init(fmp4test.Video(1, 640, 360)), CodingMP4Video)
	require.NoError(t, err)
	_, err = s.Append(fmp4test.Init(fmp4test.Audio(1)), CodingMP4Audio)
	require.NoError(t, err)

	_, err = s.Append(fmp4test.Segment(1, fmp4test.FragSpec{TrackID: 1, Samples: 50, SampleDuration: 3600}), CodingMP4Video)
	require.NoError(t, err)
	_, err = s.Append(fmp4test.Segment(1, fmp4test.FragSpec{TrackID: 1, Samples: 50, SampleDuration: 960}), CodingMP4Audio)
	require.NoError(t, err)

	video, _ := s.Track(fmp4.KindVideo)
	audio, _ := s.Track(fmp4.KindAudio)
	assert.True(t, video.End().Equal(seconds(2)))
	assert.True(t, audio.End().Equal(seconds(1)))
	h, _ := s.Horizon()
	assert.True(t, h.Equal(seconds(1)))
}

func TestAppend_SingleKindFragmentsAfterMuxedInit(t *testing.T) {
	s := newMuxed(t)

	res, err := s.Append(fmp4test.Segment(1, audioFrag(0, 2)), CodingMP4Audio)
	require.NoError(t, err)
	assert.Equal(t, []fmp4.Kind{fmp4.KindAudio}, res.Kinds)
	_, err = s.Append(fmp4test.Segment(1, videoFrag(0, 1)), CodingMP4Video)
	require.NoError(t, err)

	audio, _ := s.Track(fmp4.KindAudio)
	video, _ := s.Track(fmp4.KindVideo)
	assert.True(t, audio.End().Equal(seconds(2)))
	assert.True(t, video.End().Equal(seconds(1)))
	h, _ := s.Horizon()
	assert.True(t, h.Equal(seconds(1)), "audio alone cannot move the horizon past video")

	// continuity still holds per track across codings
	_, err = s.Append(fmp4test.Segment(2, audioFrag(2, 1)), CodingMP4)
	require.NoError(t, err)
	_, err = s.Append(fmp4test.Segment(3, audioFrag(5, 1)), CodingMP4Audio)
	assert.ErrorIs(t, err, errmsg.ErrDiscontinuity)
}

func TestAppend_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, s *Set)
		payload []byte
		coding  Coding
		want    error
	}{
		{
			name:    "empty payload",
			payload: nil,
			coding:  CodingMP4,
			want:    errmsg.ErrMalformed,
		},
		{
			name:    "garbage",
			payload: []byte("definitely not mp4 data"),
			coding:  CodingMP4,
			want:    errmsg.ErrMalformed,
		},
		{
			name:    "fragment before init",
			payload: fmp4test.Segment(1, videoFrag(0, 1)),
			coding:  CodingMP4,
			want:    errmsg.ErrNoInit,
		},
		{
			name:    "video init under audio coding",
			payload: fmp4test.Init(fmp4test.Video(1, 10, 10)),
			coding:  CodingMP4Audio,
			want:    errmsg.ErrCodingMismatch,
		},
		{
			name:    "muxed init under video coding",
			payload: fmp4test.Init(fmp4test.Video(1, 10, 10), fmp4test.Audio(2)),
			coding:  CodingMP4Video,
			want:    errmsg.ErrCodingMismatch,
		},
		{
			name: "audio fragment with only a video track declared",
			setup: func(t *testing.T, s *Set) {
				_, err := s.Append(fmp4test.Init(fmp4test.Video(1, 10, 10)), CodingMP4)
				require.NoError(t, err)
			},
			payload: fmp4test.Segment(1, fmp4test.FragSpec{TrackID: 1, Samples: 1, SampleDuration: 960}),
			coding:  CodingMP4Audio,
			want:    errmsg.ErrNoInit,
		},
		{
			name: "audio coding borrows no video track",
			setup: func(t *testing.T, s *Set) {
				_, err := s.Append(fmp4test.Init(fmp4test.Video(1, 10, 10), fmp4test.Audio(2)), CodingMP4)
				require.NoError(t, err)
			},
			payload: fmp4test.Segment(1, videoFrag(0, 1)),
			coding:  CodingMP4Audio,
			want:    errmsg.ErrNoInit,
		},
		{
			name: "gap after previous fragment",
			setup: func(t *testing.T, s *Set) {
				_, err := s.Append(fmp4test.Init(fmp4test.Video(1, 10, 10), fmp4test.Audio(2)), CodingMP4)
				require.NoError(t, err)
				_, err = s.Append(fmp4test.Segment(1, videoFrag(0, 2)), CodingMP4)
				require.NoError(t, err)
			},
			payload: fmp4test.Segment(2, videoFrag(3, 1)),
			coding:  CodingMP4,
			want:    errmsg.ErrDiscontinuity,
		},
		{
			name: "overlap with previous fragment",
			setup: func(t *testing.T, s *Set) {
				_, err := s.Append(fmp4test.Init(fmp4test.Video(1, 10, 10), fmp4test.Audio(2)), CodingMP4)
				require.NoError(t, err)
				_, err = s.Append(fmp4test.Segment(1, videoFrag(0, 2)), CodingMP4)
				require.NoError(t, err)
			},
			payload: fmp4test.Segment(2, videoFrag(1, 2)),
			coding:  CodingMP4,
			want:    errmsg.ErrDiscontinuity,
		},
		{
			name: "after end of stream",
			setup: func(t *testing.T, s *Set) {
				_, err := s.Append(fmp4test.Init(fmp4test.Audio(2)), CodingMP4)
				require.NoError(t, err)
				s.EndOfStream()
			},
			payload: fmp4test.Segment(1, audioFrag(0, 1)),
			coding:  CodingMP4,
			want:    errmsg.ErrEndOfStream,
		},
		{
			name:    "unknown coding",
			payload: fmp4test.Init(fmp4test.Audio(1)),
			coding:  Coding(99),
			want:    errmsg.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(time.Millisecond)
			if tt.setup != nil {
				tt.setup(t, s)
			}
			before := s.String()
			bytesBefore := s.Bytes()

			_, err := s.Append(tt.payload, tt.coding)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)

			var domainErr *errmsg.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, errmsg.OpAppend, domainErr.Op)

			assert.Equal(t, before, s.String(), "rejected append must not change state")
			assert.Equal(t, bytesBefore, s.Bytes())
		})
	}
}

func TestAppend_RejectedPayloadCommitsNothing(t *testing.T) {
	s := newMuxed(t)
	_, err := s.Append(fmp4test.Segment(1, videoFrag(0, 2)), CodingMP4)
	require.NoError(t, err)

	// The audio fragment is fine, the video one is not: neither is kept.
	_, err = s.Append(fmp4test.Segment(2, audioFrag(0, 2), videoFrag(5, 1)), CodingMP4)
	require.True(t, errors.Is(err, errmsg.ErrDiscontinuity))

	audio, _ := s.Track(fmp4.KindAudio)
	assert.Empty(t, audio.Ranges())
	assert.True(t, audio.End().IsZero())
}

func TestAppend_ContinuityTolerance(t *testing.T) {
	s := New(50 * time.Millisecond)
	_, err := s.Append(fmp4test.Init(fmp4test.Audio(2)), CodingMP4Audio)
	require.NoError(t, err)
	_, err = s.Append(fmp4test.Segment(1, audioFrag(0, 1)), CodingMP4Audio)
	require.NoError(t, err)

	// 960 ticks = 20ms late: within tolerance.
	next := audioFrag(1, 1)
	next.BaseTime += 960
	_, err = s.Append(fmp4test.Segment(2, next), CodingMP4Audio)
	assert.NoError(t, err)
}

func TestAppend_FirstFragmentStartsAnywhere(t *testing.T) {
	s := newMuxed(t)
	_, err := s.Append(fmp4test.Segment(1, videoFrag(30, 2), audioFrag(30, 2)), CodingMP4)
	require.NoError(t, err)
	h, _ := s.Horizon()
	assert.True(t, h.Equal(seconds(32)))
}

func TestDiscard_ResetsContinuityAndEndOfStream(t *testing.T) {
	s := newMuxed(t)
	_, err := s.Append(fmp4test.Segment(1, videoFrag(0, 4), audioFrag(0, 4)), CodingMP4)
	require.NoError(t, err)
	s.EndOfStream()
	require.True(t, s.Ended())

	s.Discard(seconds(60))
	assert.False(t, s.Ended())
	assert.Zero(t, s.Bytes())
	assert.True(t, s.Buffered(seconds(60)).IsZero())
	h, _ := s.Horizon()
	assert.True(t, h.Equal(seconds(60)))

	// A fresh continuation at the new position is accepted.
	_, err = s.Append(fmp4test.Segment(2, videoFrag(60, 2), audioFrag(60, 2)), CodingMP4)
	require.NoError(t, err)
	assert.True(t, s.Buffered(seconds(60)).Equal(seconds(2)))
}

func TestRelease_DropsConsumedFragments(t *testing.T) {
	s := newMuxed(t)
	for i := range int64(3) {
		_, err := s.Append(fmp4test.Segment(uint32(i+1), videoFrag(2*i, 2)), CodingMP4)
		require.NoError(t, err)
	}
	s.Release(seconds(2))
	video, _ := s.Track(fmp4.KindVideo)
	require.Len(t, video.Ranges(), 2)
	assert.True(t, video.Ranges()[0].Start.Equal(seconds(2)))
	assert.True(t, video.End().Equal(seconds(6)), "release keeps the end")
}

func TestAppend_CodecChange(t *testing.T) {
	avc := fmp4test.Video(1, 640, 360)
	hevc := avc
	hevc.Codec = "hvc1"

	t.Run("with undrained data escalates", func(t *testing.T) {
		s := New(time.Millisecond)
		_, err := s.Append(fmp4test.Init(avc), CodingMP4Video)
		require.NoError(t, err)
		_, err = s.Append(fmp4test.Segment(1, videoFrag(0, 2)), CodingMP4Video)
		require.NoError(t, err)

		_, err = s.Append(fmp4test.Init(hevc), CodingMP4Video)
		assert.True(t, errors.Is(err, errmsg.ErrDecode), "got %v", err)
	})

	t.Run("after drain is accepted", func(t *testing.T) {
		s := New(time.Millisecond)
		_, err := s.Append(fmp4test.Init(avc), CodingMP4Video)
		require.NoError(t, err)
		_, err = s.Append(fmp4test.Segment(1, videoFrag(0, 2)), CodingMP4Video)
		require.NoError(t, err)
		s.Release(seconds(2))

		_, err = s.Append(fmp4test.Init(hevc), CodingMP4Video)
		require.NoError(t, err)
		video, _ := s.Track(fmp4.KindVideo)
		assert.Equal(t, "hvc1", video.Codec)
	})
}

func TestFrame(t *testing.T) {
	s := newMuxed(t)
	_, ok := s.Frame(mediatime.Zero)
	assert.False(t, ok, "no frame before video data")

	_, err := s.Append(fmp4test.Segment(1, videoFrag(0, 2)), CodingMP4)
	require.NoError(t, err)
	rect, ok := s.Frame(seconds(1))
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 1280, 720), rect)

	_, ok = s.Frame(seconds(2))
	assert.False(t, ok)
}

func TestTakeMetadata(t *testing.T) {
	s := New(time.Millisecond)
	_, err := s.Append(fmp4test.Init(fmp4test.Metadata(1)), CodingMetadata)
	require.NoError(t, err)
	_, err = s.Append(fmp4test.Segment(1,
		fmp4test.FragSpec{TrackID: 1, BaseTime: 0, Samples: 1, SampleDuration: 1000, Data: []byte("a")},
	), CodingMetadata)
	require.NoError(t, err)
	_, err = s.Append(fmp4test.Segment(2,
		fmp4test.FragSpec{TrackID: 1, BaseTime: 1000, Samples: 1, SampleDuration: 1000, Data: []byte("b")},
	), CodingMetadata)
	require.NoError(t, err)

	got := s.TakeMetadata(mediatime.Make(500, 1000))
	require.Len(t, got, 1)
	assert.Equal(t, []byte("a"), got[0].Data)
	assert.Empty(t, s.TakeMetadata(mediatime.Make(999, 1000)))

	got = s.TakeMetadata(seconds(1))
	require.Len(t, got, 1)
	assert.Equal(t, []byte("b"), got[0].Data)
	assert.True(t, got[0].Time.Equal(seconds(1)))
}

func TestCoding(t *testing.T) {
	assert.True(t, CodingMP4.Accepts(fmp4.KindAudio))
	assert.True(t, CodingMP4.Accepts(fmp4.KindMetadata))
	assert.False(t, CodingMP4.Accepts(fmp4.KindUnknown))
	assert.True(t, CodingMP4Audio.Accepts(fmp4.KindAudio))
	assert.False(t, CodingMP4Audio.Accepts(fmp4.KindVideo))
	assert.False(t, CodingMetadata.Accepts(fmp4.KindVideo))
	assert.Equal(t, "mp4-video", CodingMP4Video.String())
	assert.False(t, Coding(-1).Valid())
}
