package player

import (
	"context"
	"errors"
	"image"
	"math"
	"net/url"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/vbplayer/internal/display"
	"github.com/llehouerou/vbplayer/internal/dispatch"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/source"
)

func sec(s int64) mediatime.Time { return mediatime.Make(s, 1) }

func ms(v int64) mediatime.Time { return mediatime.Make(v, 1000) }

func secs(t mediatime.Time) float64 { return t.Seconds() }

// testSource serves the "test" scheme. When gate is set, Open blocks until
// it is closed.
type testSource struct {
	info  source.Info
	err   error
	gate  chan struct{}
	opens atomic.Int32
}

func (s *testSource) Open(ctx context.Context, _ *url.URL, _ source.Options) (source.Info, error) {
	s.opens.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return source.Info{}, ctx.Err()
		}
	}
	return s.info, s.err
}

// clip is ten seconds of 640x360 video with a keyframe every two seconds.
func clip() source.Info {
	return source.Info{
		Title:     "Clip",
		Duration:  sec(10),
		Keyframes: []mediatime.Time{sec(0), sec(2), sec(4), sec(6), sec(8)},
		Video:     image.Rect(0, 0, 640, 360),
		Codecs:    []string{"avc1"},
	}
}

// newTestPlayer must run inside a synctest bubble.
func newTestPlayer(t *testing.T, src *testSource, opts ...Option) (*Player, *dispatch.Queue) {
	t.Helper()
	q := dispatch.NewQueue("test")
	r := source.NewResolver(nil)
	r.Register("test", src)
	p := New("test://clip", nil, append([]Option{WithQueue(q), WithResolver(r)}, opts...)...)
	t.Cleanup(q.Close)
	t.Cleanup(func() { _ = p.Close() })
	return p, q
}

// hold blocks q until the returned function is called.
func hold(q *dispatch.Queue) (release func()) {
	ch := make(chan struct{})
	q.Async(func() { <-ch })
	return func() { close(ch) }
}

func drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestPlayer_UnknownThenReady(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &testSource{info: clip(), gate: make(chan struct{})}
		p, _ := newTestPlayer(t, src)
		sub := p.Subscribe()

		synctest.Wait()
		assert.Equal(t, StatusUnknown, p.Status().Kind())
		assert.NoError(t, p.Err())
		assert.True(t, p.Duration().IsIndefinite())

		close(src.gate)
		synctest.Wait()

		assert.Equal(t, StatusReadyToPlay, p.Status().Kind())
		assert.NoError(t, p.Err())
		assert.True(t, p.Duration().Equal(sec(10)))
		assert.Equal(t, "Clip", p.Media().Title)

		changes := drain(sub.StatusChanged)
		require.Len(t, changes, 1)
		assert.Equal(t, StatusUnknown, changes[0].Previous.Kind())
		assert.Equal(t, StatusReadyToPlay, changes[0].Current.Kind())
		assert.Equal(t, int32(1), src.opens.Load())
	})
}

func TestPlayer_PrepareFailureIsTerminal(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &testSource{err: errors.New("no route to edge")}
		p, _ := newTestPlayer(t, src)
		sub := p.Subscribe()
		synctest.Wait()

		require.Equal(t, StatusFailed, p.Status().Kind())
		err := p.Err()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errmsg.ErrSourceUnavailable), "got %v", err)

		p.Play()
		p.Seek(sec(3))
		p.SetRate(1)
		synctest.Wait()

		assert.Equal(t, StatusFailed, p.Status().Kind())
		assert.Same(t, err, p.Err(), "error stays constant")
		assert.Zero(t, p.Rate())
		assert.True(t, p.CurrentTime().IsZero(), "seek ignored after failure")
		assert.LessOrEqual(t, len(drain(sub.StatusChanged)), 1)
	})
}

func TestNew_InvalidConstruction(t *testing.T) {
	tests := []struct {
		name  string
		build func(q *dispatch.Queue) *Player
	}{
		{"undecodable settings", func(q *dispatch.Queue) *Player {
			return New("test://clip", map[string]any{EnablePDNKey: "sometimes"}, WithQueue(q))
		}},
		{"args without cdn", func(q *dispatch.Queue) *Player {
			return NewWithArgs("enable_pdn=true", WithQueue(q))
		}},
		{"unknown scheme", func(q *dispatch.Queue) *Player {
			return New("gopher://clip", nil, WithQueue(q))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				q := dispatch.NewQueue("test")
				defer q.Close()
				p := tt.build(q)
				defer p.Close()
				synctest.Wait()

				assert.Equal(t, StatusFailed, p.Status().Kind())
				assert.Error(t, p.Err())
			})
		})
	}
}

func TestNewWithArgs(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := dispatch.NewQueue("test")
		defer q.Close()
		r := source.NewResolver(nil)
		r.Register("test", &testSource{info: clip()})
		p := NewWithArgs("cdn=test://clip enable_pdn=true", WithQueue(q), WithResolver(r))
		defer p.Close()
		synctest.Wait()

		assert.Equal(t, StatusReadyToPlay, p.Status().Kind())
	})
}

func TestPlayer_PlayBeforeReadyIsQueued(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &testSource{info: clip(), gate: make(chan struct{})}
		p, _ := newTestPlayer(t, src)

		p.Play()
		synctest.Wait()
		assert.Zero(t, p.Rate(), "not ready yet")

		close(src.gate)
		synctest.Wait()
		assert.Equal(t, 1.0, p.Rate())
	})
}

func TestPlayer_SetRateNormalizes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		for _, tt := range []struct {
			in, want float64
		}{
			{2.5, 1}, {0.25, 1}, {-1, 0}, {1, 1}, {math.NaN(), 0}, {math.Inf(1), 1}, {0, 0},
		} {
			p.SetRate(tt.in)
			assert.Equal(t, tt.want, p.Rate(), "SetRate(%v)", tt.in)
		}
	})
}

func TestPlayer_PlaybackAdvancesAndFinishesOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var finishes atomic.Int32
		var finishedAt mediatime.Time
		d := DelegateFuncs{Finish: func(_ *Player, at mediatime.Time) {
			finishedAt = at
			finishes.Add(1)
		}}
		p, _ := newTestPlayer(t, &testSource{info: clip()}, WithDelegate(d))
		sub := p.Subscribe()
		synctest.Wait()

		p.Play()
		time.Sleep(4 * time.Second)
		synctest.Wait()
		pos := secs(p.CurrentTime())
		assert.InDelta(t, 4.0, pos, 0.05)
		assert.False(t, p.Finished())

		time.Sleep(7 * time.Second)
		synctest.Wait()
		assert.True(t, p.Finished())
		assert.Zero(t, p.Rate())
		assert.True(t, p.CurrentTime().Equal(sec(10)), "playhead stops at the end: %v", p.CurrentTime())
		assert.False(t, p.Stalled(), "end of content is not a stall")
		assert.Equal(t, int32(1), finishes.Load())
		assert.True(t, finishedAt.Equal(sec(10)))
		assert.Len(t, drain(sub.Finished), 1)

		// Play at the end is ignored until a seek.
		p.Play()
		time.Sleep(time.Second)
		synctest.Wait()
		assert.Zero(t, p.Rate())
		assert.Equal(t, int32(1), finishes.Load())

		p.SeekWithTolerance(sec(9), mediatime.Zero)
		assert.False(t, p.Finished(), "seek re-arms finish")
		p.Play()
		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Equal(t, int32(2), finishes.Load())
	})
}

func TestPlayer_ExactAndImpreciseSeek(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		p.SeekWithTolerance(ms(4500), mediatime.Zero)
		assert.True(t, p.CurrentTime().Equal(ms(4500)), "target reported before completion")
		synctest.Wait()
		assert.True(t, p.CurrentTime().Equal(ms(4500)), "exact seek: %v", p.CurrentTime())

		p.Seek(ms(7500))
		assert.True(t, p.CurrentTime().Equal(ms(7500)))
		synctest.Wait()
		assert.True(t, p.CurrentTime().Equal(sec(6)), "imprecise seek lands on keyframe: %v", p.CurrentTime())

		p.SeekWithTolerance(ms(7500), ms(1000))
		synctest.Wait()
		assert.True(t, p.CurrentTime().Equal(ms(7500)), "no keyframe within tolerance")

		p.SeekWithTolerance(sec(60), mediatime.Zero)
		synctest.Wait()
		assert.True(t, p.CurrentTime().Equal(sec(10)), "clamped to duration")

		p.SeekWithTolerance(sec(-4), mediatime.Zero)
		synctest.Wait()
		assert.True(t, p.CurrentTime().IsZero(), "clamped to zero")

		p.Seek(mediatime.Invalid)
		synctest.Wait()
		assert.True(t, p.CurrentTime().IsZero(), "invalid target ignored")
	})
}

func TestPlayer_OnlyLatestSeekCompletes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, q := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		var first, second atomic.Int32
		var secondFinished bool
		release := hold(q)
		p.SeekWithCompletion(sec(3), func(bool) { first.Add(1) })
		synctest.Wait()
		p.SeekWithCompletion(sec(7), func(finished bool) {
			secondFinished = finished
			second.Add(1)
		})
		release()
		synctest.Wait()

		assert.Zero(t, first.Load(), "superseded completion dropped")
		assert.Equal(t, int32(1), second.Load())
		assert.True(t, secondFinished)
		assert.True(t, p.CurrentTime().Equal(sec(6)))
	})
}

func TestPlayer_SeekBeforeReady(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &testSource{info: clip(), gate: make(chan struct{})}
		p, _ := newTestPlayer(t, src)

		var done atomic.Int32
		p.SeekWithToleranceCompletion(sec(3), mediatime.Zero, func(bool) { done.Add(1) })
		synctest.Wait()
		assert.True(t, p.CurrentTime().Equal(sec(3)))
		assert.Zero(t, done.Load())

		close(src.gate)
		synctest.Wait()
		assert.Equal(t, int32(1), done.Load())
		assert.True(t, p.CurrentTime().Equal(sec(3)))
	})
}

func TestPlayer_SeekWhilePlaying(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		p.Play()
		time.Sleep(time.Second)
		p.SeekWithTolerance(sec(5), mediatime.Zero)
		synctest.Wait()
		assert.True(t, p.CurrentTime().Equal(sec(5)))

		time.Sleep(time.Second)
		synctest.Wait()
		assert.InDelta(t, 6.0, secs(p.CurrentTime()), 0.05)
		assert.Equal(t, 1.0, p.Rate(), "seek keeps the rate")
	})
}

func TestPlayer_DelegateReplaceAndClear(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var a, b atomic.Int32
		p, _ := newTestPlayer(t, &testSource{info: clip()},
			WithDelegate(DelegateFuncs{Finish: func(*Player, mediatime.Time) { a.Add(1) }}))
		synctest.Wait()

		p.SetDelegate(DelegateFuncs{Finish: func(*Player, mediatime.Time) { b.Add(1) }})
		p.SeekWithTolerance(ms(9900), mediatime.Zero)
		p.Play()
		time.Sleep(time.Second)
		synctest.Wait()
		assert.Zero(t, a.Load())
		assert.Equal(t, int32(1), b.Load())

		p.SetDelegate(nil)
		assert.Nil(t, p.Delegate())
		p.SeekWithTolerance(ms(9900), mediatime.Zero)
		p.Play()
		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, int32(1), b.Load())
		assert.True(t, p.Finished())
	})
}

func TestPlayer_Close(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		sub := p.Subscribe()
		synctest.Wait()

		require.NoError(t, p.Close())
		require.NoError(t, p.Close())
		synctest.Wait()

		select {
		case <-sub.Done:
		default:
			t.Fatal("subscription not closed")
		}

		late := p.Subscribe()
		select {
		case <-late.Done:
		default:
			t.Fatal("subscription after close is open")
		}

		p.Play()
		p.Seek(sec(4))
		assert.Zero(t, p.Rate())
		assert.True(t, p.CurrentTime().IsZero())
	})
}

func TestPlayer_DisplaySurface(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &testSource{info: clip(), gate: make(chan struct{})}
		p, _ := newTestPlayer(t, src)

		s := display.NewSurface()
		p.SetDisplaySurface(s)
		synctest.Wait()
		assert.Same(t, s, p.DisplaySurface())
		assert.False(t, s.ReadyForDisplay(), "not ready before the player is")
		assert.True(t, s.DisplayRect().Empty())

		close(src.gate)
		synctest.Wait()
		assert.True(t, s.ReadyForDisplay())
		assert.Equal(t, image.Rect(0, 0, 640, 360), s.DisplayRect())

		// Rebinding to another player resets readiness until it has a frame.
		other, _ := newTestPlayer(t, &testSource{info: clip(), gate: make(chan struct{})})
		other.SetDisplaySurface(s)
		synctest.Wait()
		assert.False(t, s.ReadyForDisplay())
		assert.Nil(t, p.DisplaySurface(), "previous player lost the surface")
		assert.Same(t, s, other.DisplaySurface())

		// The previous player can no longer touch it.
		p.Seek(sec(2))
		synctest.Wait()
		assert.False(t, s.ReadyForDisplay())

		other.SetDisplaySurface(nil)
		assert.Nil(t, other.DisplaySurface())
		assert.False(t, s.Bound())
	})
}

func TestPlayer_AudioOnlyNeverReadyForDisplay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		info := clip()
		info.Video = image.Rectangle{}
		p, _ := newTestPlayer(t, &testSource{info: info})

		s := display.NewSurface()
		p.SetDisplaySurface(s)
		p.Play()
		time.Sleep(time.Second)
		synctest.Wait()

		assert.Equal(t, StatusReadyToPlay, p.Status().Kind())
		assert.False(t, s.ReadyForDisplay())
	})
}

func TestPlayer_RateChangeEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		sub := p.Subscribe()
		synctest.Wait()

		p.Play()
		p.Play()
		p.Pause()
		synctest.Wait()

		changes := drain(sub.RateChanged)
		require.Len(t, changes, 2)
		assert.Equal(t, RateChange{Previous: 0, Current: 1}, changes[0])
		assert.Equal(t, RateChange{Previous: 1, Current: 0}, changes[1])
	})
}

func TestPlayer_Toggle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &testSource{info: clip(), gate: make(chan struct{})}
		p, _ := newTestPlayer(t, src)

		p.Toggle()
		close(src.gate)
		synctest.Wait()
		assert.Equal(t, 1.0, p.Rate(), "toggle before ready queues play")

		p.Toggle()
		assert.Zero(t, p.Rate())
	})
}

func TestPlayer_SeekToEndLandsOnLastKeyframe(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			p, _ := newTestPlayer(t, &testSource{info: clip()})
			synctest.Wait()

			p.Seek(mediatime.PositiveInfinity)
			assert.True(t, p.CurrentTime().Equal(sec(10)), "reports the clamped target: %v", p.CurrentTime())
			synctest.Wait()
			assert.True(t, p.CurrentTime().Equal(sec(8)), "at %v", p.CurrentTime())
		})
	})
	t.Run("before ready", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			src := &testSource{info: clip(), gate: make(chan struct{})}
			p, _ := newTestPlayer(t, src)

			var finished atomic.Bool
			p.SeekWithCompletion(mediatime.PositiveInfinity, func(f bool) { finished.Store(f) })
			synctest.Wait()
			assert.True(t, p.CurrentTime().IsZero(), "the end is not known yet")

			close(src.gate)
			synctest.Wait()
			assert.True(t, finished.Load())
			assert.True(t, p.CurrentTime().Equal(sec(8)), "at %v", p.CurrentTime())
		})
	})
}

func TestPlayer_SeekToEndOfIndefiniteContentIgnored(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		live := clip()
		live.Duration = mediatime.Indefinite
		p, _ := newTestPlayer(t, &testSource{info: live})
		synctest.Wait()
		p.SeekWithTolerance(sec(3), mediatime.Zero)
		synctest.Wait()

		var calls atomic.Int32
		var finished atomic.Bool
		p.SeekWithCompletion(mediatime.PositiveInfinity, func(f bool) {
			calls.Add(1)
			finished.Store(f)
		})
		synctest.Wait()

		assert.True(t, p.CurrentTime().Equal(sec(3)), "at %v", p.CurrentTime())
		assert.Equal(t, int32(1), calls.Load())
		assert.False(t, finished.Load())
	})
}
