package player

import (
	"runtime"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/vbplayer/internal/dispatch"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

func TestTimeObserver_FiresOnBoundariesAndRateChanges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		var calls atomic.Int32
		var times []mediatime.Time
		h := p.AddPeriodicTimeObserver(sec(1), nil, func(at mediatime.Time) {
			times = append(times, at)
			calls.Add(1)
		})
		require.True(t, h.Active())

		p.Play() // rate change
		time.Sleep(3500 * time.Millisecond)
		p.Pause() // rate change
		synctest.Wait()

		require.Equal(t, int32(5), calls.Load(), "times: %v", times)
		assert.True(t, times[0].IsZero())
		for i, want := range []float64{1, 2, 3} {
			assert.InDelta(t, want, times[i+1].Seconds(), 0.025)
		}
		runtime.KeepAlive(h)
	})
}

func TestTimeObserver_FiresAfterSeek(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		var last mediatime.Time
		var calls atomic.Int32
		h := p.AddPeriodicTimeObserver(sec(5), nil, func(at mediatime.Time) {
			last = at
			calls.Add(1)
		})

		p.Seek(ms(4200))
		synctest.Wait()
		assert.Equal(t, int32(1), calls.Load())
		assert.True(t, last.Equal(sec(4)), "reports the resolved time: %v", last)
		runtime.KeepAlive(h)
	})
}

func TestTimeObserver_OwnQueue(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		own := dispatch.NewQueue("observer")
		defer own.Close()
		var onOwn atomic.Int32
		h := p.AddPeriodicTimeObserver(sec(1), own, func(mediatime.Time) { onOwn.Add(1) })

		release := hold(p.Queue())
		p.Play()
		synctest.Wait()
		assert.Equal(t, int32(1), onOwn.Load(), "not blocked by the player queue")
		release()
		h.Remove()
	})
}

func TestTimeObserver_Remove(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		var removed, kept atomic.Int32
		h := p.AddPeriodicTimeObserver(ms(500), nil, func(mediatime.Time) { removed.Add(1) })
		other := p.AddPeriodicTimeObserver(ms(500), nil, func(mediatime.Time) { kept.Add(1) })

		p.Play()
		time.Sleep(time.Second)
		synctest.Wait()
		before := removed.Load()
		require.Positive(t, before)

		p.RemoveTimeObserver(h)
		p.RemoveTimeObserver(h)
		h.Remove()
		assert.False(t, h.Active())
		keptBefore := kept.Load()

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Equal(t, before, removed.Load(), "no invocations after removal")
		assert.Greater(t, kept.Load(), keptBefore, "other observers unaffected")
		assert.True(t, other.Active())
		runtime.KeepAlive(other)
	})
}

func TestTimeObserver_RemoveSuppressesQueuedInvocations(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, q := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		var calls atomic.Int32
		h := p.AddPeriodicTimeObserver(sec(1), nil, func(mediatime.Time) { calls.Add(1) })

		release := hold(q)
		p.Play()
		p.Seek(sec(3))
		synctest.Wait()
		h.Remove()
		release()
		synctest.Wait()

		assert.Zero(t, calls.Load())
	})
}

func TestTimeObserver_Inert(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()

		var calls atomic.Int32
		fn := func(mediatime.Time) { calls.Add(1) }
		handles := []*TimeObserver{
			p.AddPeriodicTimeObserver(mediatime.Zero, nil, fn),
			p.AddPeriodicTimeObserver(sec(-1), nil, fn),
			p.AddPeriodicTimeObserver(mediatime.Indefinite, nil, fn),
			p.AddPeriodicTimeObserver(mediatime.Invalid, nil, fn),
			p.AddPeriodicTimeObserver(sec(1), nil, nil),
		}
		for _, h := range handles {
			assert.False(t, h.Active())
		}

		p.Play()
		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Zero(t, calls.Load())
		for _, h := range handles {
			h.Remove()
		}
	})
}

func TestTimeObserver_UnreachableHandleStops(t *testing.T) {
	q := dispatch.NewQueue("test")
	defer q.Close()
	p := NewDataPlayer(WithQueue(q))
	defer p.Close()

	func() {
		_ = p.AddPeriodicTimeObserver(ms(100), nil, func(mediatime.Time) {})
	}()
	require.Len(t, p.observers.active(), 1)

	// Cleanups run on their own goroutine after a collection.
	assert.Eventually(t, func() bool {
		runtime.GC()
		return len(p.observers.active()) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTimeObserver_RemoveNil(t *testing.T) {
	var h *TimeObserver
	h.Remove()
	if h.Active() {
		t.Error("nil handle reported active")
	}
}

func TestTimeObserver_RemoveFromCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()
		own := dispatch.NewQueue("observer")
		defer own.Close()

		var calls atomic.Int32
		var h *TimeObserver
		h = p.AddPeriodicTimeObserver(sec(1), own, func(mediatime.Time) {
			calls.Add(1)
			h.Remove()
		})

		release := hold(own)
		p.Play()
		p.Seek(sec(3))
		synctest.Wait()
		release()
		time.Sleep(2 * time.Second)
		synctest.Wait()

		assert.Equal(t, int32(1), calls.Load(), "queued invocations after the removing one are dropped")
	})
}

func TestTimeObserver_RemoveOffQueueThenFlush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, &testSource{info: clip()})
		synctest.Wait()
		own := dispatch.NewQueue("observer")
		defer own.Close()

		var calls atomic.Int32
		inCall := make(chan struct{})
		unblock := make(chan struct{})
		h := p.AddPeriodicTimeObserver(sec(1), own, func(mediatime.Time) {
			if calls.Add(1) == 1 {
				close(inCall)
				<-unblock
			}
		})
		require.Same(t, own, h.Queue())

		p.Play()
		<-inCall
		h.Remove()
		close(unblock)
		h.Queue().Flush()
		after := calls.Load()

		time.Sleep(3 * time.Second)
		synctest.Wait()
		assert.Equal(t, after, calls.Load(), "nothing runs once the queue is flushed")
		assert.Equal(t, int32(1), after)
	})
}
