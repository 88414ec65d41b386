package player

import (
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/llehouerou/vbplayer/internal/dispatch"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// TimeObserver is the handle of a periodic time observer. The observer is
// active only while the handle is reachable: keep it, and remove it when
// done.
type TimeObserver struct {
	entry    *observerEntry
	registry *observerRegistry
}

// Remove stops the observer. Invocations already queued but not yet
// delivered are suppressed. Calling Remove more than once is harmless.
//
// Called on the observer's queue, e.g. from the callback itself, Remove
// is exact: fn never runs again. Called from another goroutine it may
// race with an invocation being delivered right then; flush the queue
// after Remove to wait that one out.
func (h *TimeObserver) Remove() {
	if h == nil || h.entry == nil {
		return
	}
	h.entry.removed.Store(true)
	if h.registry != nil {
		h.registry.remove(h.entry)
	}
}

// Queue returns the queue the observer is delivered on.
func (h *TimeObserver) Queue() *dispatch.Queue {
	if h == nil || h.entry == nil {
		return nil
	}
	return h.entry.queue
}

// Active reports whether the observer can still fire.
func (h *TimeObserver) Active() bool {
	return h != nil && h.entry != nil && !h.entry.removed.Load()
}

// observerEntry must not reference its handle, or the handle would never
// become unreachable.
type observerEntry struct {
	interval mediatime.Time
	queue    *dispatch.Queue
	fn       func(mediatime.Time)
	removed  atomic.Bool
	step     atomic.Int64
}

func (e *observerEntry) fire(at mediatime.Time) {
	e.queue.Async(func() {
		if !e.removed.Load() {
			e.fn(at)
		}
	})
}

type observerRegistry struct {
	mu      sync.Mutex
	entries []*observerEntry
}

func (r *observerRegistry) add(e *observerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *observerRegistry) remove(e *observerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = slices.DeleteFunc(r.entries, func(cur *observerEntry) bool { return cur == e })
}

// active returns the live entries, dropping those removed by cleanup.
func (r *observerRegistry) active() []*observerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = slices.DeleteFunc(r.entries, func(e *observerEntry) bool { return e.removed.Load() })
	return slices.Clone(r.entries)
}

func (r *observerRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.removed.Store(true)
	}
	r.entries = nil
}

// crossed fires every observer whose interval boundary was passed since
// its last invocation.
func (r *observerRegistry) crossed(pos mediatime.Time) {
	for _, e := range r.active() {
		s := mediatime.Steps(pos, e.interval)
		if e.step.Swap(s) != s {
			e.fire(pos)
		}
	}
}

// jumped fires every observer once, after a seek or a rate change.
func (r *observerRegistry) jumped(pos mediatime.Time) {
	for _, e := range r.active() {
		e.step.Store(mediatime.Steps(pos, e.interval))
		e.fire(pos)
	}
}

// AddPeriodicTimeObserver calls fn on q each time playback crosses a
// multiple of interval, and once after each completed seek and each start
// or stop of playback. A nil q uses the player's callback queue. An
// interval that is not a positive number yields an inert observer.
//
// The observer lives as long as the returned handle is reachable.
func (p *Player) AddPeriodicTimeObserver(interval mediatime.Time, q *dispatch.Queue, fn func(mediatime.Time)) *TimeObserver {
	if q == nil {
		q = p.queue
	}
	e := &observerEntry{interval: interval, queue: q, fn: fn}
	h := &TimeObserver{entry: e}
	if fn == nil || !interval.IsNumeric() || !interval.After(mediatime.Zero) {
		e.removed.Store(true)
		return h
	}

	p.mu.RLock()
	closed := p.closed
	e.step.Store(mediatime.Steps(p.pos, interval))
	p.mu.RUnlock()
	if closed {
		e.removed.Store(true)
		return h
	}

	h.registry = &p.observers
	p.observers.add(e)
	runtime.AddCleanup(h, func(e *observerEntry) { e.removed.Store(true) }, e)
	return h
}

// RemoveTimeObserver stops the observer behind h. See TimeObserver.Remove.
func (p *Player) RemoveTimeObserver(h *TimeObserver) {
	h.Remove()
}
