// Package display provides the surface a player presents frames to.
//
// A Surface renders nothing itself. It tracks whether the bound player has
// produced a displayable frame and the geometry of that frame.
package display

import (
	"image"
	"sync"
)

const changeBufferSize = 16

// Change is emitted when readiness or geometry changes.
type Change struct {
	Ready bool
	Rect  image.Rectangle
}

// Surface is a render target bound to at most one player at a time.
type Surface struct {
	mu      sync.Mutex
	ready   bool
	rect    image.Rectangle
	binding *Binding
	subs    []*Subscription
}

// NewSurface returns an unbound surface.
func NewSurface() *Surface {
	return &Surface{}
}

// ReadyForDisplay reports whether the bound player has a frame to show.
func (s *Surface) ReadyForDisplay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// DisplayRect returns the rectangle of the decoded frame. It is empty
// until the surface is ready.
func (s *Surface) DisplayRect() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rect
}

// Bound reports whether a binding is attached.
func (s *Surface) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binding != nil
}

// Attach binds the surface to a new producer. The previous binding, if
// any, is detached and readiness is reset.
func (s *Surface) Attach() *Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &Binding{surface: s}
	s.binding = b
	s.setLocked(false, image.Rectangle{})
	return b
}

// Subscribe returns a subscription receiving readiness changes.
func (s *Surface) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &Subscription{
		ch:     make(chan Change, changeBufferSize),
		doneCh: make(chan struct{}),
	}
	sub.Changes = sub.ch
	sub.Done = sub.doneCh
	s.subs = append(s.subs, sub)
	return sub
}

// Unsubscribe stops delivery to sub and closes its Done channel.
func (s *Surface) Unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.subs {
		if cur == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			close(sub.doneCh)
			return
		}
	}
}

func (s *Surface) setLocked(ready bool, rect image.Rectangle) {
	if !ready {
		rect = image.Rectangle{}
	}
	if s.ready == ready && s.rect == rect {
		return
	}
	s.ready = ready
	s.rect = rect
	c := Change{Ready: ready, Rect: rect}
	for _, sub := range s.subs {
		sub.send(c)
	}
}

// Binding is the producer side of an attachment. Once detached, or once
// the surface is attached elsewhere, its calls have no effect.
type Binding struct {
	surface *Surface
}

// Present marks the surface ready with the given frame rectangle.
func (b *Binding) Present(rect image.Rectangle) {
	s := b.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return
	}
	s.setLocked(!rect.Empty(), rect)
}

// Reset marks the surface not ready.
func (b *Binding) Reset() {
	s := b.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return
	}
	s.setLocked(false, image.Rectangle{})
}

// Detach unbinds the surface and resets its readiness.
func (b *Binding) Detach() {
	s := b.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return
	}
	s.binding = nil
	s.setLocked(false, image.Rectangle{})
}

// Active reports whether b is still the surface's binding.
func (b *Binding) Active() bool {
	s := b.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binding == b
}

// Surface returns the bound surface.
func (b *Binding) Surface() *Surface { return b.surface }

// Subscription delivers surface changes.
type Subscription struct {
	Changes <-chan Change
	Done    <-chan struct{}

	ch     chan Change
	doneCh chan struct{}
}

// send is non-blocking; changes are dropped when the buffer is full.
func (sub *Subscription) send(c Change) {
	select {
	case sub.ch <- c:
	default:
	}
}
