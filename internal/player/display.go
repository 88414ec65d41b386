package player

import "github.com/llehouerou/vbplayer/internal/display"

// SetDisplaySurface binds the player to s, detaching the previous surface.
// Nil unbinds. The surface becomes ready for display once the player is
// ready and a video frame is available at the playhead.
func (p *Player) SetDisplaySurface(s *display.Surface) {
	p.mu.Lock()
	old := p.binding
	p.binding = nil
	if s != nil && !p.closed {
		p.binding = s.Attach()
	}
	p.mu.Unlock()

	if old != nil {
		old.Detach() // no-op when s took over the same surface
	}
	p.kick()
}

// DisplaySurface returns the bound surface, or nil.
func (p *Player) DisplaySurface() *display.Surface {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.binding == nil || !p.binding.Active() {
		return nil
	}
	return p.binding.Surface()
}
