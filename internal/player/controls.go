package player

import (
	"math"

	"github.com/llehouerou/vbplayer/internal/engine"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Play sets the rate to 1. Before the player is ready the request is
// queued; after the end of content it is ignored until the next seek.
func (p *Player) Play() { p.SetRate(1) }

// Pause sets the rate to 0.
func (p *Player) Pause() { p.SetRate(0) }

// Toggle switches between playing and paused.
func (p *Player) Toggle() {
	p.mu.RLock()
	playing := p.rate > 0 || (!p.status.IsReady() && p.wantRate > 0)
	p.mu.RUnlock()
	if playing {
		p.Pause()
	} else {
		p.Play()
	}
}

// SetRate sets the playback rate. Rates are normalized: any positive rate
// plays at 1, anything else pauses.
func (p *Player) SetRate(r float64) {
	rate := normalizeRate(r)

	p.mu.Lock()
	if p.closed || p.status.IsFailed() {
		p.mu.Unlock()
		return
	}
	if !p.status.IsReady() {
		p.wantRate = rate
		p.mu.Unlock()
		return
	}
	if rate > 0 && p.finished {
		p.mu.Unlock()
		return
	}
	if rate != p.rate {
		p.setRateLocked(rate)
		p.observers.jumped(p.pos)
	}
	p.mu.Unlock()
	p.kick()
}

func normalizeRate(r float64) float64 {
	if math.IsNaN(r) || r <= 0 {
		return 0
	}
	return 1
}

// Seek moves the playhead to t, allowing the engine to land on the
// previous keyframe.
func (p *Player) Seek(t mediatime.Time) {
	p.SeekWithToleranceCompletion(t, mediatime.PositiveInfinity, nil)
}

// SeekWithTolerance moves the playhead to a position within
// [t-tolerance, t]. A zero tolerance seeks exactly.
func (p *Player) SeekWithTolerance(t, tolerance mediatime.Time) {
	p.SeekWithToleranceCompletion(t, tolerance, nil)
}

// SeekWithCompletion is Seek with a completion callback.
func (p *Player) SeekWithCompletion(t mediatime.Time, done func(finished bool)) {
	p.SeekWithToleranceCompletion(t, mediatime.PositiveInfinity, done)
}

// SeekWithToleranceCompletion seeks and calls done on the callback queue
// once the seek lands. Only the most recent seek completes: the
// completion of a seek superseded by a later one is never called.
//
// Non-blocking: the request replaces any seek still waiting for the loop.
func (p *Player) SeekWithToleranceCompletion(t, tolerance mediatime.Time, done func(finished bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.status.IsFailed() {
		return
	}
	if !t.IsNumeric() && !t.IsPositiveInfinity() {
		p.logger.Warn("ignoring seek to non-numeric time", "time", t.String())
		return
	}


	// The end is only known once prepared: a seek to +Inf before that
	// stays unresolved until the loop handles it.
	toEnd := t.IsPositiveInfinity()
	deferred := toEnd && !p.status.IsReady()
	if toEnd && !deferred && !p.media.Duration.IsNumeric() {
		p.dropEndSeekLocked(done)
		return
	}

	target := t
	if !deferred {
		target = engine.Clamp(t, p.media.Duration)
	}
	p.seekGen++
	req := seekRequest{gen: p.seekGen, target: target, tolerance: tolerance, done: done}

	p.seeking = true
	p.finished = false
	if !deferred {
		p.moveToLocked(target)
	}
	p.logger.Debug("seek requested", "target", target.String(), "tolerance", tolerance.String())

	// Drop the pending request, if any, and keep the latest.
	select {
	case p.seekCh <- req:
	default:
		select {
		case <-p.seekCh:
		default:
		}
		select {
		case p.seekCh <- req:
		default:
		}
	}
}

// moveToLocked reports target as the playhead and lets a data player
// discard what it buffered.
func (p *Player) moveToLocked(target mediatime.Time) {
	p.pos = target
	if p.onSeek != nil {
		p.onSeek(target)
	}
}

// dropEndSeekLocked abandons a seek to the end of content whose end is
// unknown (live or data fed). done, if any, reports an unfinished seek.
func (p *Player) dropEndSeekLocked(done func(finished bool)) {
	p.logger.Warn("ignoring seek to the end of content without a known duration")
	if done != nil {
		p.queue.Async(func() { done(false) })
	}
}
