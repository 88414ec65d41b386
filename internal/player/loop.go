package player

import (
	"time"

	"github.com/llehouerou/vbplayer/internal/engine"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

type prepared struct {
	media engine.Media
	err   error
}

// run is the player loop. It owns the engine-facing side of the player:
// preparation, seek resolution and the playback clock.
func (p *Player) run() {
	defer close(p.loopDone)

	var (
		ticker  *time.Ticker
		tickC   <-chan time.Time
		last    time.Time
		seekCh  chan seekRequest // nil until ready
		readyCh = make(chan prepared, 1)
	)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	if p.initErr != nil {
		p.fail(wrapErr(errmsg.OpPrepare, errmsg.CodeInvalidArgument, p.initErr))
	} else {
		go func() {
			m, err := p.engine.Prepare(p.ctx)
			readyCh <- prepared{media: m, err: err}
		}()
	}

	for {
		select {
		case <-p.ctx.Done():
			return

		case r := <-readyCh:
			if p.handlePrepared(r) {
				seekCh = p.seekCh
			}

		case req := <-seekCh:
			p.handleSeek(req)
			last = time.Now()

		case <-p.kickCh:

		case now := <-tickC:
			p.advance(now.Sub(last))
			last = now
		}

		p.evaluate()

		playing := p.playing()
		switch {
		case playing && ticker == nil:
			ticker = time.NewTicker(p.cfg.TickInterval)
			tickC = ticker.C
			last = time.Now()
		case !playing && ticker != nil:
			// account for the time played since the last tick
			p.advance(time.Since(last))
			p.evaluate()
			ticker.Stop()
			ticker = nil
			tickC = nil
		}

		p.refreshDisplay()
	}
}

func (p *Player) handlePrepared(r prepared) bool {
	if r.err != nil {
		if p.ctx.Err() != nil {
			return false
		}
		p.fail(wrapErr(errmsg.OpPrepare, errmsg.CodeSourceUnavailable, r.err))
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.media = r.media
	if !p.setStatusLocked(readyStatus) {
		return false
	}
	p.logger.Info("ready to play",
		"title", r.media.Title,
		"duration", r.media.Duration.String(),
		"video", !r.media.Video.Empty(),
	)
	if p.wantRate != p.rate {
		p.setRateLocked(p.wantRate)
		p.observers.jumped(p.pos)
	}
	return true
}

func (p *Player) handleSeek(req seekRequest) {
	p.mu.Lock()
	stale := req.gen != p.seekGen || !p.status.IsReady()
	if !stale && req.target.IsPositiveInfinity() {
		// requested before the duration was known
		if p.media.Duration.IsNumeric() {
			req.target = engine.Clamp(req.target, p.media.Duration)
			p.moveToLocked(req.target)
		} else {
			p.seeking = false
			p.dropEndSeekLocked(req.done)
			stale = true
		}
	}
	p.mu.Unlock()
	if stale {
		return
	}

	resolved, err := p.engine.Seek(p.ctx, req.target, req.tolerance)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		p.fail(wrapErr(errmsg.OpSeek, errmsg.CodeDecode, err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if req.gen != p.seekGen || !p.status.IsReady() {
		return
	}
	p.pos = resolved
	p.seeking = false
	p.logger.Debug("seek completed", "target", req.target.Seconds(), "resolved", resolved.Seconds())

	if req.done != nil {
		gen := req.gen
		p.queue.Async(func() {
			p.mu.RLock()
			latest := gen == p.seekGen
			p.mu.RUnlock()
			if latest {
				req.done(true)
			}
		})
	}
	p.observers.jumped(resolved)
}

// advance moves the playhead forward by elapsed, up to the engine horizon.
func (p *Player) advance(elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.status.IsReady() || p.seeking || p.stalled || p.finished || elapsed <= 0 {
		return
	}

	pos := p.pos.Add(mediatime.FromDuration(elapsed))
	if horizon := p.engine.Horizon(); pos.After(horizon) {
		pos = mediatime.Max(horizon, p.pos)
	}
	p.pos = pos

	samples, err := p.engine.Advance(pos)
	if err != nil {
		p.failLocked(wrapErr(errmsg.OpDecode, errmsg.CodeDecode, err))
		return
	}
	p.emitMetadata(samples)
	p.observers.crossed(pos)
}

// evaluate enters or leaves the stall state and detects the end of
// content.
func (p *Player) evaluate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.status.IsReady() || p.seeking || p.finished {
		return
	}
	if p.rate == 0 {
		p.setStalledLocked(false)
		return
	}

	horizon := p.engine.Horizon()
	ended := p.engine.Ended()
	atEnd := !p.pos.Before(horizon)

	switch {
	case atEnd && ended:
		p.setStalledLocked(false)
		p.finishLocked()
		p.observers.jumped(p.pos)
	case atEnd:
		p.setStalledLocked(true)
	case p.stalled:
		threshold := mediatime.FromDuration(p.cfg.ResumeThreshold)
		if ended || !horizon.Sub(p.pos).Before(threshold) {
			p.setStalledLocked(false)
		}
	}
}

func (p *Player) playing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.IsReady() && p.rate > 0
}

func (p *Player) refreshDisplay() {
	p.mu.RLock()
	b := p.binding
	ready := p.status.IsReady()
	pos := p.pos
	p.mu.RUnlock()
	if b == nil || !ready {
		return
	}
	if rect, ok := p.engine.Frame(pos); ok {
		b.Present(rect)
	}
}
