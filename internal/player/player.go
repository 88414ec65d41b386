// Package player implements the player control surface: lifecycle status,
// rate, time base, seeking, stall and finish notifications, periodic time
// observers and display surface binding.
//
// Every player owns one loop goroutine that drives the playhead and talks to
// the engine. Public methods never block on the engine; outcomes arrive on
// the player's callback queue.
package player

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/config"
	"github.com/llehouerou/vbplayer/internal/display"
	"github.com/llehouerou/vbplayer/internal/dispatch"
	"github.com/llehouerou/vbplayer/internal/engine"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/source"
)

// Player plays content from a CDN identifier. See DataPlayer for the
// buffer-fed variant.
type Player struct {
	id      uuid.UUID
	logger  hclog.Logger
	cfg     config.EngineConfig
	queue   *dispatch.Queue
	engine  engine.Engine
	initErr error
	onSeek  func(mediatime.Time) // runs under mu before a seek is posted

	mu       sync.RWMutex
	status   Status
	media    engine.Media
	rate     float64
	wantRate float64 // requested before ready
	pos      mediatime.Time
	stalled  bool
	finished bool
	seeking  bool
	seekGen  uint64
	delegate Delegate
	binding  *display.Binding
	closed   bool

	kickCh   chan struct{}
	seekCh   chan seekRequest
	ctx      context.Context
	cancel   context.CancelFunc
	loopDone chan struct{}

	subsMu sync.Mutex
	subs   []*Subscription

	observers observerRegistry
}

type seekRequest struct {
	gen       uint64
	target    mediatime.Time
	tolerance mediatime.Time
	done      func(finished bool)
}

// New creates a player for the content named by cdn. settings is decoded
// with DecodeSettings; an undecodable map fails the player.
//
// The player starts in StatusUnknown and prepares asynchronously.
func New(cdn string, settings map[string]any, opts ...Option) *Player {
	o := buildOptions(opts)
	s, err := DecodeSettings(settings)
	if err != nil {
		return newPlayer(nil, o, err, nil)
	}
	if o.resolver == nil {
		o.resolver = source.NewResolver(o.logger.Named("source"))
	}
	eng := engine.NewStream(o.resolver, cdn, source.Options{EnablePDN: s.EnablePDN}, o.logger.Named("engine.stream"))
	p := newPlayer(eng, o, nil, nil)
	p.logger.Debug("player created", "cdn", cdn, "pdn", s.EnablePDN, "extra_settings", len(s.Extra))
	return p
}

// NewWithArgs creates a player from an argument string such as
// "cdn=file:///media/clip.mp4 enable_pdn=true". See ParseArgs.
func NewWithArgs(args string, opts ...Option) *Player {
	cdn, settings, err := ParseArgs(args)
	if err != nil {
		return newPlayer(nil, buildOptions(opts), err, nil)
	}
	return New(cdn, settings, opts...)
}

func newPlayer(eng engine.Engine, o options, initErr error, onSeek func(mediatime.Time)) *Player {
	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		id:       id,
		logger:   o.logger.Named("player").With("player", id.String()[:8]),
		cfg:      o.engine,
		queue:    o.queue,
		engine:   eng,
		initErr:  initErr,
		onSeek:   onSeek,
		status:   unknownStatus,
		pos:      mediatime.Zero,
		media:    engine.Media{Duration: mediatime.Indefinite},
		delegate: o.delegate,
		kickCh:   make(chan struct{}, 1),
		seekCh:   make(chan seekRequest, 1),
		ctx:      ctx,
		cancel:   cancel,
		loopDone: make(chan struct{}),
	}
	go p.run()
	return p
}

// ID returns a unique identifier of the instance, used in logs.
func (p *Player) ID() string { return p.id.String() }

// Status returns the lifecycle status.
func (p *Player) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Err returns the failure; it is non-nil exactly when the status is Failed.
func (p *Player) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.Err()
}

// Rate returns 1 while playing and 0 otherwise.
func (p *Player) Rate() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rate
}

// CurrentTime returns the playhead. Right after a seek call it is the
// requested target; once the seek completes it is the resolved position.
func (p *Player) CurrentTime() mediatime.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pos
}

// Duration returns the content duration, Indefinite until ready and for
// content without a known length.
func (p *Player) Duration() mediatime.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.media.Duration
}

// Media returns the prepared media description.
func (p *Player) Media() engine.Media {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.media
}

// Stalled reports whether playback waits for data.
func (p *Player) Stalled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stalled
}

// Finished reports whether playback reached the end of content. A seek
// clears it.
func (p *Player) Finished() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.finished
}

// Delegate returns the current delegate.
func (p *Player) Delegate() Delegate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.delegate
}

// SetDelegate replaces the delegate. Nil clears it.
func (p *Player) SetDelegate(d Delegate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delegate = d
}

// Queue returns the callback queue.
func (p *Player) Queue() *dispatch.Queue { return p.queue }

// Subscribe creates a new event subscription.
func (p *Player) Subscribe() *Subscription {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	sub := newSubscription()
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		sub.close()
		return sub
	}
	p.subs = append(p.subs, sub)
	return sub
}

// Close stops playback, releases the engine and closes subscriptions once
// pending notifications are delivered. Calls after Close are no-ops.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	binding := p.binding
	p.binding = nil
	p.mu.Unlock()

	p.cancel()
	<-p.loopDone

	var err error
	if p.engine != nil {
		err = p.engine.Close()
	}
	if binding != nil {
		binding.Detach()
	}
	p.observers.clear()

	closeSubs := func() {
		p.subsMu.Lock()
		defer p.subsMu.Unlock()
		for _, sub := range p.subs {
			sub.close()
		}
		p.subs = nil
	}
	if !p.queue.Async(closeSubs) {
		closeSubs()
	}
	p.logger.Debug("player closed")
	return err
}

// fail moves the player to Failed. It is a no-op once failed.
func (p *Player) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failLocked(err)
}

func (p *Player) failLocked(err error) {
	if !p.setStatusLocked(failedStatus(err)) {
		return
	}
	p.logger.Error("player failed", "error", err)
	p.stalled = false
	p.seeking = false
	p.setRateLocked(0)
}

func (p *Player) setStatusLocked(next Status) bool {
	cur, ok := p.status.advance(next)
	if !ok {
		return false
	}
	prev := p.status
	p.status = cur
	p.logger.Debug("status changed", "from", prev.Kind().String(), "to", cur.Kind().String())
	e := StatusChange{Previous: prev, Current: cur}
	p.queue.Async(func() {
		p.eachSub(func(s *Subscription) { s.sendStatus(e) })
	})
	return true
}

func (p *Player) setRateLocked(rate float64) {
	if rate == p.rate {
		return
	}
	e := RateChange{Previous: p.rate, Current: rate}
	p.rate = rate
	p.queue.Async(func() {
		p.eachSub(func(s *Subscription) { s.sendRate(e) })
	})
}

func (p *Player) setStalledLocked(stalled bool) {
	if stalled == p.stalled {
		return
	}
	p.stalled = stalled
	e := StallChange{Stalled: stalled, Time: p.pos}
	p.logger.Debug("stall changed", "stalled", stalled, "time", p.pos.Seconds())
	p.queue.Async(func() {
		if d := p.Delegate(); d != nil {
			if stalled {
				d.PlayerDidEnterStall(p)
			} else {
				d.PlayerDidExitStall(p)
			}
		}
		p.eachSub(func(s *Subscription) { s.sendStall(e) })
	})
}

func (p *Player) finishLocked() {
	if p.finished {
		return
	}
	p.finished = true
	p.wantRate = 0
	p.setRateLocked(0)
	at := p.pos
	p.logger.Info("playback finished", "time", at.Seconds())
	p.queue.Async(func() {
		if d := p.Delegate(); d != nil {
			d.PlayerDidFinish(p, at)
		}
		p.eachSub(func(s *Subscription) { s.sendFinished(FinishEvent{Time: at}) })
	})
}

func (p *Player) emitMetadata(samples []engine.Metadata) {
	for _, m := range samples {
		e := MetadataEvent{Time: m.Time, Data: m.Data}
		p.queue.Async(func() {
			p.eachSub(func(s *Subscription) { s.sendMetadata(e) })
		})
	}
}

func (p *Player) eachSub(fn func(*Subscription)) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	for _, s := range p.subs {
		fn(s)
	}
}

// kick wakes the loop to re-evaluate playback state.
func (p *Player) kick() {
	select {
	case p.kickCh <- struct{}{}:
	default:
	}
}

// wrapErr returns err as a domain error.
func wrapErr(op errmsg.Op, code errmsg.Code, err error) error {
	if errmsg.CodeOf(err) != errmsg.CodeUnknown {
		return err
	}
	return errmsg.New(op, code, err)
}
