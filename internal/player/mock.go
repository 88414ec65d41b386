package player

import (
	"sync"

	"github.com/llehouerou/vbplayer/internal/engine"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Mock is a test double for Player. Events are delivered synchronously to
// its subscriptions.
type Mock struct {
	mu        sync.Mutex
	status    Status
	rate      float64
	position  mediatime.Time
	media     engine.Media
	stalled   bool
	finished  bool
	seekCalls []mediatime.Time
	rateCalls []float64
	subs      []*Subscription
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		status:   unknownStatus,
		position: mediatime.Zero,
		media:    engine.Media{Duration: mediatime.Indefinite},
	}
}

func (m *Mock) Play()  { m.SetRate(1) }
func (m *Mock) Pause() { m.SetRate(0) }

func (m *Mock) Toggle() {
	if m.Rate() > 0 {
		m.Pause()
	} else {
		m.Play()
	}
}

func (m *Mock) SetRate(r float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rate := normalizeRate(r)
	m.rateCalls = append(m.rateCalls, rate)
	if rate == m.rate {
		return
	}
	e := RateChange{Previous: m.rate, Current: rate}
	m.rate = rate
	for _, s := range m.subs {
		s.sendRate(e)
	}
}

func (m *Mock) Seek(t mediatime.Time) { m.SeekWithCompletion(t, nil) }

func (m *Mock) SeekWithCompletion(t mediatime.Time, done func(finished bool)) {
	m.mu.Lock()
	m.seekCalls = append(m.seekCalls, t)
	m.position = t
	m.finished = false
	m.mu.Unlock()
	if done != nil {
		done(true)
	}
}

func (m *Mock) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mock) Err() error { return m.Status().Err() }

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) CurrentTime() mediatime.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() mediatime.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.media.Duration
}

func (m *Mock) Media() engine.Media {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.media
}

func (m *Mock) Stalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stalled
}

func (m *Mock) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished
}

func (m *Mock) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newSubscription()
	m.subs = append(m.subs, s)
	return s
}

// Test helpers

func (m *Mock) SeekCalls() []mediatime.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mediatime.Time(nil), m.seekCalls...)
}

func (m *Mock) RateCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.rateCalls...)
}

func (m *Mock) SetMedia(media engine.Media) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.media = media
}

func (m *Mock) SetPosition(t mediatime.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = t
}

// SimulateReady moves the mock to ReadyToPlay.
func (m *Mock) SimulateReady() { m.simulateStatus(readyStatus) }

// SimulateFailure moves the mock to Failed with err.
func (m *Mock) SimulateFailure(err error) { m.simulateStatus(failedStatus(err)) }

func (m *Mock) simulateStatus(next Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.status.advance(next)
	if !ok {
		return
	}
	e := StatusChange{Previous: m.status, Current: cur}
	m.status = cur
	for _, s := range m.subs {
		s.sendStatus(e)
	}
}

// SimulateStall enters or leaves a stall.
func (m *Mock) SimulateStall(stalled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stalled == stalled {
		return
	}
	m.stalled = stalled
	for _, s := range m.subs {
		s.sendStall(StallChange{Stalled: stalled, Time: m.position})
	}
}

// SimulateFinished simulates the end of content.
func (m *Mock) SimulateFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = true
	m.rate = 0
	for _, s := range m.subs {
		s.sendFinished(FinishEvent{Time: m.position})
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
