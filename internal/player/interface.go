package player

import (
	"github.com/llehouerou/vbplayer/internal/engine"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Interface is the control surface used by front ends (TUI, MPRIS).
type Interface interface {
	Play()
	Pause()
	Toggle()
	SetRate(r float64)
	Seek(t mediatime.Time)
	SeekWithCompletion(t mediatime.Time, done func(finished bool))
	Status() Status
	Err() error
	Rate() float64
	CurrentTime() mediatime.Time
	Duration() mediatime.Time
	Media() engine.Media
	Stalled() bool
	Finished() bool
	Subscribe() *Subscription
}

// Verify Player implements Interface at compile time.
var (
	_ Interface = (*Player)(nil)
	_ Interface = (*DataPlayer)(nil)
)
