package feeder

import (
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
)

// Player is a data player whose seeks go through its Feeder. Front ends
// drive it like any player.Interface.
type Player struct {
	*player.DataPlayer
	feeder *Feeder
}

var _ player.Interface = (*Player)(nil)

// NewPlayer returns a Player seeking through f. f must feed p.
func NewPlayer(p *player.DataPlayer, f *Feeder) *Player {
	return &Player{DataPlayer: p, feeder: f}
}

// Feeder returns the feeder of p.
func (p *Player) Feeder() *Feeder { return p.feeder }

func (p *Player) Seek(t mediatime.Time) {
	p.feeder.Seek(t, nil)
}

func (p *Player) SeekWithCompletion(t mediatime.Time, done func(finished bool)) {
	p.feeder.Seek(t, done)
}

func (p *Player) SeekWithTolerance(t, tolerance mediatime.Time) {
	p.feeder.SeekWithTolerance(t, tolerance, nil)
}

func (p *Player) SeekWithToleranceCompletion(t, tolerance mediatime.Time, done func(finished bool)) {
	p.feeder.SeekWithTolerance(t, tolerance, done)
}
