package player

import "github.com/llehouerou/vbplayer/internal/mediatime"

// Delegate receives the stall and finish callbacks of one player. All
// methods run on the player's callback queue, before the same event is
// broadcast to subscriptions.
type Delegate interface {
	PlayerDidEnterStall(p *Player)
	PlayerDidExitStall(p *Player)
	PlayerDidFinish(p *Player, at mediatime.Time)
}

// DelegateFuncs adapts optional functions to Delegate. Nil fields are
// skipped.
type DelegateFuncs struct {
	EnterStall func(p *Player)
	ExitStall  func(p *Player)
	Finish     func(p *Player, at mediatime.Time)
}

var _ Delegate = DelegateFuncs{}

func (d DelegateFuncs) PlayerDidEnterStall(p *Player) {
	if d.EnterStall != nil {
		d.EnterStall(p)
	}
}

func (d DelegateFuncs) PlayerDidExitStall(p *Player) {
	if d.ExitStall != nil {
		d.ExitStall(p)
	}
}

func (d DelegateFuncs) PlayerDidFinish(p *Player, at mediatime.Time) {
	if d.Finish != nil {
		d.Finish(p, at)
	}
}
