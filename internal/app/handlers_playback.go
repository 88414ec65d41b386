package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/vbplayer/internal/keymap"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/ui/playerbar"
	"github.com/llehouerou/vbplayer/internal/ui/render"
	"github.com/llehouerou/vbplayer/internal/ui/seekprompt"
)

func (m *Model) handlePlaybackKeys(a keymap.Action) keyResult {
	switch a {
	case keymap.ActionPlayPause:
		m.Player.Toggle()
	case keymap.ActionStop:
		m.Player.Pause()
		m.Player.Seek(mediatime.Zero)
	case keymap.ActionSeekForward:
		m.seekBy(mediatime.Make(seekStep, 1))
	case keymap.ActionSeekBack:
		m.seekBy(mediatime.Make(-seekStep, 1))
	case keymap.ActionSeekForwardLong:
		m.seekBy(mediatime.Make(seekStepLong, 1))
	case keymap.ActionSeekBackLong:
		m.seekBy(mediatime.Make(-seekStepLong, 1))
	case keymap.ActionJumpStart:
		m.seekTo(mediatime.Zero)
	case keymap.ActionSeekPrompt:
		return handled(m.Popups.ShowSeekPrompt(m.Player.CurrentTime(), m.Player.Duration()))
	case keymap.ActionSeekExact:
		m.toggleExactSeeks()
	case keymap.ActionTogglePlayerDisplay:
		if m.DisplayMode == playerbar.ModeExpanded {
			m.DisplayMode = playerbar.ModeCompact
		} else {
			m.DisplayMode = playerbar.ModeExpanded
		}
	case keymap.ActionToggleSurface:
		m.toggleSurface()
	case keymap.ActionToggleMarkers:
		m.toggleMarkers()
	default:
		return notHandled
	}
	return handled(nil)
}

// seekBy seeks relative to the playhead, never before zero.
func (m *Model) seekBy(delta mediatime.Time) {
	cur := m.Player.CurrentTime()
	if !cur.IsNumeric() {
		return
	}
	m.seekTo(mediatime.Max(cur.Add(delta), mediatime.Zero))
}

func (m *Model) seekTo(t mediatime.Time) {
	if m.ExactSeeks {
		if ts, ok := m.Player.(ToleranceSeeker); ok {
			ts.SeekWithTolerance(t, mediatime.Zero)
			return
		}
	}
	m.Player.Seek(t)
}

func (m *Model) toggleExactSeeks() {
	if _, ok := m.Player.(ToleranceSeeker); !ok {
		m.notice = "exact seeks not supported"
		return
	}
	m.ExactSeeks = !m.ExactSeeks
	if m.ExactSeeks {
		m.notice = "exact seeks on"
	} else {
		m.notice = "exact seeks off"
	}
}

func (m *Model) toggleSurface() {
	s, ok := m.Player.(Surfacer)
	if !ok || m.surface == nil {
		m.notice = "no display surface"
		return
	}
	if s.DisplaySurface() != nil {
		s.SetDisplaySurface(nil)
		m.notice = "display detached"
		return
	}
	s.SetDisplaySurface(m.surface)
	m.notice = "display attached"
}

func (m *Model) toggleMarkers() {
	if m.markObs != nil {
		m.markObs.Remove()
		m.markObs = nil
		m.notice = "markers off"
		return
	}
	o, ok := m.Player.(Observable)
	if !ok {
		m.notice = "markers not supported"
		return
	}
	ch := m.markCh
	m.markObs = o.AddPeriodicTimeObserver(mediatime.Make(markInterval, 1), nil, func(t mediatime.Time) {
		select {
		case ch <- t:
		default:
		}
	})
	m.marks = nil
	m.notice = "markers every " + render.Clock(mediatime.Make(markInterval, 1))
}

func (m *Model) addMark(t mediatime.Time) {
	if m.markObs == nil {
		return
	}
	if n := len(m.marks); n > 0 && m.marks[n-1].Equal(t) {
		return
	}
	m.marks = append(m.marks, t)
	if len(m.marks) > maxMarks {
		m.marks = m.marks[len(m.marks)-maxMarks:]
	}
}

func (m *Model) handleSeekResult(r seekprompt.Result) tea.Cmd {
	m.Popups.HideSeekPrompt()
	if r.Canceled {
		return nil
	}
	at, ok := r.Target.Resolve(m.Player.CurrentTime(), m.Player.Duration())
	if !ok {
		m.notice = "cannot seek: duration unknown"
		return nil
	}
	m.seekTo(at)
	m.notice = "seek to " + render.Clock(at)
	return nil
}
