package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/notify"
	"github.com/llehouerou/vbplayer/internal/state"
	"github.com/llehouerou/vbplayer/internal/ui/render"
)

const stateTimeout = 2 * time.Second

// startHistory opens the history entry once the player is ready and asks
// for the saved position.
func (m *Model) startHistory() tea.Cmd {
	if m.started || m.StateMgr == nil {
		return nil
	}
	m.started = true

	e := state.HistoryEntry{
		CDN:       m.Session.CDN,
		Title:     notify.Title(m.Player, m.Session.CDN),
		StartedAt: time.Now(),
	}
	if id, ok := m.Player.(Identified); ok {
		e.PlayerID = id.ID()
	}
	ctx, cancel := context.WithTimeout(context.Background(), stateTimeout)
	defer cancel()
	id, err := m.StateMgr.StartPlay(ctx, e)
	if err != nil {
		m.logger.Warn(errmsg.Format(errmsg.OpHistory, err))
	} else {
		m.historyID = id
	}

	if !m.Resume {
		return nil
	}
	return LoadResumeCmd(m.StateMgr, m.Session.CDN)
}

func (m *Model) endHistory(outcome state.Outcome, failure string) {
	if m.StateMgr == nil || m.historyID == 0 || m.ended {
		return
	}
	m.ended = true
	ctx, cancel := context.WithTimeout(context.Background(), stateTimeout)
	defer cancel()
	if err := m.StateMgr.EndPlay(ctx, m.historyID, outcome, failure); err != nil {
		m.logger.Warn(errmsg.Format(errmsg.OpHistory, err))
	}
}

func (m *Model) handleResumeLoaded(msg ResumeLoadedMsg) {
	if msg.Err != nil {
		m.logger.Warn(errmsg.Format(errmsg.OpResumeLoad, msg.Err))
		return
	}
	if msg.Resume == nil || !msg.Resume.Worth() {
		return
	}
	// Playback moved on while the lookup ran
	if m.Player.CurrentTime().After(mediatime.Make(1, 1)) {
		return
	}
	at := mediatime.FromDuration(msg.Resume.Position)
	m.Player.Seek(at)
	m.notice = "resumed at " + render.Clock(at)
	m.logger.Debug("resumed", "cdn", m.Session.CDN, "position", at.String())
}

// saveResume records the playhead. Saves are debounced by the manager.
func (m *Model) saveResume() {
	if !m.Resume || m.StateMgr == nil || !m.Player.Status().IsReady() || m.Player.Finished() {
		return
	}
	pos := m.Player.CurrentTime()
	if !pos.IsNumeric() {
		return
	}
	dur := time.Duration(-1)
	if d := m.Player.Duration(); d.IsNumeric() {
		dur = d.Duration()
	}
	m.StateMgr.SaveResume(state.Resume{
		CDN:      m.Session.CDN,
		Position: pos.Duration(),
		Duration: dur,
	})
}

func (m *Model) clearResume() {
	if m.StateMgr == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stateTimeout)
	defer cancel()
	if err := m.StateMgr.ClearResume(ctx, m.Session.CDN); err != nil {
		m.logger.Warn(errmsg.Format(errmsg.OpResumeSave, err))
	}
}

// quit saves where playback stopped and closes the history entry.
func (m *Model) quit() tea.Cmd {
	m.saveResume()
	m.endHistory(state.OutcomeStopped, "")
	if m.StateMgr != nil {
		ctx, cancel := context.WithTimeout(context.Background(), stateTimeout)
		defer cancel()
		if err := m.StateMgr.Flush(ctx); err != nil {
			m.logger.Warn(errmsg.Format(errmsg.OpResumeSave, err))
		}
	}
	if m.markObs != nil {
		m.markObs.Remove()
		m.markObs = nil
	}
	if m.surface != nil && m.surfaceSub != nil {
		m.surface.Unsubscribe(m.surfaceSub)
	}
	return tea.Quit
}
