package app

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/notify"
	"github.com/llehouerou/vbplayer/internal/state"
	"github.com/llehouerou/vbplayer/internal/ui/action"
	"github.com/llehouerou/vbplayer/internal/ui/helpbindings"
	"github.com/llehouerou/vbplayer/internal/ui/seekprompt"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Popups.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case action.Msg:
		return m.handleAction(msg)

	case TickMsg:
		m.saveResume()
		return m, TickCmd()

	case StatusChangedMsg:
		return m.handleStatusChanged(msg)

	case StallChangedMsg:
		if msg.Stalled {
			m.logger.Debug("stalled", "time", msg.Time.String())
		}
		return m, WatchPlayerEvents(m.playerSub)

	case RateChangedMsg:
		return m, WatchPlayerEvents(m.playerSub)

	case FinishedMsg:
		m.logger.Info("finished", "cdn", m.Session.CDN, "time", msg.Time.String())
		m.clearResume()
		m.endHistory(state.OutcomeFinished, "")
		return m, WatchPlayerEvents(m.playerSub)

	case MetadataMsg:
		m.lastMeta = metadataText(msg.Data)
		return m, WatchPlayerEvents(m.playerSub)

	case PlayerClosedMsg:
		return m, nil

	case SurfaceChangedMsg:
		m.frame.Ready = msg.Ready
		m.frame.Rect = msg.Rect
		return m, WatchSurface(m.surfaceSub)

	case MarkerMsg:
		m.addMark(mediatime.Time(msg))
		return m, WatchMarkers(m.markCh)

	case FeedErrorMsg:
		m.feedErr = msg.Err.Error()
		m.logger.Error(errmsg.Format(errmsg.OpFeed, msg.Err))
		return m, nil

	case ResumeLoadedMsg:
		m.handleResumeLoaded(msg)
		return m, nil
	}

	cmd := m.Popups.Update(msg)
	return m, cmd
}

func (m Model) handleStatusChanged(msg StatusChangedMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{WatchPlayerEvents(m.playerSub)}
	switch {
	case msg.Current.IsReady():
		m.logger.Info("ready", "cdn", m.Session.CDN, "duration", m.Player.Duration().String())
		cmds = append(cmds, m.startHistory())
	case msg.Current.IsFailed():
		err := msg.Current.Err()
		m.logger.Error("playback failed", "cdn", m.Session.CDN, "error", err)
		// A play that never got ready has no history entry yet.
		if !m.started && m.StateMgr != nil {
			m.startHistory()
		}
		m.endHistory(state.OutcomeFailed, notify.FailureBody(err))
		m.Popups.ShowError(notify.FailureBody(err))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleAction(msg action.Msg) (tea.Model, tea.Cmd) {
	switch a := msg.Action.(type) {
	case helpbindings.Close:
		m.Popups.HideHelp()
	case seekprompt.Result:
		return m, m.handleSeekResult(a)
	}
	return m, nil
}

// metadataText shows a metadata sample as text when it is printable.
func metadataText(data []byte) string {
	if !utf8.Valid(data) {
		return "binary metadata"
	}
	return strings.TrimSpace(string(data))
}
