package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/vbplayer/internal/keymap"
)

// keyResult is the outcome of a key handler.
type keyResult struct {
	handled bool
	cmd     tea.Cmd
}

var notHandled = keyResult{}

func handled(cmd tea.Cmd) keyResult {
	return keyResult{handled: true, cmd: cmd}
}

// chain runs handlers in order until one handles the key.
func chain(handlers ...func() keyResult) (bool, tea.Cmd) {
	for _, h := range handlers {
		if r := h(); r.handled {
			return true, r.cmd
		}
	}
	return false, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	_, cmd := chain(
		func() keyResult {
			if ok, cmd := m.Popups.HandleKey(msg); ok {
				return handled(cmd)
			}
			return notHandled
		},
		func() keyResult { return m.handleGlobalKeys(m.Keys.Resolve(msg.String())) },
		func() keyResult { return m.handlePlaybackKeys(m.Keys.Resolve(msg.String())) },
	)
	return cmd
}

func (m *Model) handleGlobalKeys(a keymap.Action) keyResult {
	switch a {
	case keymap.ActionQuit:
		return handled(m.quit())
	case keymap.ActionHelp:
		m.Popups.ShowHelp([]string{"global", "playback"})
		return handled(nil)
	}
	return notHandled
}
