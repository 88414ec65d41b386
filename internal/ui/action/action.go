// Package action is how popups report back to the vbplay model.
package action

import tea "github.com/charmbracelet/bubbletea"

// Action is the outcome of a popup. ActionType names it in logs.
type Action interface {
	ActionType() string
}

// Msg wraps an action with the name of the popup that produced it.
type Msg struct {
	Source string // "help", "seekprompt"
	Action Action
}

var _ tea.Msg = Msg{}

// Cmd returns a command delivering a from source.
func Cmd(source string, a Action) tea.Cmd {
	return func() tea.Msg {
		return Msg{Source: source, Action: a}
	}
}
