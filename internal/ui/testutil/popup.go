package testutil

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/vbplayer/internal/ui/popup"
)

// PopupHarness feeds key messages to a popup and keeps the commands it
// returns.
type PopupHarness struct {
	popup popup.Popup
	cmds  []tea.Cmd
}

// NewPopupHarness initializes p and keeps its init command.
func NewPopupHarness(p popup.Popup) *PopupHarness {
	h := &PopupHarness{popup: p}
	h.keep(p.Init())
	return h
}

func (h *PopupHarness) keep(cmd tea.Cmd) {
	if cmd != nil {
		h.cmds = append(h.cmds, cmd)
	}
}

func (h *PopupHarness) Popup() popup.Popup { return h.popup }

// View is the popup content without escape sequences.
func (h *PopupHarness) View() string { return StripANSI(h.popup.View()) }

// Send delivers msg and returns the resulting command.
func (h *PopupHarness) Send(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.popup, cmd = h.popup.Update(msg)
	h.keep(cmd)
	return cmd
}

// Type sends each rune of s as its own key press.
func (h *PopupHarness) Type(s string) {
	for _, r := range s {
		h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// Press sends a key press: a special key type such as tea.KeyEnter.
func (h *PopupHarness) Press(k tea.KeyType) tea.Cmd {
	return h.Send(tea.KeyMsg{Type: k})
}

func (h *PopupHarness) Commands() []tea.Cmd { return h.cmds }

// LastMsg runs the most recent command. Batches are not expanded.
func (h *PopupHarness) LastMsg() tea.Msg {
	if len(h.cmds) == 0 {
		return nil
	}
	return h.cmds[len(h.cmds)-1]()
}

// Reset forgets the collected commands.
func (h *PopupHarness) Reset() { h.cmds = nil }
