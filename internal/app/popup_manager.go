package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/vbplayer/internal/keymap"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/ui/helpbindings"
	"github.com/llehouerou/vbplayer/internal/ui/popup"
	"github.com/llehouerou/vbplayer/internal/ui/seekprompt"
)

// PopupType identifies a popup. Higher values draw over lower ones.
type PopupType int

const (
	PopupNone PopupType = iota
	PopupHelp
	PopupSeek
	PopupError
)

// PopupManager tracks which popups are open and routes input to the
// topmost one. Several may be open at once, e.g. a playback error raised
// while the seek prompt is up; closing the top one reveals the next.
type PopupManager struct {
	open popupSet

	help     helpbindings.Model
	seek     seekprompt.Model
	errorMsg string

	width, height int
}

type popupSet uint8

func (s popupSet) has(t PopupType) bool { return s&(1<<t) != 0 }

func (s *popupSet) set(t PopupType, on bool) {
	if on {
		*s |= 1 << t
	} else {
		*s &^= 1 << t
	}
}

func (s popupSet) top() PopupType {
	for t := PopupError; t > PopupNone; t-- {
		if s.has(t) {
			return t
		}
	}
	return PopupNone
}

func NewPopupManager(keys *keymap.Resolver) PopupManager {
	return PopupManager{
		help: helpbindings.New(keys),
		seek: seekprompt.New(),
	}
}

func (p *PopupManager) SetSize(width, height int) {
	p.width, p.height = width, height
	p.help.SetSize(width, height)
	p.seek.SetSize(width, height)
}

// ActivePopup returns the popup receiving input.
func (p *PopupManager) ActivePopup() PopupType { return p.open.top() }

// ShowHelp lists the bindings of contexts.
func (p *PopupManager) ShowHelp(contexts []string) {
	p.help.SetContexts(contexts)
	p.help.SetSize(p.width, p.height)
	p.open.set(PopupHelp, true)
}

func (p *PopupManager) HideHelp() { p.open.set(PopupHelp, false) }

// ShowSeekPrompt opens the seek prompt for content at position.
func (p *PopupManager) ShowSeekPrompt(position, duration mediatime.Time) tea.Cmd {
	p.open.set(PopupSeek, true)
	return p.seek.Start(position, duration, p.width, p.height)
}

func (p *PopupManager) HideSeekPrompt() { p.open.set(PopupSeek, false) }

// ShowError raises the error dialog over anything else.
func (p *PopupManager) ShowError(msg string) {
	p.errorMsg = msg
	p.open.set(PopupError, msg != "")
}

func (p *PopupManager) HideError() { p.ShowError("") }

func (p *PopupManager) ErrorMsg() string { return p.errorMsg }

// HandleKey gives msg to the topmost popup. It reports false when no popup
// is open.
func (p *PopupManager) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	var cmd tea.Cmd
	switch p.ActivePopup() {
	case PopupNone:
		return false, nil
	case PopupError:
		p.HideError() // any key
	case PopupSeek:
		_, cmd = p.seek.Update(msg)
	case PopupHelp:
		_, cmd = p.help.Update(msg)
	}
	return true, cmd
}

// Update forwards non-key messages, such as the cursor blink, to the seek
// prompt while it is open.
func (p *PopupManager) Update(msg tea.Msg) tea.Cmd {
	if !p.open.has(PopupSeek) {
		return nil
	}
	_, cmd := p.seek.Update(msg)
	return cmd
}

// RenderOverlay composes the topmost popup over base.
func (p *PopupManager) RenderOverlay(base string) string {
	var view string
	switch p.ActivePopup() {
	case PopupNone:
		return base
	case PopupError:
		d := popup.Dialog{
			Title:   "Playback failed",
			Content: p.errorMsg,
			Footer:  "press any key",
		}
		view = d.Render(p.width, p.height)
	case PopupSeek:
		view = popup.RenderBordered(p.seek.View(), p.width, p.height, popup.PromptWidth)
	case PopupHelp:
		view = popup.RenderBordered(p.help.View(), p.width, p.height, popup.AutoWidth)
	}
	return popup.Compose(base, view, p.width)
}
