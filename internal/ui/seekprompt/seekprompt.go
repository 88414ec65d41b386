// Package seekprompt is the "seek to time" popup.
package seekprompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/ui"
	"github.com/llehouerou/vbplayer/internal/ui/action"
	"github.com/llehouerou/vbplayer/internal/ui/popup"
	"github.com/llehouerou/vbplayer/internal/ui/render"
	"github.com/llehouerou/vbplayer/internal/ui/styles"
)

const source = "seekprompt"

var _ popup.Popup = (*Model)(nil)

// Result is sent when the prompt closes.
type Result struct {
	Target   Target
	Canceled bool // esc
}

// ActionType implements action.Action.
func (Result) ActionType() string { return "seekprompt.result" }

// Model is the seek prompt.
type Model struct {
	ui.Base
	input    textinput.Model
	position mediatime.Time
	duration mediatime.Time
	err      string
}

// New creates a seek prompt.
func New() Model {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "1:23, +10, -5, 50%"
	in.CharLimit = 16
	in.Width = 20
	return Model{input: in}
}

// Start clears the prompt and shows the playhead and duration in the hint.
func (m *Model) Start(position, duration mediatime.Time, width, height int) tea.Cmd {
	m.position = position
	m.duration = duration
	m.err = ""
	m.input.Reset()
	m.SetSize(width, height)
	return m.input.Focus()
}

// Init implements popup.Popup.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements popup.Popup.
func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.input.Blur()
			return m, action.Cmd(source, Result{Canceled: true})
		case tea.KeyEnter:
			t, err := Parse(m.input.Value())
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			if _, ok := t.Resolve(m.position, m.duration); !ok {
				m.err = "duration unknown"
				return m, nil
			}
			m.input.Blur()
			return m, action.Cmd(source, Result{Target: t})
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Value returns the typed text.
func (m *Model) Value() string {
	return m.input.Value()
}

// View implements popup.Popup.
func (m *Model) View() string {
	if !m.Sized() {
		return ""
	}
	st := styles.T().S()

	var b strings.Builder
	b.WriteString(popup.Title("Seek to"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.err != "" {
		b.WriteString(st.Error.Render(m.err))
	} else {
		b.WriteString(st.Muted.Render("at " + render.Clock(m.position) + " of " + render.Clock(m.duration)))
	}
	b.WriteString("\n")
	b.WriteString(st.Subtle.Render("enter seek · esc cancel"))
	return b.String()
}
