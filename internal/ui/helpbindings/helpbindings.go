// Package helpbindings is the scrollable key binding popup.
package helpbindings

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/vbplayer/internal/keymap"
	"github.com/llehouerou/vbplayer/internal/ui"
	"github.com/llehouerou/vbplayer/internal/ui/action"
	"github.com/llehouerou/vbplayer/internal/ui/popup"
	"github.com/llehouerou/vbplayer/internal/ui/render"
	"github.com/llehouerou/vbplayer/internal/ui/styles"
)

const source = "help"

var _ popup.Popup = (*Model)(nil)

// sections lists the binding contexts in display order with their headings.
var sections = []struct{ context, heading string }{
	{"global", "Global"},
	{"playback", "Playback"},
}

// Model lists the bindings of the requested contexts.
type Model struct {
	ui.Base
	keys     *keymap.Resolver
	lines    []string // rendered once per SetContexts
	boxWidth int      // widest line, so scrolling never resizes the box
	offset   int
}

// New creates a help popup listing the bindings of keys. A nil resolver
// lists the defaults.
func New(keys *keymap.Resolver) Model {
	if keys == nil {
		keys = keymap.NewResolver(keymap.All)
	}
	return Model{keys: keys}
}

// SetContexts selects the binding contexts to list and scrolls to the top.
// Sections always appear in the same order whatever the order of contexts.
func (m *Model) SetContexts(contexts []string) {
	type group struct {
		heading  string
		bindings []keymap.Binding
	}
	var groups []group
	keyWidth := 0
	for _, sec := range sections {
		if !slices.Contains(contexts, sec.context) {
			continue
		}
		bs := m.keys.ByContext(sec.context)
		if len(bs) == 0 {
			continue
		}
		for _, b := range bs {
			keyWidth = max(keyWidth, lipgloss.Width(keyLabel(b)))
		}
		groups = append(groups, group{sec.heading, bs})
	}

	st := styles.T().S()
	m.lines = nil
	for _, g := range groups {
		if len(m.lines) > 0 {
			m.lines = append(m.lines, "")
		}
		m.lines = append(m.lines,
			st.Title.Render(g.heading),
			st.Subtle.Render(strings.Repeat("─", keyWidth+15)),
		)
		for _, b := range g.bindings {
			m.lines = append(m.lines, st.Key.Render(render.Pad(keyLabel(b), keyWidth))+"  "+st.Base.Render(b.Description))
		}
	}

	m.boxWidth = 0
	for _, l := range m.lines {
		m.boxWidth = max(m.boxWidth, lipgloss.Width(l))
	}
	m.offset = 0
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "?", "esc", "q":
		return m, action.Cmd(source, Close{})
	case "j", "down":
		m.offset = min(m.offset+1, m.maxScroll())
	case "k", "up":
		m.offset = max(m.offset-1, 0)
	}
	return m, nil
}

func (m *Model) View() string {
	if !m.Sized() {
		return ""
	}
	end := min(m.offset+m.visibleHeight(), len(m.lines))
	visible := make([]string, 0, end-m.offset)
	for _, l := range m.lines[m.offset:end] {
		visible = append(visible, l+strings.Repeat(" ", m.boxWidth-lipgloss.Width(l)))
	}

	footer := "?/esc close"
	if m.maxScroll() > 0 {
		footer = "j/k scroll · " + footer
	}
	return popup.Title("Keys") + "\n\n" +
		strings.Join(visible, "\n") + "\n\n" +
		styles.T().S().Subtle.Render(footer)
}

func (m Model) visibleHeight() int {
	return max(m.ContentHeight(ui.PopupChrome), 5)
}

func (m Model) maxScroll() int {
	return max(len(m.lines)-m.visibleHeight(), 0)
}

// keyLabel joins the keys of b, naming the space bar once.
func keyLabel(b keymap.Binding) string {
	keys := make([]string, 0, len(b.Keys))
	for _, k := range b.Keys {
		if k == " " {
			k = "space"
		}
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return strings.Join(keys, ", ")
}
