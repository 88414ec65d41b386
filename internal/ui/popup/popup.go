// Package popup frames, centers and composes modal popups over the player
// view.
package popup

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/vbplayer/internal/ui/styles"
)

// Popup is a modal bubbletea component. View returns the bare content;
// the owner frames it with RenderBordered.
type Popup interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Popup, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Box widths for RenderBordered. AutoWidth fits the content.
const (
	AutoWidth   = 0
	PromptWidth = 44
)

// Frame chrome: rounded border plus Padding(1, 2).
const (
	frameCols = 2 + 4
	frameRows = 2 + 2
)

// Title renders a popup title with the accent gradient.
func Title(s string) string {
	return styles.T().Accent().Apply(s, lipgloss.NewStyle().Bold(true))
}

// RenderBordered frames content and centers it on a screenW x screenH
// screen. The box fits the content, capped at maxWidth columns when
// maxWidth is set and always at 4 columns and rows less than the screen.
func RenderBordered(content string, screenW, screenH, maxWidth int) string {
	w := widest(content) + frameCols
	if maxWidth > 0 {
		w = min(w, maxWidth)
	}
	w = min(w, screenW-4)
	h := min(strings.Count(content, "\n")+1+frameRows, screenH-4)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().BorderFocus).
		Padding(1, 2).
		Width(w - 2).
		Height(h - 2).
		Render(content)
	return Center(box, screenW, screenH)
}

// Dialog is a titled message box with a footer hint.
type Dialog struct {
	Title   string
	Content string
	Footer  string
	Width   int // content width; 0 fits the content
}

// Render returns the dialog centered on a termWidth x termHeight screen.
func (d *Dialog) Render(termWidth, termHeight int) string {
	t := styles.T()
	inner := d.Width
	if inner == 0 {
		inner = max(widest(d.Content), lipgloss.Width(d.Title), lipgloss.Width(d.Footer)) + 2
	}
	inner = min(inner, termWidth-6)

	center := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center)
	var lines []string
	if d.Title != "" {
		lines = append(lines, center.Render(Title(d.Title)), "")
	}
	for line := range strings.SplitSeq(d.Content, "\n") {
		lines = append(lines, ansi.Truncate(line, inner, "…"))
	}
	if d.Footer != "" {
		lines = append(lines, "", center.Render(t.S().Subtle.Render(d.Footer)))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Error).
		Padding(0, 1).
		Width(inner + 2).
		Render(strings.Join(lines, "\n"))
	return Center(box, termWidth, termHeight)
}

// Center places content in the middle of the screen by prefixing blank
// rows and left padding. Nothing is added to the right or below.
func Center(content string, termWidth, termHeight int) string {
	lines := strings.Split(content, "\n")
	top := max((termHeight-len(lines))/2, 0)
	left := strings.Repeat(" ", max((termWidth-widest(content))/2, 0))

	var b strings.Builder
	blank := strings.Repeat(" ", termWidth)
	for range top {
		b.WriteString(blank)
		b.WriteByte('\n')
	}
	for _, line := range lines {
		b.WriteString(left)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Compose draws overlay over base. On each overlay line the span between
// the first and last non-space columns replaces the base; blank overlay
// lines leave the base untouched. Escape sequences and wide characters
// in either view are handled.
func Compose(base, overlay string, width int) string {
	lines := strings.Split(base, "\n")
	for i, over := range strings.Split(overlay, "\n") {
		if i >= len(lines) {
			break
		}
		plain := ansi.Strip(over)
		trimmed := strings.TrimRight(plain, " ")
		if strings.TrimLeft(trimmed, " ") == "" {
			continue
		}
		start := len(trimmed) - len(strings.TrimLeft(trimmed, " "))
		end := ansi.StringWidth(trimmed)
		lines[i] = splice(lines[i], ansi.Cut(over, start, end), start, end, width)
	}
	return strings.Join(lines, "\n")
}

// splice replaces columns [start, end) of line with content and keeps the
// result width columns wide.
func splice(line, content string, start, end, width int) string {
	left := ansi.Cut(line, 0, start)
	if w := ansi.StringWidth(left); w < start {
		left += strings.Repeat(" ", start-w)
	}
	if end >= width {
		return left + content
	}

	right := ansi.Cut(line, end, width)
	want := width - end
	switch w := ansi.StringWidth(right); {
	case w < want:
		right += strings.Repeat(" ", want-w)
	case w > want:
		// A wide character straddles end; blank its visible half.
		right = " " + ansi.TruncateLeft(right, w-want+1, "")
	}
	return left + content + right
}

func widest(s string) int {
	w := 0
	for line := range strings.SplitSeq(s, "\n") {
		w = max(w, lipgloss.Width(line))
	}
	return w
}
