package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/vbplayer/internal/ui"
	"github.com/llehouerou/vbplayer/internal/ui/playerbar"
	"github.com/llehouerou/vbplayer/internal/ui/render"
	"github.com/llehouerou/vbplayer/internal/ui/styles"
)

// View renders the application UI.
func (m Model) View() string {
	// Can't render before we know terminal size
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	t := styles.T()
	s := t.S()

	top := []string{m.renderHeader()}
	for _, line := range m.infoLines() {
		top = append(top, " "+s.Muted.Render(render.TruncateEllipsis(line, m.Width-2)))
	}
	if m.notice != "" {
		top = append(top, " "+s.Subtle.Render(render.TruncateEllipsis(m.notice, m.Width-2)))
	}
	if m.feedErr != "" {
		top = append(top, " "+s.Error.Render(render.TruncateEllipsis(m.feedErr, m.Width-2)))
	}

	var bottom []string
	if m.markObs != nil {
		bottom = append(bottom, " "+playerbar.RenderMarkers(m.marks, m.Player.Duration(), m.Width-2))
	}
	bottom = append(bottom, m.renderPlayerBar())

	bottomView := strings.Join(bottom, "\n")
	filler := max(m.Height-len(top)-strings.Count(bottomView, "\n")-1, 0)
	view := strings.Join(top, "\n") + strings.Repeat("\n", filler+1) + bottomView

	view = enforceHeight(view, m.Height)
	view = m.Popups.RenderOverlay(view)
	return view
}

func (m Model) renderHeader() string {
	t := styles.T()
	title := t.Accent().Apply("vbplay", lipgloss.NewStyle().Bold(true))
	return render.Row(" "+title, t.S().Subtle.Render(render.TruncateEllipsis(m.Session.CDN, max(m.Width-12, 1)))+" ", m.Width)
}

func (m Model) infoLines() []string {
	var lines []string
	add := func(label, value string) {
		lines = append(lines, render.Pad(label, 10)+value)
	}
	if id, ok := m.Player.(Identified); ok {
		add("player", id.ID())
	}
	if m.surface != nil {
		switch {
		case !m.attached():
			add("surface", "detached")
		case m.frame.Ready:
			add("surface", "ready "+render.Geometry(m.frame.Rect))
		default:
			add("surface", "waiting for a frame")
		}
	}
	if b, ok := m.Player.(buffering); ok && m.Player.Status().IsReady() {
		add("buffered", render.Clock(b.BufferedDuration()))
	}
	if m.lastMeta != "" {
		add("metadata", render.Sanitize(m.lastMeta))
	}
	return lines
}

// barMode falls back to the compact bar when the expanded one would
// leave no room for the header.
func (m Model) barMode() playerbar.DisplayMode {
	if m.DisplayMode != playerbar.ModeExpanded {
		return m.DisplayMode
	}
	need := playerbar.Height(playerbar.ModeExpanded) + 1
	if m.markObs != nil {
		need += ui.MarkerRowHeight
	}
	if m.Height < need {
		return playerbar.ModeCompact
	}
	return playerbar.ModeExpanded
}

func (m Model) renderPlayerBar() string {
	s := playerbar.NewState(m.Player, m.barMode())
	s.Attached = m.attached()
	s.DisplayReady = m.frame.Ready
	s.ExactSeeks = m.ExactSeeks
	s.Poster = m.poster
	if m.Session.Feeder != nil {
		s.Feed = m.Session.Feeder.Stats().String()
	}
	return playerbar.Render(s, m.Width)
}

// enforceHeight pads or truncates view to exactly targetHeight lines.
func enforceHeight(view string, targetHeight int) string {
	lines := strings.Split(view, "\n")
	if len(lines) == targetHeight {
		return view
	}
	if len(lines) < targetHeight {
		for i := len(lines); i < targetHeight; i++ {
			lines = append(lines, "")
		}
	} else {
		lines = lines[len(lines)-targetHeight:]
	}
	return strings.Join(lines, "\n")
}
