package playerbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
	"github.com/llehouerou/vbplayer/internal/ui"
	"github.com/llehouerou/vbplayer/internal/ui/kittyimg"
	"github.com/llehouerou/vbplayer/internal/ui/render"
	"github.com/llehouerou/vbplayer/internal/ui/styles"
)

// DisplayMode controls the player bar appearance.
type DisplayMode int

const (
	ModeCompact  DisplayMode = iota // Single-line view
	ModeExpanded                    // Poster and details
)

// State holds everything needed to render the player bar.
type State struct {
	Kind     player.StatusKind
	Err      string
	Playing  bool
	Stalled  bool
	Finished bool

	Title    string
	Artist   string
	Geometry string
	Codecs   []string

	Position mediatime.Time
	Duration mediatime.Time
	Buffered mediatime.Time // Invalid unless the player is fed with data

	// Filled in by the application.
	DisplayReady bool
	Attached     bool
	ExactSeeks   bool
	Feed         string
	Poster       *kittyimg.Image

	DisplayMode DisplayMode
}

// Height returns the total height of the player bar for the given mode.
func Height(mode DisplayMode) int {
	if mode == ModeExpanded {
		return contentRows + ui.BorderHeight
	}
	return 1 + ui.BorderHeight
}

type buffering interface {
	BufferedDuration() mediatime.Time
}

// NewState snapshots p.
func NewState(p player.Interface, mode DisplayMode) State {
	status := p.Status()
	media := p.Media()
	s := State{
		Kind:        status.Kind(),
		Playing:     p.Rate() > 0,
		Stalled:     p.Stalled(),
		Finished:    p.Finished(),
		Title:       render.Sanitize(media.Title),
		Artist:      render.Sanitize(media.Artist),
		Geometry:    render.Geometry(media.Video),
		Codecs:      media.Codecs,
		Position:    p.CurrentTime(),
		Duration:    p.Duration(),
		Buffered:    mediatime.Invalid,
		DisplayMode: mode,
	}
	if err := status.Err(); err != nil {
		s.Err = err.Error()
	}
	if b, ok := p.(buffering); ok && status.IsReady() {
		s.Buffered = b.BufferedDuration()
	}
	return s
}

// Symbol returns the status glyph.
func (s State) Symbol() string {
	switch {
	case s.Kind == player.StatusFailed:
		return failSymbol
	case s.Kind != player.StatusReadyToPlay:
		return loadSymbol
	case s.Finished:
		return finishSymbol
	case s.Stalled:
		return stallSymbol
	case s.Playing:
		return playSymbol
	}
	return pauseSymbol
}

// Label describes the status in words.
func (s State) Label() string {
	switch {
	case s.Kind == player.StatusFailed:
		return "failed"
	case s.Kind != player.StatusReadyToPlay:
		return "loading"
	case s.Finished:
		return "finished"
	case s.Stalled:
		return "buffering"
	case s.Playing:
		return "playing"
	}
	return "paused"
}

// Render returns the player bar string for the given width.
func Render(s State, width int) string {
	if s.DisplayMode == ModeExpanded {
		return RenderExpanded(s, width)
	}
	return renderCompact(s, width)
}

func renderCompact(s State, width int) string {
	innerWidth := max(width-6, 0)

	if s.Kind == player.StatusFailed {
		line := failSymbol + "  " + render.TruncateEllipsis(s.Err, max(innerWidth-3, 1))
		return barStyle().Padding(0, 2).Width(width - 2).Render(errorStyle().Render(line))
	}

	title := s.Title
	if title == "" {
		title = "Untitled"
	}
	info := s.Artist
	timeStr := fmt.Sprintf("%s / %s", render.Clock(s.Position), render.Clock(s.Duration))

	separator := "   "
	sepWidth := lipgloss.Width(separator)
	timeWidth := lipgloss.Width(timeStr)
	status := s.Symbol()
	statusWidth := lipgloss.Width(status + "  ")
	titleWidth := lipgloss.Width(title)
	infoWidth := lipgloss.Width(info)

	minBarWidth := 10
	available := innerWidth - statusWidth - timeWidth - sepWidth*2 - minBarWidth

	var styledTitle, styledInfo string
	var used int
	switch {
	case info != "" && titleWidth+sepWidth+infoWidth <= available:
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(info)
		used = titleWidth + sepWidth + infoWidth
	case info != "" && titleWidth+sepWidth < available:
		maxInfo := available - titleWidth - sepWidth
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(render.TruncateEllipsis(info, maxInfo))
		used = titleWidth + sepWidth + maxInfo
	default:
		maxTitle := max(available, 10)
		styledTitle = titleStyle().Render(render.TruncateEllipsis(title, maxTitle))
		used = min(titleWidth, maxTitle)
	}

	barWidth := max(innerWidth-used-statusWidth-timeWidth-sepWidth*2, 5)

	var content strings.Builder
	content.WriteString(styledTitle)
	if styledInfo != "" {
		content.WriteString(separator)
		content.WriteString(styledInfo)
	}
	content.WriteString(separator)
	if s.Stalled {
		content.WriteString(warningStyle().Render(status))
	} else {
		content.WriteString(status)
	}
	content.WriteString("  ")
	content.WriteString(compactBar(s, barWidth))
	content.WriteString(separator)
	content.WriteString(progressTimeStyle().Render(timeStr))

	return barStyle().Padding(0, 2).Width(width - 2).Render(content.String())
}

// compactBar draws played time as a gradient and the rest as a thin line.
func compactBar(s State, width int) string {
	ratio := render.Ratio(s.Position, s.Duration)
	filled := min(int(float64(width)*ratio), width)
	return styles.T().Accent().Apply(strings.Repeat("━", filled), lipgloss.NewStyle()) +
		progressBarEmpty().Render(strings.Repeat("─", width-filled))
}
