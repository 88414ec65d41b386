package playerbar

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/ui/render"
	"github.com/llehouerou/vbplayer/internal/ui/styles"
)

// RenderProgressBar renders the expanded progress line.
// Format: ▶  1:23  ████████░░░░  4:56
// Live content shows the buffered amount in place of the duration.
func RenderProgressBar(s State, width int) string {
	status := s.Symbol()
	posStr := render.Clock(s.Position)
	endStr := render.Clock(s.Duration)
	if s.Duration.IsIndefinite() && s.Buffered.IsNumeric() {
		endStr = "+" + render.Clock(s.Buffered)
	}

	fixedWidth := lipgloss.Width(status) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(endStr)
	barWidth := width - fixedWidth
	if barWidth < 3 {
		return status + "  " + posStr + " / " + endStr
	}

	ratio := render.Ratio(s.Position, s.Duration)
	if s.Duration.IsIndefinite() && s.Buffered.IsNumeric() {
		ratio = bufferRatio(s.Buffered)
	}

	t := styles.T()
	bar := progress.New(
		progress.WithGradient(string(t.Primary), string(t.Secondary)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	return strings.Join([]string{status, posStr, bar.ViewAs(ratio), endStr}, "  ")
}

// bufferRatio maps a buffered amount to a bar fill, full at 30s.
func bufferRatio(buffered mediatime.Time) float64 {
	return min(max(buffered.Seconds()/30, 0), 1)
}
