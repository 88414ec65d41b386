package playerbar

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/ui/render"
	"github.com/llehouerou/vbplayer/internal/ui/styles"
)

const markerGlyph = "╵"

// RenderMarkers draws the times at which a periodic time observer fired,
// as ticks placed along width columns. Content without a numeric duration
// lists the most recent times instead.
func RenderMarkers(marks []mediatime.Time, duration mediatime.Time, width int) string {
	if width <= 0 {
		return ""
	}
	if len(marks) == 0 {
		return styles.T().S().Subtle.Render(render.TruncateEllipsis("no marks yet", width))
	}

	if !duration.IsNumeric() || duration.Seconds() <= 0 {
		return recentMarks(marks, width)
	}

	cols := make([]bool, width)
	for _, m := range marks {
		ratio := render.Ratio(m, duration)
		cols[min(int(ratio*float64(width)), width-1)] = true
	}

	accent := styles.T().Accent()
	var b strings.Builder
	for i, set := range cols {
		if !set {
			b.WriteByte(' ')
			continue
		}
		color := accent.At(float64(i) / float64(max(width-1, 1)))
		b.WriteString(lipgloss.NewStyle().Foreground(color).Render(markerGlyph))
	}
	return b.String()
}

func recentMarks(marks []mediatime.Time, width int) string {
	var parts []string
	used := 0
	for _, m := range slices.Backward(marks) {
		label := render.Clock(m)
		if used+len(label)+1 > width {
			break
		}
		parts = append(parts, label)
		used += len(label) + 1
	}
	slices.Reverse(parts)
	return styles.T().S().Marker.Render(strings.Join(parts, " "))
}
