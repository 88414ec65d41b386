package playerbar

import (
	"strings"

	"github.com/llehouerou/vbplayer/internal/ui"
	"github.com/llehouerou/vbplayer/internal/ui/kittyimg"
	"github.com/llehouerou/vbplayer/internal/ui/render"
)

const (
	artCols     = 20
	artRows     = 10
	contentRows = 10
)

// RenderExpanded renders the poster next to the media details.
func RenderExpanded(s State, width int) string {
	innerWidth := max(width-2, 0)
	if innerWidth < ui.MinExpandedWidth {
		// Too narrow, fall back to compact
		return renderCompact(s, width)
	}

	metaWidth := innerWidth - artCols - 2 // 2 for gap between art and metadata
	metaLines := detailLines(s, metaWidth)

	artPlaceholder := strings.Repeat(" ", artCols)
	contentLines := make([]string, contentRows)
	for i := range contentRows {
		contentLines[i] = artPlaceholder + "  " + metaLines[i]
	}

	if s.Poster != nil {
		return renderWithPoster(contentLines, s.Poster, innerWidth)
	}
	return renderWithPlaceholder(contentLines, metaLines, innerWidth)
}

// detailLines returns exactly contentRows lines.
func detailLines(s State, width int) []string {
	title := s.Title
	if title == "" {
		title = "Untitled"
	}
	lines := []string{
		titleStyle().Render(render.TruncateEllipsis(title, width)),
		artistStyle().Render(render.TruncateEllipsis(s.Artist, width)),
		"",
	}

	var media []string
	if s.Geometry != "" {
		media = append(media, s.Geometry)
	} else {
		media = append(media, "audio only")
	}
	media = append(media, s.Codecs...)
	lines = append(lines, metaStyle().Render(render.TruncateEllipsis(strings.Join(media, " · "), width)))

	lines = append(lines, metaStyle().Render(render.TruncateEllipsis(surfaceLine(s), width)))

	if s.Feed != "" {
		lines = append(lines, metaStyle().Render(render.TruncateEllipsis(s.Feed, width)))
	} else {
		lines = append(lines, "")
	}

	status := s.Label()
	if s.ExactSeeks {
		status += " · exact seeks"
	}
	switch {
	case s.Err != "":
		lines = append(lines, errorStyle().Render(render.TruncateEllipsis(s.Err, width)))
	case s.Stalled:
		lines = append(lines, warningStyle().Render(status))
	default:
		lines = append(lines, metaStyle().Render(status))
	}

	lines = append(lines, "", RenderProgressBar(s, width))

	for len(lines) < contentRows {
		lines = append(lines, "")
	}
	return lines[:contentRows]
}

func surfaceLine(s State) string {
	switch {
	case !s.Attached:
		return "display detached"
	case s.DisplayReady:
		return "display ready"
	}
	return "display waiting for a frame"
}

func renderWithPoster(contentLines []string, poster *kittyimg.Image, innerWidth int) string {
	content := strings.Join(contentLines, "\n")
	rendered := barStyle().Width(innerWidth).Render(content)

	// Inject the image escape sequence into the first content line (after top border)
	imgSeq := poster.Escape(artCols, artRows)
	lines := strings.SplitN(rendered, "\n", 2)
	if len(lines) != 2 || imgSeq == "" {
		return rendered
	}

	// Rounded border left char "│" is 3 bytes in UTF-8
	firstContentLine := lines[1]
	borderCharLen := len("│")
	if len(firstContentLine) <= borderCharLen {
		return rendered
	}

	return lines[0] + "\n" + firstContentLine[:borderCharLen] + imgSeq + firstContentLine[borderCharLen:]
}

func renderWithPlaceholder(contentLines, metaLines []string, innerWidth int) string {
	placeholder := kittyimg.Placeholder(artCols, contentRows)
	placeholderLines := strings.Split(placeholder, "\n")

	for i := range contentRows {
		if i < len(placeholderLines) {
			contentLines[i] = placeholderLines[i] + "  " + metaLines[i]
		}
	}
	content := strings.Join(contentLines, "\n")

	return barStyle().Width(innerWidth).Render(content)
}
