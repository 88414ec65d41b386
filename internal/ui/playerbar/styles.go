package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/vbplayer/internal/ui/styles"
)

const (
	playSymbol   = "▶"
	pauseSymbol  = "⏸"
	stallSymbol  = "⧗"
	finishSymbol = "■"
	failSymbol   = "✗"
	loadSymbol   = "…"
)

func barStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().Border)
}

func titleStyle() lipgloss.Style {
	return styles.T().S().Title
}

func artistStyle() lipgloss.Style {
	return styles.T().S().Muted
}

func metaStyle() lipgloss.Style {
	return styles.T().S().Subtle
}

func progressTimeStyle() lipgloss.Style {
	return styles.T().S().Base
}

func progressBarEmpty() lipgloss.Style {
	return styles.T().S().Subtle
}

func errorStyle() lipgloss.Style {
	return styles.T().S().Error
}

func warningStyle() lipgloss.Style {
	return styles.T().S().Warning
}
