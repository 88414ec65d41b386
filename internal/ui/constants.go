// Package ui holds the layout constants and the size embed shared by the
// vbplay components.
package ui

// Layout constants.
const (
	// BorderHeight is the vertical space consumed by a rounded border.
	BorderHeight = 2

	// PopupChrome is the vertical space a bordered popup spends on its
	// border, padding, title and footer.
	PopupChrome = 10

	// MinExpandedWidth is the minimum width for expanded player bar mode.
	MinExpandedWidth = 40

	// MarkerRowHeight is the height of the time marker row under the bar.
	MarkerRowHeight = 1
)
