package ui

// Base records the screen size a popup was given. Embed it in popup
// models to satisfy the SetSize half of popup.Popup.
type Base struct {
	width, height int
}

func (b *Base) SetSize(width, height int) {
	b.width, b.height = width, height
}

func (b Base) Width() int  { return b.width }
func (b Base) Height() int { return b.height }

// Sized reports whether SetSize has been called with a usable area.
func (b Base) Sized() bool { return b.width > 0 && b.height > 0 }

// ContentHeight returns the rows left for content once a popup's chrome
// is taken, never less than zero.
func (b Base) ContentHeight(chrome int) int {
	return max(b.height-chrome, 0)
}
