package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// ansiGray stands in for palette colors, which have no fixed RGB value.
var ansiGray = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

// Gradient blends two colors in HCL space.
type Gradient struct {
	from, to colorful.Color
}

// NewGradient returns the gradient from one color to another. Only
// "#rrggbb" colors blend; others are treated as gray.
func NewGradient(from, to lipgloss.Color) Gradient {
	return Gradient{from: toColorful(from), to: toColorful(to)}
}

// Accent is the theme's Primary to Secondary gradient used by the
// progress bar, the marker row and titles.
func (t *Theme) Accent() Gradient {
	return NewGradient(t.Primary, t.Secondary)
}

// At returns the color at ratio, clamped to [0, 1].
func (g Gradient) At(ratio float64) lipgloss.Color {
	ratio = min(max(ratio, 0), 1)
	return lipgloss.Color(g.from.BlendHcl(g.to, ratio).Clamped().Hex())
}

// Apply colors text one grapheme cluster at a time, from the first color
// on the first cluster to the second on the last. base supplies the other
// attributes such as bold.
func (g Gradient) Apply(text string, base lipgloss.Style) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return base.Foreground(g.At(0)).Render(text)
	}

	var b strings.Builder
	last := float64(len(clusters) - 1)
	for i, c := range clusters {
		b.WriteString(base.Foreground(g.At(float64(i) / last)).Render(c))
	}
	return b.String()
}

func toColorful(c lipgloss.Color) colorful.Color {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return ansiGray
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return ansiGray
	}
	return col
}
