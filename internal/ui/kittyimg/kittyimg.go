// Package kittyimg draws posters with the Kitty terminal graphics protocol.
package kittyimg

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // poster decoder
	"image/png"
	"os"
	"strings"
	"sync"

	"github.com/nfnt/resize"
)

const (
	chunkSize = 4096 // max base64 bytes per escape sequence

	// Pixels per cell assumed when scaling a poster down.
	cellWidth  = 10
	cellHeight = 20
)

// Supported reports whether the terminal advertises Kitty graphics.
func Supported() bool {
	term := os.Getenv("TERM")
	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "",
		strings.Contains(term, "kitty"),
		os.Getenv("TERM_PROGRAM") == "WezTerm",
		os.Getenv("GHOSTTY_RESOURCES_DIR") != "":
		return true
	}
	return false
}

// Image is a decoded poster. The escape sequence for the last requested
// size is cached, so rendering every frame stays cheap.
type Image struct {
	img image.Image

	mu         sync.Mutex
	cols, rows int
	seq        string
}

// Decode returns nil when data is not a JPEG or PNG image.
func Decode(data []byte) *Image {
	if len(data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return &Image{img: img}
}

// Escape returns the sequence drawing the image over cols x rows cells at
// the cursor. A nil Image draws nothing.
func (i *Image) Escape(cols, rows int) string {
	if i == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.seq == "" || i.cols != cols || i.rows != rows {
		i.seq = encode(i.img, cols, rows)
		i.cols, i.rows = cols, rows
	}
	return i.seq
}

func encode(img image.Image, cols, rows int) string {
	scaled := resize.Thumbnail(uint(cols*cellWidth), uint(rows*cellHeight), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return ""
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	// a=T transmits and displays, f=100 is PNG, m=1 means more chunks follow.
	var sb strings.Builder
	for off := 0; off < len(payload); off += chunkSize {
		end := min(off+chunkSize, len(payload))
		more := 0
		if end < len(payload) {
			more = 1
		}
		if off == 0 {
			fmt.Fprintf(&sb, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, payload[off:end])
		} else {
			fmt.Fprintf(&sb, "\x1b_Gm=%d;%s\x1b\\", more, payload[off:end])
		}
	}
	return sb.String()
}

// Placeholder returns a framed box with a play glyph, drawn where a poster
// would go.
func Placeholder(cols, rows int) string {
	if cols < 4 || rows < 2 {
		return ""
	}
	inner := cols - 2
	lines := make([]string, rows)
	lines[0] = "┌" + strings.Repeat("─", inner) + "┐"
	for i := 1; i < rows-1; i++ {
		if i == rows/2 && cols >= 5 {
			left := (cols - 3) / 2
			lines[i] = "│" + strings.Repeat(" ", left) + "▶" + strings.Repeat(" ", inner-1-left) + "│"
			continue
		}
		lines[i] = "│" + strings.Repeat(" ", inner) + "│"
	}
	lines[rows-1] = "└" + strings.Repeat("─", inner) + "┘"
	return strings.Join(lines, "\n")
}
