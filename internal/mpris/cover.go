//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/vbplayer/internal/source"
)

// posterNames lists common artwork filenames in priority order. A file
// named after the media itself ("clip.jpg" for "clip.mp4") wins over all.
var posterNames = []string{
	"poster.jpg", "poster.png", "poster.jpeg",
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"thumb.jpg", "thumb.png",
}

// FindPoster looks for artwork next to the media named by a file CDN
// identifier. Returns the path to the image, or empty string if not found.
func FindPoster(cdn string) string {
	mediaPath, ok := source.LocalPath(cdn)
	if !ok {
		return ""
	}
	dir := filepath.Dir(mediaPath)
	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))

	candidates := []string{stem + ".jpg", stem + ".png"}
	candidates = append(candidates, posterNames...)
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if path == mediaPath {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
