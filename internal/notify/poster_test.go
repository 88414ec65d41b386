//go:build linux

package notify

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestPosterPath(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "clip.mp4")
	touch(t, media)

	if got := PosterPath(media); got != "" {
		t.Errorf("PosterPath() = %q before any artwork, want empty", got)
	}

	touch(t, filepath.Join(dir, "folder.png"))
	poster := filepath.Join(dir, "poster.jpg")
	touch(t, poster)
	if got := PosterPath(media); got != poster {
		t.Errorf("PosterPath() = %q, want %q", got, poster)
	}

	own := filepath.Join(dir, "clip.png")
	touch(t, own)
	if got := PosterPath("file://" + media); got != own {
		t.Errorf("PosterPath() = %q, want the media's own image %q", got, own)
	}
}

func TestPosterPath_RemoteMedia(t *testing.T) {
	if got := PosterPath("https://example.com/clip.mp4"); got != "" {
		t.Errorf("PosterPath() = %q, want empty", got)
	}
}
