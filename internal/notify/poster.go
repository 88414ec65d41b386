//go:build linux

package notify

import "github.com/llehouerou/vbplayer/internal/mpris"

// PosterPath returns artwork stored next to the media named by cdn, or "".
func PosterPath(cdn string) string {
	return mpris.FindPoster(cdn)
}
