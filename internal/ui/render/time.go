package render

import (
	"fmt"
	"image"

	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Clock formats a media time as m:ss, or h:mm:ss past an hour. Live
// (indefinite) durations read "live" and invalid times "--:--".
func Clock(t mediatime.Time) string {
	switch {
	case t.IsIndefinite():
		return "live"
	case t.IsPositiveInfinity():
		return "∞"
	case !t.IsNumeric():
		return "--:--"
	}
	d := t.Duration()
	neg := d < 0
	if neg {
		d = -d
	}
	total := int64(d.Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	var out string
	if h > 0 {
		out = fmt.Sprintf("%d:%02d:%02d", h, m, s)
	} else {
		out = fmt.Sprintf("%d:%02d", m, s)
	}
	if neg {
		return "-" + out
	}
	return out
}

// Ratio returns pos/dur clamped to [0, 1]; 0 when dur is not a positive
// numeric time.
func Ratio(pos, dur mediatime.Time) float64 {
	if !pos.IsNumeric() || !dur.IsNumeric() {
		return 0
	}
	d := dur.Seconds()
	if d <= 0 {
		return 0
	}
	return min(max(pos.Seconds()/d, 0), 1)
}

// Geometry formats a frame rectangle as WxH, empty for audio-only media.
func Geometry(r image.Rectangle) string {
	if r.Empty() {
		return ""
	}
	return fmt.Sprintf("%dx%d", r.Dx(), r.Dy())
}
