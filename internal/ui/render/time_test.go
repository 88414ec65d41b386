package render

import (
	"image"
	"testing"

	"github.com/llehouerou/vbplayer/internal/mediatime"
)

func TestClock(t *testing.T) {
	tests := []struct {
		name string
		in   mediatime.Time
		want string
	}{
		{"zero", mediatime.Zero, "0:00"},
		{"seconds", mediatime.Make(83, 1), "1:23"},
		{"fraction truncates", mediatime.Make(5999, 1000), "0:05"},
		{"hours", mediatime.Make(3725, 1), "1:02:05"},
		{"negative", mediatime.Make(-4, 1), "-0:04"},
		{"indefinite", mediatime.Indefinite, "live"},
		{"invalid", mediatime.Invalid, "--:--"},
		{"infinity", mediatime.PositiveInfinity, "∞"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clock(tt.in); got != tt.want {
				t.Errorf("Clock(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	ten := mediatime.Make(10, 1)
	tests := []struct {
		pos, dur mediatime.Time
		want     float64
	}{
		{mediatime.Make(5, 1), ten, 0.5},
		{mediatime.Make(20, 1), ten, 1},
		{mediatime.Make(-1, 1), ten, 0},
		{mediatime.Make(5, 1), mediatime.Indefinite, 0},
		{mediatime.Make(5, 1), mediatime.Zero, 0},
		{mediatime.Invalid, ten, 0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.pos, tt.dur); got != tt.want {
			t.Errorf("Ratio(%v, %v) = %v, want %v", tt.pos, tt.dur, got, tt.want)
		}
	}
}

func TestGeometry(t *testing.T) {
	if got := Geometry(image.Rect(0, 0, 1280, 720)); got != "1280x720" {
		t.Errorf("Geometry() = %q, want 1280x720", got)
	}
	if got := Geometry(image.Rectangle{}); got != "" {
		t.Errorf("Geometry(empty) = %q, want empty", got)
	}
}
