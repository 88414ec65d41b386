package seekprompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Target is a parsed seek request.
type Target struct {
	// Offset is the absolute time, or a signed offset when Relative.
	Offset   mediatime.Time
	Relative bool

	// Percent in [0, 100] is used instead of Offset when IsPercent.
	Percent   float64
	IsPercent bool
}

var errEmpty = errors.New("enter a time")

// Parse reads a seek target. Accepted forms:
//
//	83      seconds
//	1:23    minutes and seconds
//	1:02:03 hours, minutes and seconds
//	+10     forward from the playhead (any form above after the sign)
//	-1:00   backward from the playhead
//	50%     share of the duration
//
// Seconds may carry a fraction ("83.5").
func Parse(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, errEmpty
	}

	if p, ok := strings.CutSuffix(s, "%"); ok {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || strings.Trim(p, "0123456789.") != "" || v > 100 {
			return Target{}, fmt.Errorf("bad percentage %q", s)
		}
		return Target{Percent: v, IsPercent: true}, nil
	}

	var t Target
	sign := int64(1)
	switch s[0] {
	case '+':
		t.Relative = true
		s = s[1:]
	case '-':
		t.Relative = true
		sign = -1
		s = s[1:]
	}

	ms, err := parseClock(s)
	if err != nil {
		return Target{}, err
	}
	t.Offset = mediatime.Make(sign*ms, 1000)
	return t, nil
}

// parseClock returns milliseconds for [[h:]m:]s[.frac].
func parseClock(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("bad time %q", s)
	}

	last := parts[len(parts)-1]
	if strings.Trim(last, "0123456789.") != "" {
		return 0, fmt.Errorf("bad time %q", s)
	}
	secs, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, fmt.Errorf("bad time %q", s)
	}
	if len(parts) > 1 && secs >= 60 {
		return 0, fmt.Errorf("bad time %q: seconds must be below 60", s)
	}
	total := int64(secs*1000 + 0.5)

	unit := int64(60_000)
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("bad time %q", s)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("bad time %q: minutes must be below 60", s)
		}
		total += int64(n) * unit
		unit *= 60
	}
	return total, nil
}

// Resolve returns the time to seek to from the playhead at current in
// content of the given duration. Relative targets stop at zero. ok is
// false for a percentage of content without a numeric duration.
func (t Target) Resolve(current, duration mediatime.Time) (at mediatime.Time, ok bool) {
	switch {
	case t.IsPercent:
		if !duration.IsNumeric() {
			return mediatime.Invalid, false
		}
		return mediatime.FromSeconds(duration.Seconds()*t.Percent/100, 1000), true
	case t.Relative:
		if !current.IsNumeric() {
			current = mediatime.Zero
		}
		return mediatime.Max(current.Add(t.Offset), mediatime.Zero), true
	}
	return t.Offset, true
}
