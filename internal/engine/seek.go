package engine

import (
	"sort"

	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// ResolveSeek picks the position a seek to target lands on.
//
// The result is the latest keyframe in [target-tolerance, target], or target
// itself when that window holds no keyframe. A zero tolerance is exact and a
// positive infinite tolerance snaps to the previous keyframe. Keyframes must
// be sorted; nil means every position is a keyframe. Non-numeric or negative
// tolerances count as infinite.
func ResolveSeek(keyframes []mediatime.Time, target, tolerance mediatime.Time) mediatime.Time {
	if !target.IsNumeric() {
		return target
	}
	if tolerance.IsZero() || len(keyframes) == 0 {
		return target
	}
	lower := mediatime.NegativeInfinity
	if tolerance.IsNumeric() && !tolerance.Before(mediatime.Zero) {
		lower = target.Sub(tolerance)
	}

	// index of the first keyframe after target
	i := sort.Search(len(keyframes), func(i int) bool {
		return keyframes[i].After(target)
	})
	if i == 0 {
		return target
	}
	kf := keyframes[i-1]
	if kf.Before(lower) {
		return target
	}
	return kf
}

// Clamp limits t to [0, duration]. A non-numeric duration only applies the
// lower bound.
func Clamp(t, duration mediatime.Time) mediatime.Time {
	if !t.IsNumeric() {
		if t.IsPositiveInfinity() && duration.IsNumeric() {
			return duration
		}
		return mediatime.Zero
	}
	if t.Before(mediatime.Zero) {
		return mediatime.Zero
	}
	if duration.IsNumeric() && t.After(duration) {
		return duration
	}
	return t
}
