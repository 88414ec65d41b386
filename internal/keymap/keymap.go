package keymap

import (
	"fmt"
	"slices"
	"strings"
)

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback"
}

// All contains the default key bindings.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},

	// Playback
	{ActionPlayPause, []string{" ", "space"}, "Play/pause", "playback"},
	{ActionStop, []string{"s"}, "Stop", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -5s", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +5s", "playback"},
	{ActionSeekBackLong, []string{"shift+left", "H"}, "Seek -30s", "playback"},
	{ActionSeekForwardLong, []string{"shift+right", "L"}, "Seek +30s", "playback"},
	{ActionJumpStart, []string{"home", "0"}, "Back to start", "playback"},
	{ActionSeekPrompt, []string{"g", ":"}, "Seek to time", "playback"},
	{ActionSeekExact, []string{"x"}, "Toggle exact seeks", "playback"},
	{ActionTogglePlayerDisplay, []string{"v"}, "Toggle player display", "playback"},
	{ActionToggleSurface, []string{"d"}, "Attach/detach display", "playback"},
	{ActionToggleMarkers, []string{"m"}, "Toggle time markers", "playback"},
}

// Remap returns a copy of bindings where each action named in keys gets
// exactly those keys. A key claimed by a remapped action is taken away
// from every other binding. ctrl+c always quits.
func Remap(bindings []Binding, keys map[string][]string) ([]Binding, error) {
	out := make([]Binding, len(bindings))
	for i, b := range bindings {
		b.Keys = slices.Clone(b.Keys)
		out[i] = b
	}
	if len(keys) == 0 {
		return out, nil
	}

	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	slices.Sort(names)

	claimed := map[string]Action{}
	remapped := map[Action]bool{}
	for _, name := range names {
		a := Action(strings.ToLower(strings.TrimSpace(name)))
		i := slices.IndexFunc(out, func(b Binding) bool { return b.Action == a })
		if i < 0 {
			return nil, fmt.Errorf("keys: unknown action %q", name)
		}
		var ks []string
		for _, k := range keys[name] {
			if k == "" {
				continue
			}
			if prev, ok := claimed[k]; ok && prev != a {
				return nil, fmt.Errorf("keys: %q bound to both %s and %s", k, prev, a)
			}
			claimed[k] = a
			ks = append(ks, k)
		}
		if len(ks) == 0 {
			return nil, fmt.Errorf("keys: no keys for %s", a)
		}
		out[i].Keys = ks
		remapped[a] = true
	}
	if a, ok := claimed["ctrl+c"]; ok && a != ActionQuit {
		return nil, fmt.Errorf("keys: ctrl+c is reserved for %s", ActionQuit)
	}

	for i := range out {
		if remapped[out[i].Action] {
			continue
		}
		out[i].Keys = slices.DeleteFunc(out[i].Keys, func(k string) bool {
			_, taken := claimed[k]
			return taken
		})
	}
	return out, nil
}
