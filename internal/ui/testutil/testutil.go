// Package testutil drives popups in tests without a running bubbletea
// program.
package testutil

import (
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/vbplayer/internal/ui/action"
)

// StripANSI removes escape sequences, including Kitty graphics.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// LastAction runs the harness's last command and returns the action it
// delivered, failing the test unless it is an action.Msg from source
// carrying a T.
func LastAction[T action.Action](t *testing.T, h *PopupHarness, source string) T {
	t.Helper()
	var zero T
	msg, ok := h.LastMsg().(action.Msg)
	if !ok {
		t.Fatalf("last command did not deliver an action.Msg")
		return zero
	}
	if msg.Source != source {
		t.Errorf("action source = %q, want %q", msg.Source, source)
	}
	a, ok := msg.Action.(T)
	if !ok {
		t.Fatalf("action is %T, want %T", msg.Action, zero)
	}
	return a
}

// Closed reports whether the last command delivered any action.Msg.
func Closed(h *PopupHarness) bool {
	_, ok := h.LastMsg().(action.Msg)
	return ok
}
