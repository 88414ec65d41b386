package player

import (
	"errors"
	"testing"

	"github.com/llehouerou/vbplayer/internal/errmsg"
)

func TestStatusKind_String(t *testing.T) {
	tests := []struct {
		kind StatusKind
		want string
	}{
		{StatusUnknown, "Unknown"},
		{StatusReadyToPlay, "ReadyToPlay"},
		{StatusFailed, "Failed"},
		{StatusKind(99), "Invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("StatusKind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatus_Advance(t *testing.T) {
	boom := errors.New("boom")
	failed := failedStatus(boom)

	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"unknown to ready", unknownStatus, readyStatus, true},
		{"unknown to failed", unknownStatus, failed, true},
		{"ready to failed", readyStatus, failed, true},
		{"ready to unknown", readyStatus, unknownStatus, false},
		{"ready to ready", readyStatus, readyStatus, false},
		{"unknown to unknown", unknownStatus, unknownStatus, false},
		{"failed to ready", failed, readyStatus, false},
		{"failed to unknown", failed, unknownStatus, false},
		{"failed to failed", failed, failedStatus(errors.New("other")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.from.advance(tt.to)
			if ok != tt.ok {
				t.Fatalf("advance() ok = %v, want %v", ok, tt.ok)
			}
			want := tt.from
			if tt.ok {
				want = tt.to
			}
			if got.Kind() != want.Kind() || got.Err() != want.Err() {
				t.Errorf("advance() = %v, want %v", got, want)
			}
		})
	}
}

func TestStatus_ErrOnlyWhenFailed(t *testing.T) {
	if unknownStatus.Err() != nil || readyStatus.Err() != nil {
		t.Error("non-failed status carries an error")
	}

	s := failedStatus(nil)
	if s.Err() == nil {
		t.Fatal("failed status without error")
	}
	if !errors.Is(s.Err(), errmsg.ErrFailed) {
		t.Errorf("fallback error = %v, want ErrFailed", s.Err())
	}
	if !s.IsFailed() || s.IsReady() {
		t.Errorf("IsFailed/IsReady = %v/%v", s.IsFailed(), s.IsReady())
	}
}

func TestStatus_String(t *testing.T) {
	s := failedStatus(errors.New("no route"))
	if got, want := s.String(), "Failed(no route)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := readyStatus.String(); got != "ReadyToPlay" {
		t.Errorf("String() = %q, want ReadyToPlay", got)
	}
}
