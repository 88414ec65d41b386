package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/vbplayer/internal/display"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
	"github.com/llehouerou/vbplayer/internal/state"
)

const tickInterval = 250 * time.Millisecond

// TickCmd returns a command that sends TickMsg after tickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// WatchPlayerEvents returns a command that waits for the next player event.
// It listens on all subscription channels and converts events to tea.Msg.
func WatchPlayerEvents(sub *player.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StatusChanged:
			return StatusChangedMsg(e)
		case e := <-sub.StallChanged:
			return StallChangedMsg(e)
		case e := <-sub.RateChanged:
			return RateChangedMsg(e)
		case e := <-sub.Finished:
			return FinishedMsg(e)
		case e := <-sub.Metadata:
			return MetadataMsg(e)
		case <-sub.Done:
			return PlayerClosedMsg{}
		}
	}
}

// WatchSurface returns a command that waits for the next surface change.
func WatchSurface(sub *display.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case c := <-sub.Changes:
			return SurfaceChangedMsg(c)
		case <-sub.Done:
			return nil
		}
	}
}

// WatchMarkers returns a command that waits for the next marker.
func WatchMarkers(ch <-chan mediatime.Time) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return MarkerMsg(t)
	}
}

// WatchFeed returns a command that waits for the feeder to stop.
func WatchFeed(done <-chan error) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		if err := <-done; err != nil {
			return FeedErrorMsg{Err: err}
		}
		return nil
	}
}

// LoadResumeCmd looks up the saved position of cdn.
func LoadResumeCmd(mgr state.Interface, cdn string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		r, err := mgr.GetResume(ctx, cdn)
		return ResumeLoadedMsg{Resume: r, Err: err}
	}
}
