package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/vbplayer/internal/engine"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
)

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []Notification
	nextID uint32
	err    error
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeNotifier) Close(uint32) error { return nil }

func (f *fakeNotifier) notifications() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.sent...)
}

func TestReporter_FinishedReplacesPrevious(t *testing.T) {
	n := &fakeNotifier{}
	r := NewReporter(n, nil)
	m := player.NewMock()
	m.SetMedia(engine.Media{Title: "Clip", Duration: mediatime.Make(95, 1)})

	r.Finished(m, "/media/clip.mp4", mediatime.Make(95, 1))
	r.Finished(m, "/media/clip.mp4", mediatime.Indefinite)

	sent := n.notifications()
	require.Len(t, sent, 2)
	assert.Equal(t, "Clip", sent[0].Summary)
	assert.Equal(t, CategoryFinished, sent[0].Category)
	assert.Equal(t, "Finished playing (1:35)", sent[0].Body)
	assert.Equal(t, UrgencyNormal, sent[0].Urgency)
	assert.Zero(t, sent[0].ReplacesID)
	assert.Equal(t, "Finished playing", sent[1].Body)
	assert.Equal(t, uint32(1), sent[1].ReplacesID)
}

func TestReporter_Failed(t *testing.T) {
	n := &fakeNotifier{}
	r := NewReporter(n, nil)

	r.Failed(nil, "/media/clip.mp4", errmsg.Errorf(errmsg.OpOpen, errmsg.CodeSourceUnavailable, "no such file"))

	sent := n.notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, "clip.mp4", sent[0].Summary)
	assert.Equal(t, CategoryFailed, sent[0].Category)
	assert.Negative(t, sent[0].Expire)
	assert.Equal(t, "Failed to open media: no such file", sent[0].Body)
	assert.Equal(t, UrgencyCritical, sent[0].Urgency)
}

func TestReporter_NotifierErrorKeepsLastID(t *testing.T) {
	n := &fakeNotifier{}
	r := NewReporter(n, nil)

	r.Finished(nil, "a.mp4", mediatime.Invalid)
	n.err = errors.New("bus gone")
	r.Finished(nil, "b.mp4", mediatime.Invalid)
	n.err = nil
	r.Finished(nil, "c.mp4", mediatime.Invalid)

	sent := n.notifications()
	require.Len(t, sent, 2)
	assert.Equal(t, uint32(1), sent[1].ReplacesID)
}

func TestFailureBody(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "Playback failed"},
		{"plain", errors.New("boom"), "boom"},
		{"with cause", errmsg.Errorf(errmsg.OpDecode, errmsg.CodeDecode, "codec changed"), "Failed to decode media: codec changed"},
		{"code only", errmsg.New(errmsg.OpPrepare, errmsg.CodeFailed, nil), "Failed to prepare player: player failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureBody(tt.err); got != tt.want {
				t.Errorf("FailureBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	if got := Title(nil, "file:///media/clip.mp4"); got != "clip.mp4" {
		t.Errorf("Title() = %q, want clip.mp4", got)
	}
	if got := Title(nil, ""); got != "" {
		t.Errorf("Title() = %q, want empty", got)
	}
}

func TestReporter_Watch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		n := &fakeNotifier{}
		r := NewReporter(n, nil)
		m := player.NewMock()
		ctx, cancel := context.WithCancel(t.Context())

		done := make(chan struct{})
		go func() {
			r.Watch(ctx, m, "/media/clip.mp4")
			close(done)
		}()
		synctest.Wait()

		m.SimulateReady()
		m.SimulateFinished()
		synctest.Wait()
		m.SimulateFailure(errors.New("boom"))
		synctest.Wait()

		sent := n.notifications()
		require.Len(t, sent, 2)
		assert.Equal(t, "Finished playing (0:00)", sent[0].Body)
		assert.Equal(t, "boom", sent[1].Body)

		cancel()
		synctest.Wait()
		select {
		case <-done:
		default:
			t.Fatal("Watch did not return after cancel")
		}
	})
}
