package notify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
)

const finishExpire = 5 * time.Second

// Reporter turns player events into desktop notifications. Each
// notification replaces the previous one so a session shows at most one.
type Reporter struct {
	notifier Notifier
	logger   hclog.Logger

	mu     sync.Mutex
	lastID uint32
}

// NewReporter returns a Reporter sending through n.
func NewReporter(n Notifier, logger hclog.Logger) *Reporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Reporter{notifier: n, logger: logger}
}

// Finished reports that the media named by cdn played to its end.
func (r *Reporter) Finished(media player.Interface, cdn string, at mediatime.Time) {
	body := "Finished playing"
	if at.IsNumeric() {
		body += " (" + formatClock(at) + ")"
	}
	r.send(Notification{
		Summary:  Title(media, cdn),
		Body:     body,
		Image:    PosterPath(cdn),
		Icon:     "media-playback-stop",
		Category: CategoryFinished,
		Expire:   finishExpire,
		Urgency:  UrgencyNormal,
	})
}

// Failed reports a player failure.
func (r *Reporter) Failed(media player.Interface, cdn string, err error) {
	r.send(Notification{
		Summary:  Title(media, cdn),
		Body:     FailureBody(err),
		Icon:     "dialog-error",
		Category: CategoryFailed,
		Expire:   -1,
		Urgency:  UrgencyCritical,
	})
}

// Watch reports the finish and failure events of p until ctx is done or p
// is closed.
func (r *Reporter) Watch(ctx context.Context, p player.Interface, cdn string) {
	sub := p.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.Finished:
			r.Finished(p, cdn, e.Time)
		case e := <-sub.StatusChanged:
			if e.Current.IsFailed() {
				r.Failed(p, cdn, e.Current.Err())
			}
		}
	}
}

func (r *Reporter) send(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ReplacesID = r.lastID
	id, err := r.notifier.Notify(n)
	if err != nil {
		r.logger.Warn(errmsg.Format(errmsg.OpNotify, err))
		return
	}
	r.lastID = id
}

// Title names the media for display: its title tag, or the base name of
// the identifier.
func Title(media player.Interface, cdn string) string {
	if media != nil {
		if t := media.Media().Title; t != "" {
			return t
		}
	}
	if base := filepath.Base(cdn); base != "." && base != "/" {
		return base
	}
	return cdn
}

// FailureBody describes err for the user.
func FailureBody(err error) string {
	if err == nil {
		return "Playback failed"
	}
	var e *errmsg.Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return errmsg.Format(e.Op, e.Err)
		}
		return errmsg.Format(e.Op, errors.New(e.Code.String()))
	}
	return err.Error()
}

func formatClock(t mediatime.Time) string {
	d := t.Duration().Round(time.Second)
	m := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, sec)
}
