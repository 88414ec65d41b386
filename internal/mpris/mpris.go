//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
)

const (
	identity    = "vbplay"
	trackPrefix = "/org/vbplay/Media/"
)

var mimeTypes = []string{"video/mp4", "audio/mp4", "audio/x-m4a"}

// Adapter publishes one player on the session bus under
// org.mpris.MediaPlayer2.vbplay.
type Adapter struct {
	srv    *server.Server
	bridge *bridge
	logger hclog.Logger
}

// New starts serving p, which plays the media named by cdn. The bus
// connection is made in the background; failures are only logged.
func New(p player.Interface, cdn string, logger hclog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	b := &bridge{target: p, cdn: cdn}
	a := &Adapter{
		srv:    server.NewServer(identity, b, b),
		bridge: b,
		logger: logger,
	}
	go func() {
		if err := a.srv.Listen(); err != nil {
			logger.Warn("mpris server stopped", "error", err)
		}
	}()
	logger.Debug("mpris adapter started", "cdn", cdn)
	return a, nil
}

// Resubscribe serves p from now on.
func (a *Adapter) Resubscribe(p player.Interface, cdn string) {
	a.bridge.set(p, cdn)
	a.logger.Debug("mpris adapter retargeted", "cdn", cdn)
}

// Close releases the bus name.
func (a *Adapter) Close() error {
	return a.srv.Stop()
}

// bridge answers both the root and the player interfaces. The root
// interface is static; the player interface reads the current target on
// every call.
type bridge struct {
	mu     sync.RWMutex
	target player.Interface
	cdn    string
}

func (b *bridge) set(p player.Interface, cdn string) {
	b.mu.Lock()
	b.target, b.cdn = p, cdn
	b.mu.Unlock()
}

func (b *bridge) get() (player.Interface, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.target, b.cdn
}

func (b *bridge) player() player.Interface {
	p, _ := b.get()
	return p
}

// org.mpris.MediaPlayer2

func (*bridge) Identity() (string, error) { return identity, nil }
func (*bridge) Raise() error { return nil }
func (*bridge) Quit() error { return nil }
func (*bridge) CanRaise() (bool, error) { return false, nil }
func (*bridge) CanQuit() (bool, error) { return false, nil }
func (*bridge) HasTrackList() (bool, error) { return false, nil }
func (*bridge) SupportedMimeTypes() ([]string, error) { return mimeTypes, nil }

//nolint:revive // name fixed by the server interface
func (*bridge) SupportedUriSchemes() ([]string, error) { return []string{"file"}, nil }

// org.mpris.MediaPlayer2.Player: transport

func (b *bridge) Play() error { b.player().Play(); return nil }
func (b *bridge) Pause() error { b.player().Pause(); return nil }
func (b *bridge) PlayPause() error { b.player().Toggle(); return nil }
func (*bridge) Next() error { return nil }
func (*bridge) Previous() error { return nil }

//nolint:revive // name fixed by the server interface
func (*bridge) OpenUri(string) error { return nil }

// Stop pauses and rewinds; the media stays loaded.
func (b *bridge) Stop() error {
	p := b.player()
	p.Pause()
	p.Seek(mediatime.Zero)
	return nil
}

// Seek moves the playhead by offset, clamped at zero.
func (b *bridge) Seek(offset types.Microseconds) error {
	p := b.player()
	now := p.CurrentTime()
	if !now.IsNumeric() {
		return nil
	}
	target := now.Add(micros(offset))
	if target.Before(mediatime.Zero) {
		target = mediatime.Zero
	}
	p.Seek(target)
	return nil
}

// SetPosition ignores requests naming another track or a negative
// position.
func (b *bridge) SetPosition(trackID string, position types.Microseconds) error {
	p, cdn := b.get()
	if (trackID != "" && trackID != formatTrackID(cdn)) || position < 0 {
		return nil
	}
	p.Seek(micros(position))
	return nil
}

// Playback runs at 1x or not at all; a requested rate of zero pauses.
func (b *bridge) SetRate(r float64) error {
	if r <= 0 {
		b.player().Pause()
	}
	return nil
}

func (*bridge) Rate() (float64, error) { return 1, nil }
func (*bridge) MinimumRate() (float64, error) { return 1, nil }
func (*bridge) MaximumRate() (float64, error) { return 1, nil }
func (*bridge) Volume() (float64, error) { return 1, nil }
func (*bridge) SetVolume(float64) error { return nil }

// org.mpris.MediaPlayer2.Player: state

func (b *bridge) PlaybackStatus() (types.PlaybackStatus, error) {
	p := b.player()
	if !p.Status().IsReady() || p.Finished() {
		return types.PlaybackStatusStopped, nil
	}
	if p.Rate() > 0 {
		return types.PlaybackStatusPlaying, nil
	}
	return types.PlaybackStatusPaused, nil
}

func (b *bridge) Position() (int64, error) {
	now := b.player().CurrentTime()
	if !now.IsNumeric() {
		return 0, nil
	}
	return now.Duration().Microseconds(), nil
}

func (b *bridge) Metadata() (types.Metadata, error) {
	p, cdn := b.get()
	if !p.Status().IsReady() {
		return types.Metadata{}, nil
	}
	media := p.Media()
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(cdn)),
		Title:   media.Title,
	}
	if meta.Title == "" {
		meta.Title = cdn
	}
	if media.Artist != "" {
		meta.Artist = []string{media.Artist}
	}
	if d := p.Duration(); d.IsNumeric() {
		meta.Length = types.Microseconds(d.Duration().Microseconds())
	}
	if art := FindPoster(cdn); art != "" {
		meta.ArtUrl = "file://" + art
	}
	return meta, nil
}

func (b *bridge) CanPlay() (bool, error) {
	p := b.player()
	return p.Status().IsReady() && !p.Finished(), nil
}

func (b *bridge) CanSeek() (bool, error) { return b.player().Status().IsReady(), nil }
func (*bridge) CanPause() (bool, error) { return true, nil }
func (*bridge) CanControl() (bool, error) { return true, nil }
func (*bridge) CanGoNext() (bool, error) { return false, nil }
func (*bridge) CanGoPrevious() (bool, error) { return false, nil }

func micros(us types.Microseconds) mediatime.Time {
	return mediatime.FromDuration(time.Duration(us) * time.Microsecond)
}

// formatTrackID derives a stable object path from the media identifier.
func formatTrackID(cdn string) string {
	h := fnv.New64a()
	h.Write([]byte(cdn))
	return fmt.Sprintf("%s%x", trackPrefix, h.Sum64())
}
