package player

import (
	"errors"

	"github.com/llehouerou/vbplayer/internal/buffer"
	"github.com/llehouerou/vbplayer/internal/engine"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Coding tags an appended payload.
type Coding = buffer.Coding

const (
	CodingMP4      = buffer.CodingMP4
	CodingMP4Audio = buffer.CodingMP4Audio
	CodingMP4Video = buffer.CodingMP4Video
	CodingMetadata = buffer.CodingMetadata
)

// DataPlayer is a Player fed with fragmented MP4 by the application. It
// becomes ready once the first init segment is appended. Its duration is
// always Indefinite and its seeks are exact: a seek discards everything
// buffered before it returns.
type DataPlayer struct {
	*Player
	data *engine.Data
}

// NewDataPlayer returns an empty data player.
func NewDataPlayer(opts ...Option) *DataPlayer {
	o := buildOptions(opts)
	data := engine.NewData(o.engine.ContinuityTolerance, o.logger.Named("engine.data"))
	p := newPlayer(data, o, nil, data.Discard)
	p.logger.Debug("data player created")
	return &DataPlayer{Player: p, data: data}
}

// Append buffers payload. A rejected payload leaves the player unchanged
// and the returned error says why (errmsg.ErrMalformed,
// errmsg.ErrCodingMismatch, errmsg.ErrNoInit, errmsg.ErrDiscontinuity,
// errmsg.ErrEndOfStream, errmsg.ErrFailed, errmsg.ErrClosed). An init
// segment that changes the codec of a track still holding data fails the
// player with errmsg.ErrDecode.
func (d *DataPlayer) Append(payload []byte, coding Coding) error {
	if err := d.acceptingData(errmsg.OpAppend); err != nil {
		return err
	}
	res, err := d.data.Append(payload, coding)
	if err != nil {
		if errors.Is(err, errmsg.ErrDecode) {
			d.fail(err)
		}
		return err
	}
	if res.Fragments > 0 || res.Init {
		d.kick()
	}
	return nil
}

// EndOfStream declares that nothing follows the data appended so far. The
// player finishes once it has played everything. A seek clears the
// declaration.
func (d *DataPlayer) EndOfStream() error {
	if err := d.acceptingData(errmsg.OpEndOfStream); err != nil {
		return err
	}
	if err := d.data.EndOfStream(); err != nil {
		return err
	}
	d.logger.Debug("end of stream declared")
	d.kick()
	return nil
}

// BufferedDuration returns how much playable audio and video is buffered
// ahead of the playhead.
func (d *DataPlayer) BufferedDuration() mediatime.Time {
	return d.data.Buffered(d.CurrentTime())
}

// Stats returns a snapshot of the buffers.
func (d *DataPlayer) Stats() engine.DataStats {
	return d.data.Stats()
}

func (d *DataPlayer) acceptingData(op errmsg.Op) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	switch {
	case d.closed:
		return errmsg.New(op, errmsg.CodeClosed, nil)
	case d.status.IsFailed():
		return errmsg.New(op, errmsg.CodeFailed, d.status.Err())
	}
	return nil
}
