package engine

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/buffer"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/fmp4"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Data plays fragments appended by the application.
type Data struct {
	logger hclog.Logger

	mu       sync.Mutex
	buf      *buffer.Set
	ready    chan struct{} // closed once the first init segment is accepted
	isReady  bool
	closed   bool
	closedCh chan struct{}
}

var _ Engine = (*Data)(nil)

// DataStats is a snapshot of the buffers.
type DataStats struct {
	Kinds   []fmp4.Kind
	Bytes   int
	Horizon mediatime.Time
	Ended   bool
}

// NewData returns an empty data engine. tolerance bounds the gap allowed
// between consecutive fragments of one kind.
func NewData(tolerance time.Duration, logger hclog.Logger) *Data {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Data{
		logger:   logger,
		buf:      buffer.New(tolerance),
		ready:    make(chan struct{}),
		closedCh: make(chan struct{}),
	}
}

// Append commits payload to the buffers. See buffer.Set.Append for the
// rejection rules.
func (d *Data) Append(payload []byte, coding buffer.Coding) (buffer.Appended, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return buffer.Appended{}, errmsg.New(errmsg.OpAppend, errmsg.CodeClosed, nil)
	}
	res, err := d.buf.Append(payload, coding)
	if err != nil {
		d.logger.Debug("append rejected", "coding", coding.String(), "size", len(payload), "error", err)
		return res, err
	}
	if res.Init && !d.isReady {
		d.isReady = true
		close(d.ready)
	}
	d.logger.Trace("appended", "coding", coding.String(), "fragments", res.Fragments, "buffer", d.buf.String())
	return res, nil
}

// EndOfStream declares that no more data will be appended until the next
// Discard.
func (d *Data) EndOfStream() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errmsg.New(errmsg.OpEndOfStream, errmsg.CodeClosed, nil)
	}
	d.buf.EndOfStream()
	return nil
}

// Discard drops buffered data and restarts the buffers at pos.
func (d *Data) Discard(pos mediatime.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.Discard(pos)
}

// Buffered returns the playable duration ahead of pos.
func (d *Data) Buffered(pos mediatime.Time) mediatime.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Buffered(pos)
}

// Stats returns a snapshot of the buffers.
func (d *Data) Stats() DataStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, _ := d.buf.Horizon()
	return DataStats{
		Kinds:   d.buf.Kinds(),
		Bytes:   d.buf.Bytes(),
		Horizon: h,
		Ended:   d.buf.Ended(),
	}
}

// Prepare waits for the first init segment.
func (d *Data) Prepare(ctx context.Context) (Media, error) {
	select {
	case <-d.ready:
	case <-d.closedCh:
		return Media{}, errmsg.New(errmsg.OpPrepare, errmsg.CodeClosed, nil)
	case <-ctx.Done():
		return Media{}, ctx.Err()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	m := Media{Duration: mediatime.Indefinite}
	for _, k := range d.buf.Kinds() {
		t, _ := d.buf.Track(k)
		if t.Codec != "" {
			m.Codecs = append(m.Codecs, t.Codec)
		}
		if k == fmp4.KindVideo {
			m.Video = t.Rect
		}
	}
	return m, nil
}

// Seek is exact; buffered data is discarded by the caller before the seek
// is issued.
func (d *Data) Seek(ctx context.Context, target, _ mediatime.Time) (mediatime.Time, error) {
	if err := ctx.Err(); err != nil {
		return mediatime.Invalid, err
	}
	return Clamp(target, mediatime.Indefinite), nil
}

// Horizon returns the buffered horizon, or zero before any audio or video
// track is initialized.
func (d *Data) Horizon() mediatime.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.buf.Horizon()
	if !ok {
		return mediatime.Zero
	}
	return h
}

func (d *Data) Ended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Ended()
}

func (d *Data) Advance(pos mediatime.Time) ([]Metadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.Release(pos)
	samples := d.buf.TakeMetadata(pos)
	if len(samples) == 0 {
		return nil, nil
	}
	out := make([]Metadata, len(samples))
	for i, s := range samples {
		out[i] = Metadata{Time: s.Time, Data: s.Data}
	}
	return out, nil
}

func (d *Data) Frame(pos mediatime.Time) (image.Rectangle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Frame(pos)
}

func (d *Data) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	close(d.closedCh)
	return nil
}
