package feeder

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/config"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
)

// DefaultPollInterval is how often the buffer level is checked.
const DefaultPollInterval = 100 * time.Millisecond

// Sink is the part of a data player the feeder drives.
type Sink interface {
	Append(payload []byte, coding player.Coding) error
	EndOfStream() error
	BufferedDuration() mediatime.Time
	SeekWithToleranceCompletion(t, tolerance mediatime.Time, done func(finished bool))
}

var _ Sink = (*player.DataPlayer)(nil)

// Options tunes a Feeder.
type Options struct {
	BufferAhead  time.Duration // default config.DefaultBufferAhead
	PollInterval time.Duration // default DefaultPollInterval
	Logger       hclog.Logger
}

// Stats summarizes what was fed.
type Stats struct {
	Segments int   // segments appended, including re-feeds after seeks
	Bytes    int64 // bytes appended
	Next     int   // index of the next segment to append
	Total    int
	Ended    bool // end of stream declared since the last seek
}

func (s Stats) String() string {
	state := fmt.Sprintf("%d/%d", s.Next, s.Total)
	if s.Ended {
		state = "done"
	}
	return fmt.Sprintf("fed %s (%s, %d appends)", state, humanize.IBytes(uint64(s.Bytes)), s.Segments)
}

// Feeder appends the segments of a Playlist to a Sink while less than
// BufferAhead is buffered. Seeks must go through the Feeder so that
// feeding restarts at the right segment.
type Feeder struct {
	sink   Sink
	list   *Playlist
	ahead  mediatime.Time
	poll   time.Duration
	logger hclog.Logger

	wake chan struct{}

	mu       sync.Mutex
	initFed  bool
	next     int
	ended    bool
	segments int
	bytes    int64
}

// New returns a Feeder for list. Nothing is appended before Run.
func New(sink Sink, list *Playlist, opts Options) *Feeder {
	if opts.BufferAhead <= 0 {
		opts.BufferAhead = config.DefaultBufferAhead
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Feeder{
		sink:   sink,
		list:   list,
		ahead:  mediatime.FromDuration(opts.BufferAhead),
		poll:   opts.PollInterval,
		logger: opts.Logger,
		wake:   make(chan struct{}, 1),
	}
}

// Run appends the init segment, then keeps the buffer filled until ctx is
// done. It returns nil when ctx is done and the first append error
// otherwise.
func (f *Feeder) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		if err := f.fill(); err != nil {
			f.logger.Error("feeding stopped", "error", err)
			return err
		}
		select {
		case <-ctx.Done():
			f.logger.Debug("feeder stopped", "stats", f.Stats().String())
			return nil
		case <-ticker.C:
		case <-f.wake:
		}
	}
}

// Seek seeks the sink to t and restarts feeding from the segment holding t.
// done follows the sink's seek completion semantics.
func (f *Feeder) Seek(t mediatime.Time, done func(finished bool)) {
	f.SeekWithTolerance(t, mediatime.PositiveInfinity, done)
}

// SeekWithTolerance is Seek landing within [t-tolerance, t].
func (f *Feeder) SeekWithTolerance(t, tolerance mediatime.Time, done func(finished bool)) {
	f.mu.Lock()
	f.sink.SeekWithToleranceCompletion(t, tolerance, done)
	if t.IsNumeric() && len(f.list.Segments) > 0 {
		f.next = f.list.IndexAt(t)
		f.ended = false
		f.logger.Debug("refeeding after seek", "time", t.String(), "segment", f.list.Segments[f.next].Name())
	}
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Stats returns a snapshot of the feeding progress.
func (f *Feeder) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsLocked()
}

func (f *Feeder) fill() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initFed {
		if err := f.appendFile(f.list.InitPath); err != nil {
			return err
		}
		f.initFed = true
	}

	for !f.ended && f.sink.BufferedDuration().Before(f.ahead) {
		if f.next >= len(f.list.Segments) {
			if err := f.sink.EndOfStream(); err != nil {
				return errmsg.New(errmsg.OpFeed, errmsg.CodeOf(err), err)
			}
			f.ended = true
			f.logger.Debug("end of stream", "stats", f.statsLocked().String())
			break
		}
		seg := f.list.Segments[f.next]
		if err := f.appendFile(seg.Path); err != nil {
			return err
		}
		f.next++
		f.segments++
		f.logger.Trace("segment appended", "segment", seg.Name(), "start", seg.Start.String(), "end", seg.End.String())
	}
	return nil
}

func (f *Feeder) appendFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errmsg.New(errmsg.OpFeed, errmsg.CodeSourceUnavailable, err)
	}
	if err := f.sink.Append(data, player.CodingMP4); err != nil {
		return errmsg.New(errmsg.OpFeed, errmsg.CodeOf(err), fmt.Errorf("%s: %w", path, err))
	}
	f.bytes += int64(len(data))
	return nil
}

func (f *Feeder) statsLocked() Stats {
	return Stats{
		Segments: f.segments,
		Bytes:    f.bytes,
		Next:     f.next,
		Total:    len(f.list.Segments),
		Ended:    f.ended,
	}
}
