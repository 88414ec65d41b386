package engine

import (
	"context"
	"image"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/source"
)

// Stream plays a source resolved from a CDN identifier. All of the content
// is available once prepared.
type Stream struct {
	resolver *source.Resolver
	cdn      string
	opts     source.Options
	logger   hclog.Logger

	mu     sync.RWMutex
	info   source.Info
	ready  bool
	closed bool
}

var _ Engine = (*Stream)(nil)

// NewStream returns an engine for cdn. Nothing is opened until Prepare.
func NewStream(resolver *source.Resolver, cdn string, opts source.Options, logger hclog.Logger) *Stream {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if resolver == nil {
		resolver = source.NewResolver(logger.Named("source"))
	}
	return &Stream{
		resolver: resolver,
		cdn:      cdn,
		opts:     opts,
		logger:   logger,
	}
}

func (s *Stream) Prepare(ctx context.Context) (Media, error) {
	info, err := s.resolver.Resolve(ctx, s.cdn, s.opts)
	if err != nil {
		return Media{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Media{}, errmsg.New(errmsg.OpPrepare, errmsg.CodeClosed, nil)
	}
	s.info = info
	s.ready = true
	s.logger.Debug("stream prepared", "uri", info.URI, "duration", info.Duration.String())

	return Media{
		Title:    info.Title,
		Artist:   info.Artist,
		Duration: info.Duration,
		Video:    info.Video,
		Codecs:   info.Codecs,
	}, nil
}

func (s *Stream) Seek(ctx context.Context, target, tolerance mediatime.Time) (mediatime.Time, error) {
	if err := ctx.Err(); err != nil {
		return mediatime.Invalid, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return mediatime.Invalid, errmsg.Errorf(errmsg.OpSeek, errmsg.CodeInvalidArgument, "stream not prepared")
	}
	target = Clamp(target, s.info.Duration)
	return ResolveSeek(s.info.Keyframes, target, tolerance), nil
}

// Horizon is the duration, or +Inf when the source has none.
func (s *Stream) Horizon() mediatime.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return mediatime.Zero
	}
	if !s.info.Duration.IsNumeric() {
		return mediatime.PositiveInfinity
	}
	return s.info.Duration
}

func (s *Stream) Ended() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready && s.info.Duration.IsNumeric()
}

func (s *Stream) Advance(mediatime.Time) ([]Metadata, error) { return nil, nil }

func (s *Stream) Frame(pos mediatime.Time) (image.Rectangle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready || !s.info.HasVideo() || pos.Before(mediatime.Zero) {
		return image.Rectangle{}, false
	}
	return s.info.Video, true
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
