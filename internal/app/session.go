package app

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/config"
	"github.com/llehouerou/vbplayer/internal/dispatch"
	"github.com/llehouerou/vbplayer/internal/feeder"
	"github.com/llehouerou/vbplayer/internal/notify"
	"github.com/llehouerou/vbplayer/internal/player"
)

// Session is one opened piece of content and what plays it.
type Session struct {
	CDN    string
	Player player.Interface
	Poster []byte

	// Feeder is set when the target is a directory of segments.
	Feeder *feeder.Feeder
	// FeedDone receives the feeder's Run result.
	FeedDone <-chan error

	closers []func() error
}

// OpenSession creates the player for target. A directory of fragmented MP4
// segments is played by a data player fed from disk; anything else is a
// CDN identifier, or an argument string when it contains "cdn=".
func OpenSession(ctx context.Context, target string, cfg *config.Config, logger hclog.Logger) (*Session, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	opts := []player.Option{
		player.WithConfig(cfg.Engine),
		player.WithLogger(logger.Named("player")),
	}

	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		return openFed(ctx, target, cfg, logger, opts)
	}

	var p *player.Player
	cdn := target
	if strings.Contains(target, "cdn=") {
		var err error
		if cdn, _, err = player.ParseArgs(target); err != nil {
			return nil, err
		}
		p = player.NewWithArgs(target, opts...)
	} else {
		p = player.New(target, map[string]any{player.EnablePDNKey: cfg.Demo.EnablePDN}, opts...)
	}

	s := &Session{CDN: cdn, Player: p, Poster: readPoster(cdn, logger)}
	s.closers = append(s.closers, p.Close)
	return s, nil
}

func openFed(ctx context.Context, dir string, cfg *config.Config, logger hclog.Logger, opts []player.Option) (*Session, error) {
	list, err := feeder.Scan(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("segments found", "dir", dir, "segments", len(list.Segments), "duration", list.Duration().String())

	q := dispatch.NewQueue("vbplay.data")
	dp := player.NewDataPlayer(append(opts, player.WithQueue(q))...)
	f := feeder.New(dp, list, feeder.Options{
		BufferAhead: cfg.Demo.BufferAhead,
		Logger:      logger.Named("feeder"),
	})

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	s := &Session{
		CDN:      dir,
		Player:   feeder.NewPlayer(dp, f),
		Feeder:   f,
		FeedDone: done,
	}
	s.closers = append(s.closers,
		func() error { cancel(); return nil },
		dp.Close,
		func() error { q.Close(); return nil },
	)
	return s, nil
}

func readPoster(cdn string, logger hclog.Logger) []byte {
	path := notify.PosterPath(cdn)
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPosterSize))
	if err != nil {
		logger.Debug("poster unreadable", "path", path, "error", err)
		return nil
	}
	return data
}

const maxPosterSize = 8 << 20

// Close releases the player and stops feeding.
func (s *Session) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.closers = nil
	return errors.Join(errs...)
}
