// Command vbplay plays a CDN identifier, or a directory of fragmented MP4
// segments, in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/app"
	"github.com/llehouerou/vbplayer/internal/config"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mpris"
	"github.com/llehouerou/vbplayer/internal/notify"
	"github.com/llehouerou/vbplayer/internal/state"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <cdn | segment-dir | \"cdn=... key=value\">\n", os.Args[0])
		flag.PrintDefaults()
	}
	configPath := flag.String("config", "", "extra TOML config file, applied last")
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(target, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfig, err))
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Playback works without persistence.
	var stateMgr state.Interface
	if mgr, err := state.Open(); err != nil {
		logger.Warn("state unavailable", "error", err)
	} else {
		stateMgr = mgr
		defer mgr.Close()
	}

	sess, err := app.OpenSession(ctx, target, cfg, logger)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpOpen, target, err))
	}
	defer sess.Close()

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(sess.Player, sess.CDN, logger.Named("mpris"))
		if err != nil {
			logger.Warn(errmsg.Format(errmsg.OpMPRISExpose, err))
		} else {
			defer adapter.Close()
		}
	}

	if cfg.NotificationsEnabled() {
		n, err := notify.New()
		if err != nil {
			logger.Warn(errmsg.Format(errmsg.OpNotify, err))
		} else {
			go notify.NewReporter(n, logger.Named("notify")).Watch(ctx, sess.Player, sess.CDN)
		}
	}

	p := tea.NewProgram(app.New(sess, stateMgr, cfg, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	logger.Info("bye", "cdn", sess.CDN)
	return nil
}

func loadConfig(extra string) (*config.Config, error) {
	if extra == "" {
		return config.Load()
	}
	return config.LoadFiles(append(config.Paths(), extra)...)
}

func newLogger(cfg *config.Config) (hclog.Logger, *os.File, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "vbplay",
		Level:  cfg.LogLevel(),
		Output: f,
	})
	return logger, f, nil
}
