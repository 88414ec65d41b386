package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-hclog"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "vbplayer"

// Engine defaults.
const (
	DefaultTickInterval        = 20 * time.Millisecond
	DefaultResumeThreshold     = 500 * time.Millisecond
	DefaultContinuityTolerance = time.Millisecond
	DefaultBufferAhead         = 10 * time.Second
)

type Config struct {
	Engine EngineConfig `koanf:"engine"`
	Log    LogConfig    `koanf:"log"`
	Demo   DemoConfig   `koanf:"demo"`

	// Keys rebinds actions, e.g. seek_forward = ["right", "f"].
	Keys map[string][]string `koanf:"keys"`
}

// EngineConfig tunes the playback clock and the data player buffers.
type EngineConfig struct {
	TickInterval        time.Duration `koanf:"tick_interval"`        // clock resolution while playing (default: 20ms)
	ResumeThreshold     time.Duration `koanf:"resume_threshold"`     // buffered time needed to leave a stall (default: 500ms)
	ContinuityTolerance time.Duration `koanf:"continuity_tolerance"` // allowed gap/overlap between appended fragments (default: 1ms)
}

// LogConfig controls hclog output.
type LogConfig struct {
	Level string `koanf:"level"` // trace, debug, info, warn, error, off (default: info)
	File  string `koanf:"file"`  // log file; empty means xdg state dir
}

// DemoConfig holds settings of the vbplay terminal app.
type DemoConfig struct {
	BufferAhead   time.Duration `koanf:"buffer_ahead"`  // data player: keep this much buffered (default: 10s)
	EnablePDN     bool          `koanf:"enable_pdn"`    // passed as player setting for CDN sources
	Notifications *bool         `koanf:"notifications"` // desktop notifications on finish/failure (default: true)
	MPRIS         *bool         `koanf:"mpris"`         // expose MPRIS on D-Bus (default: true)
	Resume        *bool         `koanf:"resume"`        // resume CDN sources at their last position (default: true)
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the layered configuration files.
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles reads the given TOML files in order (last wins). Missing files
// are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine.TickInterval <= 0 {
		c.Engine.TickInterval = DefaultTickInterval
	}
	if c.Engine.ResumeThreshold <= 0 {
		c.Engine.ResumeThreshold = DefaultResumeThreshold
	}
	if c.Engine.ContinuityTolerance <= 0 {
		c.Engine.ContinuityTolerance = DefaultContinuityTolerance
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Demo.BufferAhead <= 0 {
		c.Demo.BufferAhead = DefaultBufferAhead
	}
}

// Paths returns the files Load reads, lowest priority first.
func Paths() []string {
	return getConfigPaths()
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/vbplayer/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// LogLevel maps the configured level to hclog.
func (c *Config) LogLevel() hclog.Level {
	return hclog.LevelFromString(c.Log.Level)
}

// LogPath returns the log file location, creating its directory.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Log.File), 0o755); err != nil {
			return "", err
		}
		return c.Log.File, nil
	}
	return xdg.StateFile(filepath.Join(appName, "vbplay.log"))
}

// NotificationsEnabled returns true unless notifications were turned off.
func (c *Config) NotificationsEnabled() bool {
	return c.Demo.Notifications == nil || *c.Demo.Notifications
}

// MPRISEnabled returns true unless MPRIS was turned off.
func (c *Config) MPRISEnabled() bool {
	return c.Demo.MPRIS == nil || *c.Demo.MPRIS
}

// ResumeEnabled returns true unless resuming was turned off.
func (c *Config) ResumeEnabled() bool {
	return c.Demo.Resume == nil || *c.Demo.Resume
}
