//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/logs/vbplay.log",
			expected: filepath.Join(home, "logs", "vbplay.log"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/var/log/vbplay.log",
			expected: "/var/log/vbplay.log",
		},
		{
			name:     "relative path unchanged",
			input:    "logs/vbplay.log",
			expected: "logs/vbplay.log",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() returned %d paths, want 2", len(paths))
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}
	if filepath.Base(filepath.Dir(paths[0])) != appName {
		t.Errorf("first config path = %q, want it under a %q directory", paths[0], appName)
	}
}

func TestLoadFiles_NoFilesGivesDefaults(t *testing.T) {
	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFiles() error: %v", err)
	}

	if cfg.Engine.TickInterval != DefaultTickInterval {
		t.Errorf("TickInterval = %v, want %v", cfg.Engine.TickInterval, DefaultTickInterval)
	}
	if cfg.Engine.ResumeThreshold != DefaultResumeThreshold {
		t.Errorf("ResumeThreshold = %v, want %v", cfg.Engine.ResumeThreshold, DefaultResumeThreshold)
	}
	if cfg.Engine.ContinuityTolerance != DefaultContinuityTolerance {
		t.Errorf("ContinuityTolerance = %v, want %v", cfg.Engine.ContinuityTolerance, DefaultContinuityTolerance)
	}
	if cfg.Demo.BufferAhead != DefaultBufferAhead {
		t.Errorf("BufferAhead = %v, want %v", cfg.Demo.BufferAhead, DefaultBufferAhead)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if !cfg.NotificationsEnabled() || !cfg.MPRISEnabled() || !cfg.ResumeEnabled() {
		t.Error("optional demo features should default to enabled")
	}
}

func TestLoadFiles_LastFileWins(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")

	writeFile(t, base, `
[engine]
tick_interval = "50ms"
resume_threshold = "2s"

[log]
level = "DEBUG"
`)
	writeFile(t, local, `
[engine]
tick_interval = "10ms"

[demo]
buffer_ahead = "30s"
enable_pdn = true
mpris = false
`)

	cfg, err := LoadFiles(base, local)
	if err != nil {
		t.Fatalf("LoadFiles() error: %v", err)
	}

	if cfg.Engine.TickInterval != 10*time.Millisecond {
		t.Errorf("TickInterval = %v, want 10ms", cfg.Engine.TickInterval)
	}
	if cfg.Engine.ResumeThreshold != 2*time.Second {
		t.Errorf("ResumeThreshold = %v, want 2s", cfg.Engine.ResumeThreshold)
	}
	if cfg.Demo.BufferAhead != 30*time.Second {
		t.Errorf("BufferAhead = %v, want 30s", cfg.Demo.BufferAhead)
	}
	if !cfg.Demo.EnablePDN {
		t.Error("EnablePDN = false, want true")
	}
	if cfg.MPRISEnabled() {
		t.Error("MPRISEnabled() = true, want false")
	}
	if !cfg.NotificationsEnabled() {
		t.Error("NotificationsEnabled() = false, want true")
	}
	if cfg.LogLevel() != hclog.Debug {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
}

func TestLoadFiles_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "[engine\ntick_interval = ")

	if _, err := LoadFiles(path); err == nil {
		t.Error("LoadFiles() with invalid TOML should fail")
	}
}

func TestLogPath_Explicit(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Log.File = filepath.Join(dir, "nested", "vbplay.log")

	path, err := cfg.LogPath()
	if err != nil {
		t.Fatalf("LogPath() error: %v", err)
	}
	if path != cfg.Log.File {
		t.Errorf("LogPath() = %q, want %q", path, cfg.Log.File)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("log directory was not created: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFiles_Keys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[keys]
seek_forward = ["right", "f"]
quit = ["Q"]
`)

	cfg, err := LoadFiles(path)
	if err != nil {
		t.Fatalf("LoadFiles() error: %v", err)
	}
	if got := cfg.Keys["seek_forward"]; len(got) != 2 || got[1] != "f" {
		t.Errorf("keys.seek_forward = %v, want [right f]", got)
	}
	if got := cfg.Keys["quit"]; len(got) != 1 || got[0] != "Q" {
		t.Errorf("keys.quit = %v, want [Q]", got)
	}
}
