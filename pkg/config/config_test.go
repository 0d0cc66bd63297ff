package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vidplay.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return dir
}

func TestLoadOptionalMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}

	if cfg.Player.ControlsHide.Std() != DefaultControlsHide {
		t.Errorf("ControlsHide: got %v, want %v", cfg.Player.ControlsHide.Std(), DefaultControlsHide)
	}
	if cfg.Player.PausedFlash.Std() != DefaultPausedFlash {
		t.Errorf("PausedFlash: got %v, want %v", cfg.Player.PausedFlash.Std(), DefaultPausedFlash)
	}
	if cfg.Player.VisibilityThreshold != DefaultVisibilityThreshold {
		t.Errorf("VisibilityThreshold: got %v, want %v", cfg.Player.VisibilityThreshold, DefaultVisibilityThreshold)
	}
	if cfg.Player.VolumeStep != DefaultVolumeStep {
		t.Errorf("VolumeStep: got %v, want %v", cfg.Player.VolumeStep, DefaultVolumeStep)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", cfg.LogLevel)
	}
	if cfg.Version != FormatVersion {
		t.Errorf("Version: got %q, want %q", cfg.Version, FormatVersion)
	}
}

func TestLoadOptionalParsesValues(t *testing.T) {
	dir := writeConfig(t, `
version: v1.0.0
log_level: debug
player:
  controls_hide: 4s
  paused_flash: 500ms
  visibility_threshold: 0.75
  volume_step: 0.1
`)

	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}

	if cfg.Player.ControlsHide.Std() != 4*time.Second {
		t.Errorf("ControlsHide: got %v, want 4s", cfg.Player.ControlsHide.Std())
	}
	if cfg.Player.PausedFlash.Std() != 500*time.Millisecond {
		t.Errorf("PausedFlash: got %v, want 500ms", cfg.Player.PausedFlash.Std())
	}
	if cfg.Player.VisibilityThreshold != 0.75 {
		t.Errorf("VisibilityThreshold: got %v, want 0.75", cfg.Player.VisibilityThreshold)
	}
	if cfg.Player.VolumeStep != 0.1 {
		t.Errorf("VolumeStep: got %v, want 0.1", cfg.Player.VolumeStep)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
}

func TestLoadOptionalPartialFileKeepsDefaults(t *testing.T) {
	dir := writeConfig(t, `
player:
  controls_hide: 1s
`)

	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Player.ControlsHide.Std() != time.Second {
		t.Errorf("ControlsHide: got %v, want 1s", cfg.Player.ControlsHide.Std())
	}
	if cfg.Player.PausedFlash.Std() != DefaultPausedFlash {
		t.Errorf("PausedFlash should default: got %v", cfg.Player.PausedFlash.Std())
	}
}

func TestLoadOptionalRejectsBadVersion(t *testing.T) {
	for _, tc := range []struct {
		name    string
		version string
		wantErr string
	}{
		{"not semver", "1.0", "not a valid semver"},
		{"wrong major", "v2.0.0", "not supported"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfig(t, "version: "+tc.version+"\n")
			_, err := LoadOptional(dir)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadOptionalRejectsBadValues(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
	}{
		{"threshold above one", "player:\n  visibility_threshold: 1.5\n"},
		{"negative hide delay", "player:\n  controls_hide: -1s\n"},
		{"volume step above one", "player:\n  volume_step: 2\n"},
		{"unknown log level", "log_level: loud\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfig(t, tc.content)
			if _, err := LoadOptional(dir); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
