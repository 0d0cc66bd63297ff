// Package config loads the optional vidplay.yaml player settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FormatVersion is the config file format version this package understands.
// Files declaring a different major version are rejected.
const FormatVersion = "v1.0.0"

// Duration is a time.Duration that unmarshals from YAML strings like
// "2.5s" or "800ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"800ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the optional vidplay.yaml configuration.
type Config struct {
	// Version is the config format version (semver, "v"-prefixed).
	// Empty means current.
	Version string       `yaml:"version,omitempty"`
	Player  PlayerConfig `yaml:"player"`
	// LogLevel is one of debug, info, warn, error. Empty means info.
	LogLevel string `yaml:"log_level,omitempty"`
}

// PlayerConfig contains the player timing and behavior settings.
type PlayerConfig struct {
	// ControlsHide is the inactivity window before the transport overlay
	// hides while playing.
	ControlsHide Duration `yaml:"controls_hide,omitempty"`
	// PausedFlash is how long the feed player's paused icon stays up.
	PausedFlash Duration `yaml:"paused_flash,omitempty"`
	// VisibilityThreshold is the visible-area ratio at which a feed item
	// becomes active, in (0,1].
	VisibilityThreshold float64 `yaml:"visibility_threshold,omitempty"`
	// VolumeStep is the volume delta per keyboard step, in (0,1].
	VolumeStep float64 `yaml:"volume_step,omitempty"`
}

// Defaults for unset fields.
const (
	DefaultControlsHide        = 2500 * time.Millisecond
	DefaultPausedFlash         = 800 * time.Millisecond
	DefaultVisibilityThreshold = 0.6
	DefaultVolumeStep          = 0.05
)

// LoadOptional reads vidplay.yaml from dir if present. A missing file yields
// a config with all defaults applied.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "vidplay.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read vidplay.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse vidplay.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = FormatVersion
	}
	if c.Player.ControlsHide == 0 {
		c.Player.ControlsHide = Duration(DefaultControlsHide)
	}
	if c.Player.PausedFlash == 0 {
		c.Player.PausedFlash = Duration(DefaultPausedFlash)
	}
	if c.Player.VisibilityThreshold == 0 {
		c.Player.VisibilityThreshold = DefaultVisibilityThreshold
	}
	if c.Player.VolumeStep == 0 {
		c.Player.VolumeStep = DefaultVolumeStep
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if v := strings.TrimSpace(c.Version); v != "" {
		if !semver.IsValid(v) {
			return fmt.Errorf("version %q is not a valid semver string", v)
		}
		if semver.Major(v) != semver.Major(FormatVersion) {
			return fmt.Errorf("config format %s is not supported (want %s)", v, semver.Major(FormatVersion))
		}
	}
	if c.Player.ControlsHide < 0 {
		return fmt.Errorf("player.controls_hide must not be negative")
	}
	if c.Player.PausedFlash < 0 {
		return fmt.Errorf("player.paused_flash must not be negative")
	}
	if t := c.Player.VisibilityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("player.visibility_threshold must be in [0,1] (got %v)", t)
	}
	if s := c.Player.VolumeStep; s < 0 || s > 1 {
		return fmt.Errorf("player.volume_step must be in [0,1] (got %v)", s)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not recognized", c.LogLevel)
	}
	return nil
}
