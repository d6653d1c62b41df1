// Package config handles loading and saving covtree configuration.
//
// The file lives at $XDG_CONFIG_HOME/covtree/config.yaml
// (~/.config/covtree/config.yaml by default) and also records the reports
// opened most recently.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "covtree"

// MaxRecent bounds the recently opened reports list.
const MaxRecent = 10

// ReportConfig controls static HTML generation.
type ReportConfig struct {
	Title       string `yaml:"title,omitempty"`
	URLPrefix   string `yaml:"url_prefix,omitempty"`   // Prefixed to every node href
	IndentWidth int    `yaml:"indent_width,omitempty"` // Pixels per depth level
	OutputDir   string `yaml:"output_dir,omitempty"`
}

// UIConfig holds terminal browser preferences.
type UIConfig struct {
	BadgeWidth int  `yaml:"badge_width,omitempty"` // Columns reserved for the badge rail
	ShowBadges bool `yaml:"show_badges"`
	ShowDetail bool `yaml:"show_detail"` // Class detail pane beside the tree
}

// WatchConfig controls live reload of the dataset in the terminal browser.
type WatchConfig struct {
	Enabled      bool          `yaml:"enabled"`
	ForcePoll    bool          `yaml:"force_poll,omitempty"` // Skip fsnotify, e.g. on network mounts
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	Debounce     time.Duration `yaml:"debounce,omitempty"`
}

// Config is the top-level configuration for covtree.
type Config struct {
	Report ReportConfig `yaml:"report,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
	Watch  WatchConfig  `yaml:"watch,omitempty"`
	Recent []string     `yaml:"recent,omitempty"` // Most recent first
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Report: ReportConfig{
			Title:       "Coverage report",
			IndentWidth: 28,
			OutputDir:   "coverage-report",
		},
		UI: UIConfig{
			BadgeWidth: 6,
			ShowBadges: true,
			ShowDetail: true,
		},
		Watch: WatchConfig{
			Enabled:      true,
			PollInterval: 2 * time.Second,
			Debounce:     200 * time.Millisecond,
		},
	}
}

// ConfigDir returns the XDG config directory for covtree.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads ConfigPath. A missing file yields DefaultConfig.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over DefaultConfig, so absent keys keep their
// defaults. A missing file is not an error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Report.OutputDir = expandHome(cfg.Report.OutputDir)
	for i := range cfg.Recent {
		cfg.Recent[i] = expandHome(cfg.Recent[i])
	}

	return cfg, nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	if c.Report.IndentWidth < 0 {
		return fmt.Errorf("report.indent_width must not be negative, got %d", c.Report.IndentWidth)
	}
	if c.UI.BadgeWidth < 0 {
		return fmt.Errorf("ui.badge_width must not be negative, got %d", c.UI.BadgeWidth)
	}
	if c.Watch.PollInterval < 0 || c.Watch.Debounce < 0 {
		return fmt.Errorf("watch intervals must not be negative")
	}
	return nil
}

// Save writes cfg to ConfigPath.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg to path through a temporary file, so a crash while the
// recent list is updated never leaves a truncated config behind.
func SaveTo(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// AddRecent moves path to the front of the recent reports list, dropping
// duplicates and anything beyond MaxRecent.
func (c *Config) AddRecent(path string) {
	if path == "" {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	recent := []string{path}
	for _, p := range c.Recent {
		if p != path && len(recent) < MaxRecent {
			recent = append(recent, p)
		}
	}
	c.Recent = recent
}

// LastReport returns the most recently opened report, or "".
func (c Config) LastReport() string {
	if len(c.Recent) == 0 {
		return ""
	}
	return c.Recent[0]
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
