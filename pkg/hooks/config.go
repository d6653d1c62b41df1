// Package hooks runs user commands around covtree's outputs. Hooks live in
// .covtree/hooks.yaml of the working directory and fire before a report or
// export is written (pre-export) and after it is on disk (post-export).
//
//	hooks:
//	  pre-export:
//	    - name: fetch
//	      command: ./gradlew jacocoTestReport
//	      timeout: 5m
//	  post-export:
//	    - name: publish
//	      command: rsync -a "$COVTREE_EXPORT_PATH" web:/srv/coverage
//	      env:
//	        RSYNC_RSH: ssh -p ${SSH_PORT}
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HookPhase is the point in the pipeline a hook runs at.
type HookPhase string

const (
	// PreExport hooks run before anything is written; a failure aborts.
	PreExport HookPhase = "pre-export"
	// PostExport hooks run once the output exists; failures are reported.
	PostExport HookPhase = "post-export"
)

// OnError values.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout bounds a hook that sets no timeout of its own.
const DefaultTimeout = 30 * time.Second

// Dir and File locate the hook configuration below a project directory.
const (
	Dir  = ".covtree"
	File = "hooks.yaml"
)

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"` // Run with sh -c
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"` // Values may reference $VARS
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// Config is the parsed hooks file.
type Config struct {
	Hooks HooksByPhase `yaml:"hooks" json:"hooks"`
}

type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// ExportContext describes the output a hook runs around. It reaches the
// command as COVTREE_* environment variables.
type ExportContext struct {
	ExportPath   string // Output directory or file
	ExportFormat string // html, sqlite or markdown
	NodeCount    int
	Timestamp    time.Time
}

// ToEnv returns the context as KEY=value pairs.
func (c ExportContext) ToEnv() []string {
	return []string{
		"COVTREE_EXPORT_PATH=" + c.ExportPath,
		"COVTREE_EXPORT_FORMAT=" + c.ExportFormat,
		"COVTREE_NODE_COUNT=" + strconv.Itoa(c.NodeCount),
		"COVTREE_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Loader reads a project's hooks file.
type Loader struct {
	projectDir string
	config     *Config
	warnings   []string
}

type LoaderOption func(*Loader)

// WithProjectDir sets the directory holding .covtree (default: working
// directory).
func WithProjectDir(dir string) LoaderOption {
	return func(l *Loader) { l.projectDir = dir }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.projectDir == "" {
		l.projectDir, _ = os.Getwd()
	}
	return l
}

// Path is the hooks file the loader reads.
func (l *Loader) Path() string {
	return filepath.Join(l.projectDir, Dir, File)
}

// Load parses the hooks file. A missing file is an empty configuration.
func (l *Loader) Load() error {
	data, err := os.ReadFile(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			l.config = &Config{}
			return nil
		}
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", l.Path(), err)
	}
	l.warnings = nil
	cfg.Hooks.PreExport = l.normalize(cfg.Hooks.PreExport, PreExport)
	cfg.Hooks.PostExport = l.normalize(cfg.Hooks.PostExport, PostExport)
	l.config = &cfg
	return nil
}

// normalize fills in defaults and drops hooks without a command.
func (l *Loader) normalize(hooks []Hook, phase HookPhase) []Hook {
	var out []Hook
	for i, h := range hooks {
		if strings.TrimSpace(h.Command) == "" {
			l.warnings = append(l.warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if h.Timeout <= 0 {
			h.Timeout = DefaultTimeout
		}
		switch h.OnError {
		case OnErrorFail, OnErrorContinue:
		case "":
			h.OnError = OnErrorContinue
			if phase == PreExport {
				h.OnError = OnErrorFail
			}
		default:
			l.warnings = append(l.warnings, fmt.Sprintf("%s hook %d: unknown on_error %q, using %q", phase, i+1, h.OnError, OnErrorFail))
			h.OnError = OnErrorFail
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, h)
	}
	return out
}

// Config returns the loaded configuration, empty before Load.
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

func (l *Loader) HasHooks() bool {
	return l.config != nil && len(l.config.Hooks.PreExport)+len(l.config.Hooks.PostExport) > 0
}

// GetHooks returns the hooks of one phase.
func (l *Loader) GetHooks(phase HookPhase) []Hook {
	if l.config == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return l.config.Hooks.PreExport
	case PostExport:
		return l.config.Hooks.PostExport
	}
	return nil
}

// Warnings lists the problems Load skipped over.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// LoadDefault loads the hooks of the working directory.
func LoadDefault() (*Loader, error) {
	l := NewLoader()
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// UnmarshalYAML accepts timeouts as durations ("90s") or bare seconds (90).
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout"`
		Env     map[string]string `yaml:"env"`
		OnError string            `yaml:"on_error"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*h = Hook{Name: raw.Name, Command: raw.Command, Env: raw.Env, OnError: raw.OnError}

	if raw.Timeout == "" {
		return nil
	}
	if d, err := time.ParseDuration(raw.Timeout); err == nil {
		h.Timeout = d
		return nil
	}
	secs, err := strconv.ParseFloat(raw.Timeout, 64)
	if err != nil {
		return fmt.Errorf("invalid timeout %q", raw.Timeout)
	}
	h.Timeout = time.Duration(secs * float64(time.Second))
	return nil
}
