package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vanderheijden86/covtree/pkg/debug"
)

// maxStderrInSummary caps each stderr excerpt in Summary.
const maxStderrInSummary = 200

// HookResult is the outcome of one hook run.
type HookResult struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Error    error
	Duration time.Duration
}

// Executor runs the hooks of a Config against one export.
type Executor struct {
	config  *Config
	context ExportContext
	results []HookResult
}

func NewExecutor(config *Config, ctx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, context: ctx}
}

// RunPreExport runs pre-export hooks in order and stops at the first failing
// hook whose on_error is "fail".
func (e *Executor) RunPreExport() error {
	for _, h := range e.config.Hooks.PreExport {
		r := e.run(h, PreExport)
		if !r.Success && h.OnError == OnErrorFail {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook, then reports the failures of
// those marked on_error "fail".
func (e *Executor) RunPostExport() error {
	var errs []error
	for _, h := range e.config.Hooks.PostExport {
		r := e.run(h, PostExport)
		if !r.Success && h.OnError == OnErrorFail {
			errs = append(errs, fmt.Errorf("post-export hook %q failed: %w", h.Name, r.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) run(h Hook, phase HookPhase) HookResult {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", h.Command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", h.Command)
	}
	cmd.Env = e.env(h)
	// Background children can hold the pipes open past the deadline
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := HookResult{
		Hook:     h,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Error:    err,
		Duration: time.Since(start),
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.Success = false
		r.Error = fmt.Errorf("timed out after %s", timeout)
	}
	debug.Log("hooks: %s %q finished in %s (ok=%v)", phase, h.Name, r.Duration, r.Success)

	e.results = append(e.results, r)
	return r
}

// env is the process environment plus the export context plus the hook's own
// variables, expanded against the first two.
func (e *Executor) env(h Hook) []string {
	exported := e.context.ToEnv()
	lookup := make(map[string]string, len(exported))
	for _, kv := range exported {
		k, v, _ := strings.Cut(kv, "=")
		lookup[k] = v
	}

	env := append(os.Environ(), exported...)
	for k, v := range h.Env {
		env = append(env, k+"="+os.Expand(v, func(name string) string {
			if val, ok := lookup[name]; ok {
				return val
			}
			return os.Getenv(name)
		}))
	}
	return env
}

// Results returns every hook run so far, in order.
func (e *Executor) Results() []HookResult {
	return e.results
}

// Summary describes the runs for the terminal; empty when nothing ran.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var ok, failed int
	for _, r := range e.results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hooks: %d succeeded, %d failed\n", ok, failed)
	for _, r := range e.results {
		if r.Success {
			fmt.Fprintf(&sb, "  ✓ %s %s (%s)\n", r.Phase, r.Hook.Name, r.Duration.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(&sb, "  ✗ %s %s: %v\n", r.Phase, r.Hook.Name, r.Error)
		if r.Stderr != "" {
			excerpt := strings.ReplaceAll(r.Stderr, "\n", " ")
			fmt.Fprintf(&sb, "    stderr: %s\n", truncate(excerpt, maxStderrInSummary))
		}
	}
	return sb.String()
}

// RunHooks loads projectDir's hooks into an executor. It returns nil, nil
// when hooks are disabled or none are configured.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	l := NewLoader(WithProjectDir(projectDir))
	if err := l.Load(); err != nil {
		return nil, err
	}
	for _, w := range l.Warnings() {
		debug.Log("hooks: %s", w)
	}
	if !l.HasHooks() {
		return nil, nil
	}
	return NewExecutor(l.Config(), ctx), nil
}

// truncate limits s to n bytes, ending in "..." when cut. The cut never
// splits a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut, tail := n-3, "..."
	if n <= 3 {
		cut, tail = n, ""
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + tail
}
