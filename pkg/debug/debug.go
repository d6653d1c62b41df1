// Package debug is covtree's diagnostic log. It is silent unless
// COVTREE_DEBUG is set or a command runs with -v:
//
//	COVTREE_DEBUG=1 covtree render package-tree.json
//
// Lines carry a microsecond timestamp and go to stderr, or to a file while
// the terminal browser owns the screen.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

// EnvVar is the environment variable that switches debug output on.
const EnvVar = "COVTREE_DEBUG"

const prefix = "[COVTREE_DEBUG] "

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv(EnvVar) != "" {
		enabled = true
		logger = newLogger(os.Stderr)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

func Enabled() bool {
	return enabled
}

// SetEnabled is how -v turns logging on after init.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output. The TUI points it at a file so log lines
// do not tear the alternate screen.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

// Log formats like fmt.Printf.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming records a duration measured by the caller.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogIf is Log guarded by cond.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit brackets a call, reporting its duration on exit:
//
//	defer debug.LogEnterExit("report.Generate")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump prints v with its dynamic type and field names.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}

// Section starts a visually separated block, one per command.
func Section(name string) {
	if !enabled {
		return
	}
	logger.Printf("=== %s ===", name)
}
