package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func withBuffer(t *testing.T, on bool) *bytes.Buffer {
	t.Helper()
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() {
		enabled, logger = prevEnabled, prevLogger
	})

	var buf bytes.Buffer
	SetEnabled(on)
	SetOutput(&buf)
	return &buf
}

func TestDisabledWritesNothing(t *testing.T) {
	buf := withBuffer(t, false)

	Log("hello %d", 1)
	LogTiming("op", time.Second)
	LogIf(true, "cond")
	LogEnterExit("fn")()
	Dump("v", 1)
	Section("s")

	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestEnabledOutput(t *testing.T) {
	buf := withBuffer(t, true)

	Log("loaded %d nodes", 12)
	LogTiming("tree.New", 3*time.Millisecond)
	LogIf(false, "skipped")
	LogIf(true, "kept")
	Section("render")
	Dump("count", 7)
	LogEnterExit("generate")()

	out := buf.String()
	for _, want := range []string{
		prefix,
		"loaded 12 nodes",
		"tree.New took 3ms",
		"kept",
		"=== render ===",
		"count: int = 7",
		"-> generate",
		"<- generate",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("LogIf(false) should not write")
	}
}

func TestSetEnabledCreatesLogger(t *testing.T) {
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() { enabled, logger = prevEnabled, prevLogger })

	logger = nil
	SetEnabled(true)
	if !Enabled() || logger == nil {
		t.Fatal("SetEnabled(true) should create a logger")
	}
	SetEnabled(false)
	if Enabled() {
		t.Error("SetEnabled(false) should disable logging")
	}
}
