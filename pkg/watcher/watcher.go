// Package watcher reloads coverage inputs when they change on disk.
//
// A Watcher follows one primary input, a dataset file or a directory of
// class records, plus any number of extra directories added with WithDir.
// The browser uses it to follow package-tree.json and its classes/ sibling
// together. Changes anywhere are debounced into a single notification.
//
// fsnotify is preferred; polling takes over when fsnotify cannot be set up
// or when COVTREE_FORCE_POLL=1 (or WithForcePoll) asks for it.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/covtree/pkg/debug"
)

// DefaultPollInterval is how often inputs are stat'ed in polling mode.
const DefaultPollInterval = 2 * time.Second

// ForcePollEnv forces polling mode when set to a truthy value.
const ForcePollEnv = "COVTREE_FORCE_POLL"

var (
	// ErrFileRemoved is reported when a watched dataset file disappears.
	// Removing a record from a watched directory is an ordinary change.
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval; non-positive values are ignored.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithOnChange registers a callback run on every debounced change.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError registers a callback for watch errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) { w.forcePoll = force }
}

// WithExtension limits a primary directory watch to one file extension,
// e.g. ".json". It has no effect on a file watch.
func WithExtension(ext string) WatcherOption {
	return func(w *Watcher) { w.targets[0].ext = ext }
}

// WithDir also follows dir, counting only files with extension ext (any
// file when ext is empty). The directory may not exist yet; it is picked up
// once it appears next to a watched file.
func WithDir(dir, ext string) WatcherOption {
	return func(w *Watcher) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return
		}
		w.targets = append(w.targets, &target{path: abs, isDir: true, ext: ext})
	}
}

// target is one watched path.
type target struct {
	path  string
	isDir bool
	ext   string
	last  fingerprint
}

// fingerprint is what polling compares between ticks. For a directory it
// aggregates the matching files so that edits, additions and removals all
// move at least one field.
type fingerprint struct {
	exists bool
	mtime  time.Time
	size   int64
	files  int
}

func (t *target) matches(name string) bool {
	name = filepath.Clean(name)
	if !t.isDir {
		return name == t.path
	}
	if filepath.Dir(name) != t.path {
		return false
	}
	return t.ext == "" || strings.EqualFold(filepath.Ext(name), t.ext)
}

func (t *target) fingerprint() (fingerprint, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		return fingerprint{}, err
	}
	if !t.isDir {
		return fingerprint{exists: true, mtime: info.ModTime(), size: info.Size()}, nil
	}

	entries, err := os.ReadDir(t.path)
	if err != nil {
		return fingerprint{}, err
	}
	fp := fingerprint{exists: true}
	for _, e := range entries {
		if e.IsDir() || (t.ext != "" && !strings.EqualFold(filepath.Ext(e.Name()), t.ext)) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		fp.files++
		fp.size += fi.Size()
		if fi.ModTime().After(fp.mtime) {
			fp.mtime = fi.ModTime()
		}
	}
	return fp, nil
}

// Watcher reports changes to a set of coverage inputs.
type Watcher struct {
	targets      []*target // targets[0] is the primary input
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	debouncer *Debouncer
	fsw       *fsnotify.Watcher
	polling   bool

	mu      sync.RWMutex
	cancel  context.CancelFunc
	started bool
	changed chan struct{}
}

// NewWatcher creates a watcher whose primary input is path. Whether path is
// a directory is decided here; a missing path is treated as a file.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	primary := &target{path: abs}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		primary.isDir = true
	}

	w := &Watcher{
		targets:      []*target{primary},
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
		changed:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for i, t := range w.targets {
		fp, err := t.fingerprint()
		if err != nil && os.IsPermission(err) {
			if i == 0 {
				return ErrPermission
			}
			debug.Log("watcher: skipping %s: %v", t.path, err)
		}
		t.last = fp
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.polling = w.forcePoll || envBool(ForcePollEnv)
	if !w.polling {
		fsw, err := w.subscribe()
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.targets[0].path, err)
			w.polling = true
		} else {
			w.fsw = fsw
			go w.consume(ctx, fsw)
		}
	}
	if w.polling {
		go w.poll(ctx)
	}

	w.started = true
	return nil
}

// subscribe registers every directory the targets live in. Files are
// watched through their parent so atomic renames are seen.
func (w *Watcher) subscribe() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for i, t := range w.targets {
		dir := t.path
		if !t.isDir {
			dir = filepath.Dir(t.path)
		}
		if seen[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			if i == 0 {
				fsw.Close()
				return nil, err
			}
			// Extra directories that do not exist yet are followed through
			// their parent.
			parent := filepath.Dir(dir)
			if !seen[parent] && fsw.Add(parent) == nil {
				seen[parent] = true
			}
			continue
		}
		seen[dir] = true
	}
	return fsw, nil
}

// Stop stops watching. Changed stays open; a blocked receiver is released
// at process exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether polling replaced fsnotify.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// IsDir reports whether the primary input is a directory.
func (w *Watcher) IsDir() bool { return w.targets[0].isDir }

// Changed receives once per debounced change. Notifications that arrive
// while one is pending are merged.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Path returns the absolute path of the primary input.
func (w *Watcher) Path() string { return w.targets[0].path }

// Paths returns every watched path, primary first.
func (w *Watcher) Paths() []string {
	out := make([]string, len(w.targets))
	for i, t := range w.targets {
		out[i] = t.path
	}
	return out
}

func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// classify returns the target an event belongs to, or nil. An extra
// directory being created counts as a change to it.
func (w *Watcher) classify(name string) (*target, int) {
	for i, t := range w.targets {
		if (t.isDir && filepath.Clean(name) == t.path) || t.matches(name) {
			return t, i
		}
	}
	return nil, -1
}

func (w *Watcher) consume(ctx context.Context, fsw *fsnotify.Watcher) {
	const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			t, idx := w.classify(ev.Name)
			if t == nil || ev.Op&changeOps == 0 {
				continue
			}
			if idx == 0 && !t.isDir && ev.Has(fsnotify.Remove) {
				w.onError(ErrFileRemoved)
				continue
			}
			if t.isDir && ev.Name == t.path && ev.Has(fsnotify.Create) {
				// A late directory: start receiving its own events.
				if err := fsw.Add(t.path); err != nil {
					w.onError(err)
				}
			}
			w.debouncer.Trigger(w.notify)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		dirty := false
		for i, t := range w.targets {
			fp, err := t.fingerprint()
			switch {
			case err == nil, os.IsNotExist(err):
			case os.IsPermission(err):
				w.onError(ErrPermission)
			default:
				w.onError(err)
			}

			w.mu.Lock()
			prev := t.last
			t.last = fp
			w.mu.Unlock()

			switch {
			case i == 0 && !t.isDir && prev.exists && !fp.exists:
				w.onError(ErrFileRemoved)
			case fp != prev && (fp.exists || t.isDir):
				dirty = true
			}
		}
		if dirty {
			w.debouncer.Trigger(w.notify)
		}
	}
}

func (w *Watcher) notify() {
	if !w.IsStarted() {
		return
	}
	debug.Log("watcher: %s changed", w.targets[0].path)
	w.onChange()

	select {
	case w.changed <- struct{}{}:
	default:
	}
}
