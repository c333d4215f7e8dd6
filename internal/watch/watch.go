// Package watch reports changes to tenant manifests in a directory so the
// runtime can reload them.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher could not start.
var ErrWatcherFailed = errors.New("watch: failed to initialize filesystem watcher")

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Op is what happened to a manifest.
type Op int

const (
	// OpChanged covers creation, writes and renames into the directory.
	OpChanged Op = iota
	// OpRemoved means the file no longer exists.
	OpRemoved
)

func (o Op) String() string {
	if o == OpRemoved {
		return "removed"
	}
	return "changed"
}

// Event is one coalesced change.
type Event struct {
	Path string
	Op   Op
}

// Handler receives events on the goroutine that called Run.
type Handler func(Event)

// Watcher watches a single directory.
type Watcher struct {
	dir      string
	fs       *fsnotify.Watcher
	log      *zap.Logger
	debounce time.Duration
	match    func(path string) bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithFilter limits events to paths accepted by match.
func WithFilter(match func(path string) bool) Option {
	return func(w *Watcher) { w.match = match }
}

// New starts watching dir.
func New(dir string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	w := &Watcher{
		dir:      filepath.Clean(dir),
		fs:       fw,
		log:      zap.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", w.dir, err)
	}
	return w, nil
}

// Run delivers coalesced events to fn until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	pending := map[string]Op{}
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			op, relevant := w.classify(ev)
			if !relevant {
				continue
			}
			pending[filepath.Clean(ev.Name)] = op
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.String("dir", w.dir), zap.Error(err))
		case <-timer.C:
			w.flush(pending, fn)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) classify(ev fsnotify.Event) (Op, bool) {
	if w.match != nil && !w.match(ev.Name) {
		return OpChanged, false
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return OpRemoved, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return OpChanged, true
	}
	return OpChanged, false
}

func (w *Watcher) flush(pending map[string]Op, fn Handler) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		ev := Event{Path: path, Op: pending[path]}
		delete(pending, path)
		w.log.Debug("manifest event", zap.String("path", ev.Path), zap.Stringer("op", ev.Op))
		fn(ev)
	}
}
