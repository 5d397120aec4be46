package upload

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/ragchat/pkg/logger"
)

const defaultSettle = 500 * time.Millisecond

// Op is the kind of change observed on a watched file.
type Op int

const (
	OpCreated Op = iota + 1
	OpModified
)

func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Event reports a PDF that appeared or changed in the watched directory.
type Event struct {
	Path string
	Op   Op
}

// Watcher emits events for .pdf files in a directory using fsnotify.
// Bursts of events are coalesced: a path is reported once the directory has
// been quiet for the settle period, so half-written files are not picked up.
type Watcher struct {
	watcher *fsnotify.Watcher
	settle  time.Duration
	logger  *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithSettle sets the quiet period before pending events are emitted.
func WithSettle(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.settle = d
	}
}

// WithWatcherLogger sets the logger for watch errors.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// NewWatcher creates a Watcher. Close it when done.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		settle:  defaultSettle,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Watch starts monitoring dir. The returned channel is closed when ctx is
// done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	events := make(chan Event, 100)

	go func() {
		defer close(events)

		pending := make(map[string]Op)
		timer := time.NewTimer(w.settle)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !isPDFName(event.Name) {
					continue
				}

				var op Op
				switch {
				case event.Has(fsnotify.Create):
					op = OpCreated
				case event.Has(fsnotify.Write):
					op = OpModified
				default:
					continue
				}

				// A create followed by writes is still a create.
				if prev, seen := pending[event.Name]; !seen || prev != OpCreated {
					pending[event.Name] = op
				}
				timer.Reset(w.settle)

			case <-timer.C:
				paths := make([]string, 0, len(pending))
				for path := range pending {
					paths = append(paths, path)
				}
				slices.Sort(paths)

				for _, path := range paths {
					select {
					case events <- Event{Path: path, Op: pending[path]}:
					case <-ctx.Done():
						return
					}
				}
				clear(pending)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("file watcher error", "dir", dir, "error", err)
			}
		}
	}()

	return events, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func isPDFName(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
