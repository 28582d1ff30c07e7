// Package watch reports changes to a single file, debounced.
//
// The file's directory is watched rather than the file itself so that
// editors which save by writing a temporary file and renaming it over the
// original are still seen. A burst of events within the debounce window is
// delivered as one callback.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// Event describes a batch of changes to the watched file.
type Event struct {
	Path    string
	Ops     fsnotify.Op // union of all operations in the batch
	Count   int         // number of raw events folded into this one
	Removed bool        // the file no longer exists at the end of the batch
	Time    time.Time
}

// Options configures File.
type Options struct {
	// Debounce is the quiet period. Default: DefaultDebounce.
	Debounce time.Duration

	// Logger receives watcher errors. Default: discard.
	Logger *log.Logger
}

// File calls onChange after each settled burst of changes to path and
// blocks until ctx is done. onChange runs on the watcher goroutine; a slow
// callback delays the next event, it never overlaps with it.
func File(ctx context.Context, path string, opts Options, onChange func(Event)) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	opts.Logger.Debug("watching file", "path", abs)

	timer := time.NewTimer(opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	var pending Event
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if pending.Count == 0 {
				pending = Event{Path: abs}
			}
			pending.Ops |= ev.Op
			pending.Count++
			pending.Removed = ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				pending.Removed = false
			}
			timer.Reset(opts.Debounce)

		case <-timer.C:
			if pending.Count == 0 {
				continue
			}
			pending.Time = time.Now()
			ev := pending
			pending = Event{}
			onChange(ev)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Warn("watch error", "path", abs, "err", err)
		}
	}
}
