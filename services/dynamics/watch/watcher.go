// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package watch observes a series root for frame-table changes.
//
// Segmentation pipelines write frame CSVs incrementally, so raw
// notifications arrive in bursts. Changes are debounced and batched:
// the handler sees one call per settled burst, with duplicate paths
// collapsed to their latest change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is one settled file-system change under the series root.
type Change struct {
	// Path is the path of the changed file.
	Path string

	// Op is the kind of change.
	Op Op

	// Time is when the change was observed.
	Time time.Time
}

// Op is the kind of file change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler receives one debounced batch of changes.
type Handler func(changes []Change)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long a burst must stay quiet before the handler
	// runs. Default 500ms; segmentation output arrives file by file.
	Debounce time.Duration

	// BufferSize is the raw change channel capacity. Default 1000.
	BufferSize int

	// Ignore drops changes whose path matches. A pipeline that writes
	// its output under the watched root uses it to avoid reacting to
	// its own artifacts. Nil ignores nothing.
	Ignore func(path string) bool
}

// DefaultOptions returns the defaults used for nil Options.
func DefaultOptions() Options {
	return Options{
		Debounce:   500 * time.Millisecond,
		BufferSize: 1000,
	}
}

// Watcher observes a series root for adjacency CSV changes.
//
// Safe for concurrent use; the handler runs on a single goroutine.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	ignore   func(path string) bool

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// New creates a Watcher over root. Call Start to begin observing and
// Stop when done.
func New(root string, handler Handler, opts *Options) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     root,
		watcher:  fsw,
		handler:  handler,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		changes:  make(chan Change, opts.BufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the root and every current subdirectory. New time-point
// directories created while watching are picked up automatically.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop stops the watcher. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

// relevant keeps only frame-table material: CSV files and directories
// (directory events drive watch registration).
func relevant(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv") || filepath.Ext(path) == ""
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event.Name) {
				continue
			}

			// New time-point directory: watch it too.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				w.watcher.Add(event.Name)
			}

			if w.ignore != nil && w.ignore(event.Name) {
				continue
			}

			change := Change{
				Path: event.Name,
				Op:   convertOp(event.Op),
				Time: time.Now(),
			}
			select {
			case w.changes <- change:
			default:
				// Buffer full. The debouncer will still fire on what
				// was captured.
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var batch []Change
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 {
			deduped := dedupe(batch)
			if len(deduped) > 0 && w.handler != nil {
				w.handler(deduped)
			}
			batch = batch[:0]
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// dedupe keeps the latest change per path, preserving first-seen order.
func dedupe(changes []Change) []Change {
	seen := make(map[string]int)
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if idx, ok := seen[c.Path]; ok {
			out[idx] = c
			continue
		}
		seen[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}
