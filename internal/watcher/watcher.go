// Package watcher keeps the index in step with live filesystem changes.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/walker"
)

// DefaultDebounce is how long a path must stay quiet before its change is
// forwarded. Editors often write a file several times in quick succession.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches directory trees recursively and invokes callbacks when
// files appear, change, or vanish. It carries no indexing logic itself; the
// callbacks decide what a change means.
type Watcher struct {
	roots      []string
	extensions map[string]bool
	ignores    map[string]bool
	onChange   func(path string)
	onRemove   func(path string)
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	timers   map[string]*time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for watch events.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the quiet period before a change is forwarded.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnores overrides the directory names pruned from watched trees, so a
// watcher can share the walker's configured ignore list. An empty list keeps
// the defaults.
func WithIgnores(names []string) Option {
	return func(w *Watcher) {
		if len(names) == 0 {
			return
		}
		w.ignores = make(map[string]bool, len(names))
		for _, name := range names {
			w.ignores[name] = true
		}
	}
}

// NewWatcher creates a watcher over roots. Only files whose extension (lower
// case, no dot) is in extensions trigger callbacks; an empty list means every
// file. onChange fires for created and modified files, onRemove for removed
// and renamed-away ones.
func NewWatcher(roots, extensions []string, onChange, onRemove func(path string), opts ...Option) *Watcher {
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	ignored := make(map[string]bool, len(walker.DefaultIgnores))
	for _, name := range walker.DefaultIgnores {
		ignored[name] = true
	}
	w := &Watcher{
		roots:      roots,
		extensions: extSet,
		ignores:    ignored,
		onChange:   onChange,
		onRemove:   onRemove,
		debounce:   DefaultDebounce,
		logger:     zap.NewNop(),
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start registers all roots and begins dispatching events. It returns once
// watching is set up; events are handled on a background goroutine until
// Stop is called.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.fsw = fsw

	for _, root := range w.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			_ = fsw.Close()
			w.fsw = nil
			return err
		}
		if err := w.addTree(abs); err != nil {
			_ = fsw.Close()
			w.fsw = nil
			return fmt.Errorf("watch %s: %w", abs, err)
		}
	}

	w.started = true
	w.logger.Info("watching", zap.Strings("roots", w.roots))
	go w.run()
	return nil
}

// addTree registers dir and all its subdirectories, pruning the same
// directories the walker prunes so both sides agree on scope.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (w.ignores[name] || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name

	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if ev.Op.Has(fsnotify.Create) {
				w.handleNewDirectory(path)
			}
			return
		}
		if w.matches(path) {
			w.debounceChange(path)
		}
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		if w.matches(path) && w.onRemove != nil {
			w.logger.Debug("file removed", zap.String("path", path))
			w.onRemove(path)
		}
	}
}

// handleNewDirectory registers a directory that appeared inside a watched
// tree and forwards the files it already contains; a directory moved in
// arrives as one Create event with its contents in place.
func (w *Watcher) handleNewDirectory(dir string) {
	name := filepath.Base(dir)
	if strings.HasPrefix(name, ".") || w.ignores[name] {
		return
	}

	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()
	if fsw == nil {
		return
	}

	w.logger.Debug("new directory", zap.String("path", dir))
	if err := w.addTree(dir); err != nil {
		w.logger.Warn("failed to watch new directory", zap.String("path", dir), zap.Error(err))
	}
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if w.matches(path) {
			w.debounceChange(path)
		}
		return nil
	})
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return w.extensions[ext]
}

func (w *Watcher) debounceChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.logger.Debug("file changed", zap.String("path", path))
		if w.onChange != nil {
			w.onChange(path)
		}
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

// Stop ends watching and releases resources. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.fsw == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	_ = w.fsw.Close()
	w.fsw = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
