// Package watch re-analyzes a local source tree whenever relevant
// files change. Changes are debounced so a burst of edits (a save-all,
// a git checkout) produces a single re-analysis instead of one per
// file.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/signalbox/signalbox/analysis"
	"github.com/signalbox/signalbox/fetch"
)

// Event carries the outcome of one debounced re-analysis pass.
type Event struct {
	// Changed lists the root-relative paths that triggered the pass,
	// sorted for stable output.
	Changed []string

	// Run is the analysis result. Nil when the analysis failed.
	Run *analysis.Run

	// Err is set when loading or analyzing the tree failed.
	Err error
}

// Config configures a Watcher.
type Config struct {
	// Root is the directory to watch.
	Root string

	// Debounce is how long to wait for more changes before
	// re-analyzing. Defaults to 2 seconds.
	Debounce time.Duration

	// Analyzer runs the analysis. Defaults to analysis.New().
	Analyzer *analysis.Analyzer

	// Logger for watch events.
	Logger *slog.Logger
}

// Watcher watches a source tree and emits a fresh analysis after each
// debounced burst of changes.
type Watcher struct {
	config   Config
	analyzer *analysis.Analyzer
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{} // relative path → seen this burst

	events chan Event
}

// New creates a watcher for the given root. Call Start to begin
// watching.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	analyzer := config.Analyzer
	if analyzer == nil {
		analyzer = analysis.New()
	}

	if config.Debounce <= 0 {
		config.Debounce = 2 * time.Second
	}

	return &Watcher{
		config:   config,
		analyzer: analyzer,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]struct{}),
		events:   make(chan Event, 16),
	}, nil
}

// Events returns the channel of analysis events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins watching. It returns once the initial watches are in
// place; events are delivered until ctx is cancelled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("watching source tree",
		slog.String("root", w.config.Root),
		slog.Duration("debounce", w.config.Debounce))

	return nil
}

// Stop closes the underlying fsnotify watcher. The event channel is
// closed by the processing goroutine once it drains, so a flush that
// is already running can still deliver its result.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if path != root && (fetch.SkippedDir(base) || strings.HasPrefix(base, ".")) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", slog.String("path", path), slog.String("error", err.Error()))
		} else {
			w.logger.Debug("watching directory", slog.String("path", path))
		}
		return nil
	})
}

// processEvents owns the event channel: it is the only sender and
// closes it on exit, so Stop can never race a send.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	// New directories need their own watch before their contents
	// produce events.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
	}

	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !fetch.Relevant(rel) {
		return
	}

	w.pendingMu.Lock()
	w.pending[rel] = struct{}{}
	w.pendingMu.Unlock()

	w.logger.Debug("file change detected", slog.String("path", rel), slog.String("op", event.Op.String()))
}

func (w *Watcher) handleNewDirectory(path string) {
	base := filepath.Base(path)
	if fetch.SkippedDir(base) || strings.HasPrefix(base, ".") {
		return
	}

	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// flushPending runs one analysis pass over the whole tree if any
// relevant files changed since the last tick.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	sort.Strings(changed)
	w.logger.Info("changes detected, re-analyzing", slog.Int("files", len(changed)))

	event := Event{Changed: changed}

	files, err := fetch.LoadDirectory(w.config.Root)
	if err != nil {
		event.Err = err
		w.sendEvent(event)
		return
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	run, err := w.analyzer.Analyze(ctx, w.config.Root, paths, files)
	if err != nil {
		event.Err = err
		w.sendEvent(event)
		return
	}

	event.Run = run
	w.sendEvent(event)
}

func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
	default:
		w.logger.Warn("event channel full, dropping analysis result")
	}
}
