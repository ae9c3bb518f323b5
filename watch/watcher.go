// Package watch reports changes to investigation source documents.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 100

	defaultDebounce = 500 * time.Millisecond
)

// Config configures source document watching.
type Config struct {
	// Debounce is how long to wait for more changes before reporting.
	Debounce time.Duration

	// Extensions lists the file extensions to watch (e.g. [".yaml", ".yml"]).
	Extensions []string

	// ExcludeDirs lists directory names to skip.
	ExcludeDirs []string
}

// Operation indicates the type of file change.
type Operation string

// OpCreate, OpModify and OpDelete enumerate the reported changes.
const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Event is a debounced change of one source document.
type Event struct {
	Path      string
	Operation Operation
}

// Watcher watches directory trees for source document changes. Rewrites that
// leave a file's content unchanged are not reported.
type Watcher struct {
	config     Config
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	extensions map[string]bool
	excludes   map[string]bool

	// Explicitly named files and recursively watched trees (absolute paths)
	pathsMu sync.RWMutex
	files   map[string]bool
	trees   []string

	// Debouncing: a path is reported once it has been quiet for Debounce
	pendingMu sync.Mutex
	pending   map[string]time.Time

	hashMu sync.Mutex
	hashes map[string]string

	events  chan Event
	dropped atomic.Int64
}

// New creates a watcher.
func New(config Config, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}

	extensions := make(map[string]bool)
	if len(config.Extensions) == 0 {
		extensions[".yaml"] = true
		extensions[".yml"] = true
	}
	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}

	excludes := map[string]bool{".git": true}
	for _, dir := range config.ExcludeDirs {
		excludes[dir] = true
	}

	return &Watcher{
		config:     config,
		watcher:    fsw,
		logger:     logger,
		extensions: extensions,
		excludes:   excludes,
		files:      make(map[string]bool),
		pending:    make(map[string]time.Time),
		hashes:     make(map[string]string),
		events:     make(chan Event, eventChannelBuffer),
	}, nil
}

// Add watches path. A directory is watched recursively and reports files
// with a watched extension. A file is watched through its directory, but only
// that file is reported, whatever its extension.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		w.pathsMu.Lock()
		w.files[abs] = true
		w.pathsMu.Unlock()
		w.remember(abs)
		return w.watcher.Add(filepath.Dir(abs))
	}

	w.pathsMu.Lock()
	w.trees = append(w.trees, abs)
	w.pathsMu.Unlock()
	return w.addTree(abs)
}

// addTree adds watches to root and its subdirectories and hashes the watched
// files found there.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.watched(p) {
				w.remember(p)
			}
			return nil
		}
		if p != root && w.excluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Warn("Failed to watch directory", "path", p, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", p)
		}
		return nil
	})
}

// Events returns the channel of debounced changes. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes file system events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(max(w.config.Debounce/2, time.Millisecond))
	defer ticker.Stop()

	w.logger.Info("Watcher started", "debounce", w.config.Debounce)

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
			w.logger.Error("Watcher error", "error", err)

		case now := <-ticker.C:
			w.flushPending(now)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// DroppedEvents returns the number of events dropped due to channel overflow.
func (w *Watcher) DroppedEvents() int64 {
	return w.dropped.Load()
}

func (w *Watcher) watched(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// named reports whether path was added as a single file.
func (w *Watcher) named(path string) bool {
	w.pathsMu.RLock()
	defer w.pathsMu.RUnlock()
	return w.files[path]
}

// inTree reports whether path lies in a recursively watched directory.
func (w *Watcher) inTree(path string) bool {
	w.pathsMu.RLock()
	defer w.pathsMu.RUnlock()
	for _, root := range w.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) excluded(name string) bool {
	return w.excludes[name] || (strings.HasPrefix(name, ".") && name != ".")
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !w.named(path) {
		// Siblings of a named file are not watched
		if !w.inTree(path) {
			return
		}
		if !w.watched(path) {
			// New directories get their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() && !w.excluded(filepath.Base(path)) {
					if err := w.addTree(path); err != nil {
						w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
					}
				}
			}
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[path] = time.Now()
	w.pendingMu.Unlock()

	w.logger.Debug("Source change detected", "path", path, "op", event.Op.String())
}

// flushPending reports the pending paths that saw no event for a full
// debounce period.
func (w *Watcher) flushPending(now time.Time) {
	var paths []string
	w.pendingMu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) >= w.config.Debounce {
			paths = append(paths, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			if w.forget(path) {
				w.send(Event{Path: path, Operation: OpDelete})
			}
			continue
		}
		if err != nil {
			w.logger.Warn("Failed to read changed file", "path", path, "error", err)
			continue
		}

		hash := contentHash(content)
		w.hashMu.Lock()
		old, known := w.hashes[path]
		w.hashes[path] = hash
		w.hashMu.Unlock()

		switch {
		case !known:
			w.send(Event{Path: path, Operation: OpCreate})
		case old != hash:
			w.send(Event{Path: path, Operation: OpModify})
		}
	}
}

// remember records the current content hash of an existing file so that the
// first real change is reported as a modification.
func (w *Watcher) remember(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	w.hashMu.Lock()
	w.hashes[path] = contentHash(content)
	w.hashMu.Unlock()
}

func (w *Watcher) forget(path string) bool {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	_, known := w.hashes[path]
	delete(w.hashes, path)
	return known
}

func (w *Watcher) send(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event", "path", event.Path, "op", event.Operation)
	default:
		dropped := w.dropped.Add(1)
		w.logger.Warn("Event channel full, dropping event", "path", event.Path, "total_dropped", dropped)
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
