// Package watch reports created, modified and deleted document files under
// an input directory, debounced and filtered by include globs.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/spdxld/scan"
)

// Config configures the file watcher
type Config struct {
	// Root is the directory to watch
	Root string

	// Include lists doublestar globs relative to Root
	Include []string

	// Debounce is how long to wait for more changes before reporting
	Debounce time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// Event represents a document file change
type Event struct {
	// Path is the slash-separated file path relative to Root
	Path string

	// Operation is the type of change
	Operation Operation
}

// Operation indicates the type of file operation
type Operation string

const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Watcher watches for document file changes
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: collect changes before reporting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // absolute path → most recent operation

	// Content hashes, so that rewrites with identical bytes are not reported
	hashMu sync.RWMutex
	hashes map[string]string // relative path → content hash

	events   chan Event
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWatcher creates a new file watcher
func NewWatcher(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  config.Logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		events:  make(chan Event, 100),
	}, nil
}

// Events returns the channel of watch events. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins watching Root for changes until ctx is done or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	dirs, err := scan.Dirs(w.config.Root)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		w.addWatch(dir)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processEvents(ctx)
	}()

	w.logger.Info("File watcher started",
		"root", w.config.Root,
		"debounce", w.config.Debounce)

	return nil
}

// Stop stops the watcher and closes the events channel.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	w.wg.Wait()
	w.stopOnce.Do(func() { close(w.events) })
	return err
}

// Seed records the current content hashes of files relative to Root, so
// that only later changes are reported.
func (w *Watcher) Seed(rel []string) {
	for _, r := range rel {
		if hash, err := hashFile(filepath.Join(w.config.Root, filepath.FromSlash(r))); err == nil {
			w.setHash(r, hash)
		}
	}
}

func (w *Watcher) setHash(rel, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[rel] = hash
}

func (w *Watcher) getHash(rel string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[rel]
	return hash, ok
}

func (w *Watcher) addWatch(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("Failed to watch directory",
			"path", dir,
			"error", err)
		return
	}
	w.logger.Debug("Watching directory", "path", dir)
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
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
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// relative returns the slash path of p under Root.
func (w *Watcher) relative(p string) (string, bool) {
	rel, err := filepath.Rel(w.config.Root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// accepts reports whether a changed path is a watched document.
func (w *Watcher) accepts(p string) bool {
	rel, ok := w.relative(p)
	return ok && scan.Match(w.config.Include, rel)
}

// handleFSEvent processes a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	// New directories get their own watch
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if rel, ok := w.relative(path); ok && !strings.HasPrefix(filepath.Base(rel), ".") {
				w.addWatch(path)
			}
			return
		}
	}

	if !w.accepts(path) {
		return
	}

	// Accumulate pending changes
	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected",
		"path", path,
		"op", event.Op.String())
}

// flushPending reports accumulated changes in path order
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	paths := make([]string, 0, len(toProcess))
	for p := range toProcess {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		rel, _ := w.relative(path)
		if event, ok := w.classify(path, rel); ok {
			w.sendEvent(event)
		}
	}
}

// classify turns a pending path into an event, using the file's current
// state rather than the accumulated fsnotify ops.
func (w *Watcher) classify(path, rel string) (Event, bool) {
	event := Event{Path: rel}

	hash, err := hashFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("Failed to read changed file", "path", path, "error", err)
			return event, false
		}
		w.hashMu.Lock()
		_, had := w.hashes[rel]
		delete(w.hashes, rel)
		w.hashMu.Unlock()
		event.Operation = OpDelete
		return event, had
	}

	oldHash, hadHash := w.getHash(rel)
	if hadHash && oldHash == hash {
		// Content unchanged, skip
		return event, false
	}
	w.setHash(rel, hash)

	event.Operation = OpModify
	if !hadHash {
		event.Operation = OpCreate
	}
	return event, true
}

// sendEvent sends an event to the output channel
func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			"path", event.Path,
			"op", event.Operation)
	default:
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path)
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
