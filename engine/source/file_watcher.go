package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by sources used after Close.
var ErrClosed = errors.New("source: closed")

// DefaultDebounce is the quiet period after the last file event before the file is reloaded.
// Editors often write a file in several steps.
const DefaultDebounce = 75 * time.Millisecond

// FileWatcher loads a description file and reloads it whenever it changes on disk.
type FileWatcher interface {
	// Start loads the file once, hands it to the sink and then watches it until ctx is done or
	// Close is called. A file that fails to load is logged and the previous scene stays.
	//
	// Parameters:
	//   - ctx: stops the watch when done
	//
	// Returns:
	//   - error: the error of the first load, a watcher setup error, or ErrClosed
	Start(ctx context.Context) error

	// Reload loads the file now and hands it to the sink.
	//
	// Returns:
	//   - error: a load error, or the sink's error
	Reload() error

	// Close stops watching. Safe to call more than once.
	Close() error

	// Path returns the watched file.
	Path() string
}

type fileWatcher struct {
	mu       sync.Mutex
	path     string
	sink     Sink
	logger   *slog.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
	closed  bool
}

var _ FileWatcher = &fileWatcher{}

// NewFileWatcher creates a FileWatcher for path. Nothing is read until Start.
//
// Parameters:
//   - path: the description file, JSON or YAML by extension
//   - sink: receives each loaded description
//   - options: functional options to configure the watcher
//
// Returns:
//   - FileWatcher: the watcher
func NewFileWatcher(path string, sink Sink, options ...FileWatcherBuilderOption) FileWatcher {
	if sink == nil {
		panic("source: NewFileWatcher requires a sink")
	}
	fw := &fileWatcher{
		path:     filepath.Clean(path),
		sink:     sink,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(fw)
	}
	return fw
}

func (fw *fileWatcher) Path() string {
	return fw.path
}

func (fw *fileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return ErrClosed
	}
	if fw.watcher != nil {
		fw.mu.Unlock()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		fw.mu.Unlock()
		return fmt.Errorf("source: watch %s: %w", fw.path, err)
	}
	// The directory is watched, not the file, so rename-on-save editors keep working.
	if err := w.Add(filepath.Dir(fw.path)); err != nil {
		w.Close()
		fw.mu.Unlock()
		return fmt.Errorf("source: watch %s: %w", fw.path, err)
	}
	fw.watcher = w
	fw.mu.Unlock()

	if err := fw.Reload(); err != nil && !IsWarning(err) {
		fw.Close()
		return err
	}

	go fw.watch(ctx, w)
	fw.logger.Info("[Source] watching description file", "path", fw.path)
	return nil
}

func (fw *fileWatcher) watch(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			fw.Close()
			return
		case <-fw.done:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("[Source] watcher error", "path", fw.path, "error", err)
		}
	}
}

// schedule reloads the file once no event has arrived for the debounce period.
func (fw *fileWatcher) schedule() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		if err := fw.Reload(); err != nil && !IsWarning(err) {
			fw.logger.Warn("[Source] reload failed, keeping current scene", "path", fw.path, "error", err)
		}
	})
}

func (fw *fileWatcher) Reload() error {
	fw.mu.Lock()
	closed := fw.closed
	fw.mu.Unlock()
	if closed {
		return ErrClosed
	}

	desc, err := description.Load(fw.path)
	if err != nil {
		return err
	}
	err = fw.sink.OnSceneChanged(desc)
	if IsWarning(err) {
		fw.logger.Warn("[Source] description loaded with warnings", "path", fw.path, "error", err)
	} else if err == nil {
		fw.logger.Info("[Source] description loaded", "path", fw.path, "title", desc.Title)
	}
	return err
}

func (fw *fileWatcher) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return nil
	}
	fw.closed = true
	close(fw.done)
	if fw.timer != nil {
		fw.timer.Stop()
	}
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}
