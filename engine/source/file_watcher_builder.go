package source

import (
	"log/slog"
	"time"
)

// FileWatcherBuilderOption is a functional option for configuring a FileWatcher.
type FileWatcherBuilderOption func(*fileWatcher)

// WithDebounce sets the quiet period before a changed file is reloaded. Non-positive values
// keep DefaultDebounce.
func WithDebounce(d time.Duration) FileWatcherBuilderOption {
	return func(fw *fileWatcher) {
		if d > 0 {
			fw.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger of a FileWatcher.
func WithWatcherLogger(logger *slog.Logger) FileWatcherBuilderOption {
	return func(fw *fileWatcher) {
		if logger != nil {
			fw.logger = logger
		}
	}
}
