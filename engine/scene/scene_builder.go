package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// SceneBuilderOption is a functional option for configuring a Builder.
// Use the With* functions to create options.
type SceneBuilderOption func(b *builder)

// WithLogger sets the logger used while building graphs.
//
// Parameters:
//   - logger: the logger, nil keeps slog.Default()
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithWorkerPool sets the pool that animation registries fan large updates out to.
// Without a pool every registry updates on the calling goroutine.
//
// Parameters:
//   - pool: the worker pool, shared by every graph the builder produces
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkerPool(pool worker.DynamicWorkerPool) SceneBuilderOption {
	return func(b *builder) {
		b.pool = pool
	}
}

// WithBatchCapacity sets the instance capacity of every batch bucket. Defaults to
// batch.DefaultCapacity.
func WithBatchCapacity(capacity int) SceneBuilderOption {
	return func(b *builder) {
		if capacity > 0 {
			b.batchCapacity = capacity
		}
	}
}

// WithSegments sets the tessellation of curved primitive meshes.
func WithSegments(segments int) SceneBuilderOption {
	return func(b *builder) {
		b.segments = segments
	}
}
