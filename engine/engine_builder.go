package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/Carmen-Shannon/oxy-dream/engine/profiler"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithRenderer sets the renderer frames are submitted to. Required.
//
// Parameters:
//   - r: the renderer, owned by the caller
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera sets the camera. Defaults to camera.NewCamera().
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithLogger sets the logger shared by the engine and the graphs it builds.
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables or disables periodic frame statistics in the log.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the profiler used for frame statistics.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the rate Run drives Tick at, in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWorkers sets the size of the worker pool animation updates fan out to.
// Defaults to runtime.NumCPU()-1. Ignored when WithWorkerPool is given.
func WithWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithWorkerPool shares an existing pool instead of creating one. The engine does not stop a
// pool it did not create.
func WithWorkerPool(pool worker.DynamicWorkerPool) EngineBuilderOption {
	return func(e *engine) {
		e.pool = pool
	}
}

// WithBatchCapacity sets the instance capacity of batch buckets.
func WithBatchCapacity(capacity int) EngineBuilderOption {
	return func(e *engine) {
		e.batchCap = capacity
	}
}

// WithWarningHandler registers a callback receiving the non-fatal warnings of each rebuild,
// such as batch overflows.
func WithWarningHandler(fn func(error)) EngineBuilderOption {
	return func(e *engine) {
		e.onWarning = fn
	}
}

// WithFrameLimit makes Run return after n rendered frames. Zero runs until the context ends.
func WithFrameLimit(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.frameLimit = n
	}
}
