package batch

import "log/slog"

// AllocatorBuilderOption is a function that configures an allocator.
type AllocatorBuilderOption func(*allocator)

// WithCapacity sets the instance capacity of every bucket. Non-positive values keep the default.
//
// Parameters:
//   - capacity: the maximum instances per bucket
//
// Returns:
//   - AllocatorBuilderOption: a function that applies the capacity
func WithCapacity(capacity int) AllocatorBuilderOption {
	return func(a *allocator) {
		if capacity > 0 {
			a.capacity = capacity
		}
	}
}

// WithRoughness sets the roughness of batched materials.
func WithRoughness(roughness float32) AllocatorBuilderOption {
	return func(a *allocator) {
		a.roughness = roughness
	}
}

// WithSegments sets the tessellation of batched meshes.
func WithSegments(segments int) AllocatorBuilderOption {
	return func(a *allocator) {
		a.segments = segments
	}
}

// WithLogger sets the logger used for bucket creation and overflow reports.
//
// Parameters:
//   - logger: the logger, nil keeps slog.Default()
//
// Returns:
//   - AllocatorBuilderOption: a function that applies the logger
func WithLogger(logger *slog.Logger) AllocatorBuilderOption {
	return func(a *allocator) {
		if logger != nil {
			a.logger = logger
		}
	}
}
