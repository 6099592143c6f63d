package animator

import (
	"log/slog"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// RegistryBuilderOption is a function that configures a registry during construction.
type RegistryBuilderOption func(*registry)

// WithLogger is an option builder that sets the logger of the registry.
//
// Parameters:
//   - logger: the structured logger to use
//
// Returns:
//   - RegistryBuilderOption: a function that applies the logger option to a registry
func WithLogger(logger *slog.Logger) RegistryBuilderOption {
	return func(r *registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithWorkerPool is an option builder that lets Update fan out across a worker pool once
// the registry holds more than the parallel threshold. The pool is not owned by the registry.
//
// Parameters:
//   - pool: the shared worker pool
//
// Returns:
//   - RegistryBuilderOption: a function that applies the pool option to a registry
func WithWorkerPool(pool worker.DynamicWorkerPool) RegistryBuilderOption {
	return func(r *registry) {
		r.pool = pool
	}
}

// WithParallelThreshold is an option builder that sets the entry count above which
// Update uses the worker pool.
//
// Parameters:
//   - n: the threshold
//
// Returns:
//   - RegistryBuilderOption: a function that applies the threshold option to a registry
func WithParallelThreshold(n int) RegistryBuilderOption {
	return func(r *registry) {
		r.parallelThreshold = n
	}
}
