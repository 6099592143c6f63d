package animator

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// DefaultParallelThreshold is the entry count above which Update fans out to the worker pool.
const DefaultParallelThreshold = 256

// registry is the implementation of the Registry interface.
type registry struct {
	logger            *slog.Logger
	pool              worker.DynamicWorkerPool
	parallelThreshold int
	entries           []Entry
}

// Registry holds the animation entries of one render graph generation.
//
// Entries are added while a graph is built and are never removed individually;
// the whole registry is discarded with its graph. Every entry drives a distinct
// target, so Update may evaluate entries in any order or in parallel.
type Registry interface {
	// Add appends an entry to the registry.
	//
	// Parameters:
	//   - e: the entry to add
	Add(e Entry)

	// Len returns the number of entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int

	// Entries returns the registered entries. The slice must not be modified.
	//
	// Returns:
	//   - []Entry: the entries in insertion order
	Entries() []Entry

	// Update evaluates every entry for elapsed time t.
	//
	// Parameters:
	//   - t: elapsed time in seconds
	Update(t float32)
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Parameters:
//   - options: variadic list of RegistryBuilderOption functions
//
// Returns:
//   - Registry: the new registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registry{
		logger:            slog.Default(),
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) Add(e Entry) {
	if e.Target == nil || e.Behavior == nil {
		r.logger.Warn("[Animator] dropping entry without target or behavior", "id", e.ID)
		return
	}
	r.entries = append(r.entries, e)
}

func (r *registry) Len() int {
	return len(r.entries)
}

func (r *registry) Entries() []Entry {
	return r.entries
}

func (r *registry) Update(t float32) {
	if r.pool == nil || len(r.entries) <= r.parallelThreshold {
		for i := range r.entries {
			r.entries[i].update(t)
		}
		return
	}

	// A WaitGroup gives the per-frame barrier; pool.Wait() only returns once workers idle-exit.
	chunks := max(r.pool.GetMaxWorkers(), 1)
	size := (len(r.entries) + chunks - 1) / chunks
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(r.entries); start += size {
		part := r.entries[start:min(start+size, len(r.entries))]
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for i := range part {
					part[i].update(t)
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
}
