package source

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-dream/engine/batch"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
)

// Sink receives every description a source decodes. engine.Engine and viewer.Viewer satisfy it.
type Sink interface {
	OnSceneChanged(desc *description.Description) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(desc *description.Description) error

func (f SinkFunc) OnSceneChanged(desc *description.Description) error {
	return f(desc)
}

// isWarning reports whether err from a sink left a graph in place, i.e. it only carries
// non-fatal build warnings.
func IsWarning(err error) bool {
	return err != nil && errors.Is(err, batch.ErrBatchOverflow)
}
