package model

import "github.com/Carmen-Shannon/oxy-dream/common"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithPrimitive is an option builder that selects the shape to generate.
//
// Parameters:
//   - p: the primitive kind
//
// Returns:
//   - ModelBuilderOption: a function that applies the primitive option to a model
func WithPrimitive(p common.Primitive) ModelBuilderOption {
	return func(m *model) {
		m.primitive = p
	}
}

// WithSegments is an option builder that sets the radial tessellation of curved primitives.
// Values below 3 are raised to 3 during generation.
//
// Parameters:
//   - segments: number of radial segments
//
// Returns:
//   - ModelBuilderOption: a function that applies the segments option to a model
func WithSegments(segments int) ModelBuilderOption {
	return func(m *model) {
		m.segments = segments
	}
}
