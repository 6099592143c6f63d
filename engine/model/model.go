package model

import (
	"github.com/Carmen-Shannon/oxy-dream/common"
)

// model is the implementation of the Model interface.
type model struct {
	name                  string
	primitive             common.Primitive
	segments              int
	vertices              []GPUVertex
	indices               []uint32
	boundingRadius        float32
	vertexData, indexData []byte
}

// Model defines the interface for the CPU-side mesh of one primitive shape.
// A Model is generated procedurally at its canonical size; scene objects reach
// their authored size through the instance transform, so one Model per primitive
// kind is shared by every object of that kind.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Primitive retrieves the shape this model was generated for.
	//
	// Returns:
	//   - common.Primitive: the primitive kind
	Primitive() common.Primitive

	// Vertices retrieves the generated vertices.
	//
	// Returns:
	//   - []GPUVertex: the vertex list
	Vertices() []GPUVertex

	// Indices retrieves the triangle indices.
	//
	// Returns:
	//   - []uint32: three indices per triangle
	Indices() []uint32

	// VertexData returns the marshaled vertex buffer for this model's mesh.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the marshaled index buffer for this model's mesh.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the model's mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the bounding sphere radius for this model, measured as
	// the maximum vertex distance from the origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Model = &model{}

// DefaultSegments is the radial tessellation used for curved primitives.
const DefaultSegments = 32

// NewModel creates a new Model instance with the specified options applied and
// generates its geometry.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{segments: DefaultSegments}
	for _, opt := range options {
		opt(m)
	}
	if m.name == "" {
		m.name = m.primitive.String()
	}

	data := generate(m.primitive, m.segments)
	m.vertices = data.vertices
	m.indices = data.indices
	for _, v := range m.vertices {
		m.boundingRadius = max(m.boundingRadius, common.Length3(v.Position))
	}
	m.vertexData = MarshalVertices(m.vertices)
	m.indexData = MarshalIndices(m.indices)
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Primitive() common.Primitive {
	return m.primitive
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}
