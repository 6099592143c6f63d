package material

import (
	"strings"
	"sync"
)

// Shading selects the render pipeline a material is drawn with.
type Shading int

const (
	// ShadingStandard is the fixed-parameter lit surface (color, metalness, roughness).
	ShadingStandard Shading = iota
	// ShadingWater displaces each vertex along its normal by a function of model-space x, y
	// (the torus ring plane) and elapsed time, and adds a view-dependent rim term. Its time
	// uniform is advanced once per frame.
	ShadingWater
)

// PipelineKey returns the render pipeline key for the shading model.
func (s Shading) PipelineKey() string {
	if s == ShadingWater {
		return "water"
	}
	return "standard"
}

// Kind is the lighting model number forwarded to the standard shader.
type Kind int

const (
	KindStandard Kind = iota
	KindLambert
	KindPhong
)

var kindNames = [...]string{"standard", "lambert", "phong"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "standard"
	}
	return kindNames[k]
}

// ParseKind resolves a material kind name. Empty and unknown names resolve to KindStandard;
// the bool is false only for a non-empty unknown name.
func ParseKind(name string) (Kind, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return KindStandard, true
	}
	for i, s := range kindNames {
		if s == n {
			return Kind(i), true
		}
	}
	return KindStandard, false
}

// material is the implementation of the Material interface.
type material struct {
	mu          sync.RWMutex
	name        string
	shading     Shading
	kind        Kind
	baseColor   [4]float32
	metallic    float32
	roughness   float32
	time        float32
	pipelineKey string
}

// Material defines the interface for a render material: the surface parameters
// uploaded to the material uniform and the pipeline the surface is drawn with.
//
// Surface properties are fixed at build time. The only mutable value is the
// elapsed-time uniform of water materials, which the frame driver advances.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Shading retrieves the shading model of the material.
	//
	// Returns:
	//   - Shading: standard or water
	Shading() Shading

	// Kind retrieves the lighting model used by the standard shader.
	//
	// Returns:
	//   - Kind: standard, lambert or phong
	Kind() Kind

	// BaseColor retrieves the albedo RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Time retrieves the elapsed-time uniform in seconds.
	//
	// Returns:
	//   - float32: the last time set with SetTime
	Time() float32

	// SetTime sets the elapsed-time uniform. Only water materials read it.
	//
	// Parameters:
	//   - t: elapsed time in seconds
	SetTime(t float32)

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Params snapshots the material into its GPU uniform layout.
	//
	// Returns:
	//   - GPUMaterialParams: the uniform block for this material
	Params() GPUMaterialParams
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		metallic:  0.0,
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.pipelineKey == "" {
		m.pipelineKey = m.shading.PipelineKey()
	}
	return m
}

// NewWater creates the time-varying water material used for torus surfaces.
//
// Parameters:
//   - options: additional options applied after the water shading option
//
// Returns:
//   - Material: a water-shaded Material
func NewWater(options ...MaterialBuilderOption) Material {
	return NewMaterial(append([]MaterialBuilderOption{
		WithName("water"),
		WithShading(ShadingWater),
		WithBaseColor([4]float32{0.1, 0.3, 0.6, 0.85}),
		WithMetallic(0.1),
		WithRoughness(0.2),
	}, options...)...)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Shading() Shading {
	return m.shading
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Time() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.time
}

func (m *material) SetTime(t float32) {
	m.mu.Lock()
	m.time = t
	m.mu.Unlock()
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) Params() GPUMaterialParams {
	return GPUMaterialParams{
		BaseColor: m.baseColor,
		Metallic:  m.metallic,
		Roughness: m.roughness,
		Time:      m.Time(),
		Kind:      uint32(m.kind),
		Shading:   uint32(m.shading),
	}
}
