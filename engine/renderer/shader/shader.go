package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoEntryPoint is returned when a shader source has no entry point for its stage.
var ErrNoEntryPoint = errors.New("shader: no entry point for stage")

// ShaderType is the pipeline stage a shader module is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is a vertex stage shader.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a fragment stage shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	if t == ShaderTypeFragment {
		return "fragment"
	}
	return "vertex"
}

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	entryPoint string

	bindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor
	vertexLayout     *wgpu.VertexBufferLayout
	module           *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL stage together with the bind group and vertex layouts reflected
// from its source.
type Shader interface {
	// Key returns the unique key of this shader.
	Key() string

	// Source returns the expanded WGSL source.
	Source() string

	// ShaderType returns the stage this shader targets.
	ShaderType() ShaderType

	// EntryPoint returns the entry point function name for the stage.
	EntryPoint() string

	// BindGroupLayoutDescriptors returns the reflected buffer bindings keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: layouts keyed by group
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// VertexLayout returns the reflected vertex buffer layout, or nil for fragment shaders.
	VertexLayout() *wgpu.VertexBufferLayout

	// Module returns the shader module descriptor ready for device creation.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader expands source with pp and reflects its layouts.
//
// Parameters:
//   - key: the unique shader key
//   - shaderType: the pipeline stage
//   - source: the raw WGSL source, possibly containing include directives
//   - pp: the pre-processor used to expand includes, may be nil when source has none
//
// Returns:
//   - Shader: the reflected shader
//   - error: a pre-processing error or ErrNoEntryPoint
func NewShader(key string, shaderType ShaderType, source string, pp PreProcessor) (Shader, error) {
	if pp == nil {
		pp = NewPreProcessor(nil)
	}
	expanded, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:        key,
		source:     expanded,
		shaderType: shaderType,
		entryPoint: reflectEntryPoint(expanded, shaderType),
	}
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: %w %s", key, ErrNoEntryPoint, shaderType)
	}

	visibility := wgpu.ShaderStageVertex
	if shaderType == ShaderTypeFragment {
		visibility = wgpu.ShaderStageFragment
	} else if vl, ok := reflectVertexLayout(expanded); ok {
		s.vertexLayout = &vl
	}
	s.bindGroupLayouts = reflectBindGroups(expanded, visibility)
	s.module = &wgpu.ShaderModuleDescriptor{
		Label:          key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: expanded},
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayouts
}

func (s *shader) VertexLayout() *wgpu.VertexBufferLayout {
	return s.vertexLayout
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
