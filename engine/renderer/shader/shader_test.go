package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `//@dream:include params
//@dream:include vertex

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(2) var<storage, read> items: array<Item>;

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(v_in: VertexInput) -> VertexOutput {
    var o: VertexOutput;
    return o;
}

@fragment
fn fs_main(frag: VertexOutput) -> @location(0) vec4<f32> {
    return params.color;
}
`

func testPreProcessor() PreProcessor {
	return NewPreProcessor(map[string]string{
		"params": "//@dream:include item\nstruct Params {\n    color: vec4<f32>,\n    time: f32,\n};",
		"item":   "struct Item {\n    model: mat4x4<f32>,\n};",
		"vertex": "struct VertexInput {\n    @location(0) position: vec3<f32>,\n    @location(1) uv: vec2<f32>,\n};",
	})
}

func TestPreProcessorExpandsNestedIncludesOnce(t *testing.T) {
	pp := testPreProcessor()
	out, err := pp.Process("//@dream:include params\n//@dream:include item\nfn f() {}")
	require.NoError(t, err)
	assert.Contains(t, out, "struct Params")
	assert.Equal(t, 1, strings.Count(out, "struct Item"))
	assert.NotContains(t, out, "@dream:include")
}

func TestPreProcessorErrors(t *testing.T) {
	pp := testPreProcessor()
	_, err := pp.Process("//@dream:include missing")
	assert.ErrorContains(t, err, "unknown include")

	_, err = pp.Process("//@dream:include a b")
	assert.ErrorContains(t, err, "exactly one name")

	pp.Register("loop", "//@dream:include loop2")
	pp.Register("loop2", "//@dream:include loop")
	_, err = pp.Process("//@dream:include loop")
	assert.NoError(t, err, "an include already seen is skipped, so a two-way cycle terminates")
}

func TestNewShaderReflectsLayouts(t *testing.T) {
	vs, err := NewShader("test-vs", ShaderTypeVertex, testSource, testPreProcessor())
	require.NoError(t, err)
	assert.Equal(t, "vs_main", vs.EntryPoint())

	vl := vs.VertexLayout()
	require.NotNil(t, vl)
	assert.Equal(t, uint64(20), vl.ArrayStride)
	require.Len(t, vl.Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, vl.Attributes[0].Format)
	assert.Equal(t, uint64(12), vl.Attributes[1].Offset)

	groups := vs.BindGroupLayoutDescriptors()
	require.Contains(t, groups, 0)
	entries := groups[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.Equal(t, uint64(32), entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint32(2), entries[1].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[1].Buffer.Type)
	assert.Equal(t, uint64(64), entries[1].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, entries[0].Visibility)
}

func TestNewShaderFragment(t *testing.T) {
	fs, err := NewShader("test-fs", ShaderTypeFragment, testSource, testPreProcessor())
	require.NoError(t, err)
	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.Nil(t, fs.VertexLayout())
	assert.Equal(t, wgpu.ShaderStageFragment, fs.BindGroupLayoutDescriptors()[0].Entries[0].Visibility)
	assert.Equal(t, "test-fs", fs.Module().Label)
}

func TestNewShaderMissingEntryPoint(t *testing.T) {
	_, err := NewShader("empty", ShaderTypeFragment, "struct A { x: f32, };", nil)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}
