package renderer

import (
	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/pipeline"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless selects a backend that allocates no GPU objects. It performs the same
	// bookkeeping as the GPU backend, so resource lifetimes and frame submission can be verified
	// without a graphics device.
	BackendTypeHeadless
)

func (t RendererBackendType) String() string {
	if t == BackendTypeHeadless {
		return "headless"
	}
	return "wgpu"
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// BindGroupSlot is the fixed bind group index a class of resource is bound at. Every pipeline
// shares the same layout for each slot.
type BindGroupSlot int

const (
	// SlotFrame holds the per-frame camera, fog and light uniforms. Owned by the backend.
	SlotFrame BindGroupSlot = iota
	// SlotMaterial holds one material's parameters.
	SlotMaterial
	// SlotInstances holds a storage buffer of per-instance model matrices.
	SlotInstances
)

// RendererBackend is the API-specific half of the Renderer. Calls that record a frame must come in
// the order BeginFrame, DrawCall..., EndFrame, Present.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and the depth and MSAA targets for a surface size.
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the GPU pipeline for p. The first registered pipeline fixes
	// the shared bind group layouts.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data into buffers owned by provider.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates a buffer of size bytes and a bind group for provider at slot.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, slot BindGroupSlot, size uint64) error

	// WriteBuffers queues buffer writes.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface image, uploads the frame uniforms and starts the pass.
	BeginFrame(clear common.Color, frameData, lightData []byte) error

	// DrawCall encodes one instanced draw. bindGroups are bound from SlotMaterial onward.
	DrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the pass and submits the recorded commands.
	EndFrame()

	// Present shows the submitted image.
	Present()

	// Release releases the device and surface. Safe to call more than once.
	Release()
}
