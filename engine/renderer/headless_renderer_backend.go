package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/shader"
)

// headlessRendererBackend is a RendererBackend that validates call order and arguments but never
// touches a GPU.
type headlessRendererBackend struct {
	mu sync.Mutex

	width, height int
	presentMode   PresentMode
	pipelines     map[string]bool
	inFrame       bool
	released      bool

	lastClear     common.Color
	lastFrameData []byte
	lastLightData []byte
}

var _ RendererBackend = &headlessRendererBackend{}

func newHeadlessRendererBackend() *headlessRendererBackend {
	return &headlessRendererBackend{pipelines: make(map[string]bool)}
}

func (b *headlessRendererBackend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	b.width, b.height = width, height
	return nil
}

func (b *headlessRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *headlessRendererBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.Shader(shader.ShaderTypeVertex) == nil || p.Shader(shader.ShaderTypeFragment) == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pipelines[p.PipelineKey()] = true
	return nil
}

func (b *headlessRendererBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if len(vertexData) == 0 || len(indexData) == 0 {
		return errors.New("mesh has no vertex or index data")
	}
	provider.SetIndexCount(indexCount)
	return nil
}

func (b *headlessRendererBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, slot BindGroupSlot, size uint64) error {
	if slot == SlotFrame {
		return errors.New("the frame bind group is owned by the backend")
	}
	if size == 0 {
		return errors.New("zero-sized buffer")
	}
	return nil
}

func (b *headlessRendererBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {}

func (b *headlessRendererBackend) BeginFrame(clear common.Color, frameData, lightData []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inFrame {
		return errors.New("previous frame surface not yet presented")
	}
	b.inFrame = true
	b.lastClear = clear
	b.lastFrameData = frameData
	b.lastLightData = lightData
	return nil
}

func (b *headlessRendererBackend) DrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
}

func (b *headlessRendererBackend) EndFrame() {}

func (b *headlessRendererBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFrame = false
}

func (b *headlessRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}
