package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/Carmen-Shannon/oxy-dream/engine/light"
	"github.com/Carmen-Shannon/oxy-dream/engine/model"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
)

var (
	// GPUFrameUniformSource is the WGSL definition of FrameUniform. It nests CameraUniform.
	//
	//go:embed assets/frame.wgsl
	GPUFrameUniformSource string

	// GPUInstanceSource is the WGSL definition of one instance record.
	//
	//go:embed assets/instance.wgsl
	GPUInstanceSource string

	//go:embed assets/common.wgsl
	commonShaderSource string

	//go:embed assets/standard.wgsl
	standardShaderSource string

	//go:embed assets/water.wgsl
	waterShaderSource string
)

// shaderIncludes returns the include sources every engine shader may reference.
func shaderIncludes() map[string]string {
	return map[string]string{
		"vertex":   model.GPUVertexSource,
		"camera":   camera.GPUCameraUniformSource,
		"frame":    GPUFrameUniformSource,
		"instance": GPUInstanceSource,
		"light":    light.GPULightSource,
		"material": material.GPUMaterialParamsSource,
		"common":   commonShaderSource,
	}
}

// GPUFrameUniformSize is the byte size of a marshaled GPUFrameUniform.
const GPUFrameUniformSize = 112

// GPUInstanceSize is the byte size of one instance record: a column-major 4x4 model matrix.
const GPUInstanceSize = 64

// GPUFrameUniform is the per-frame uniform bound at SlotFrame, binding 0.
// Matches the WGSL FrameUniform struct layout exactly (see GPUFrameUniformSource).
type GPUFrameUniform struct {
	Camera      camera.GPUCameraUniform // offset   0: 80 bytes
	FogColor    [3]float32              // offset  80
	FogEnabled  uint32                  // offset  92
	FogNear     float32                 // offset  96
	FogFar      float32                 // offset 100
	Time        float32                 // offset 104
	ToneMapping uint32                  // offset 108
}

// Marshal serializes the uniform into a 112-byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized buffer
func (g *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, GPUFrameUniformSize)
	copy(buf, g.Camera.Marshal())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g.FogColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[92:], g.FogEnabled)
	binary.LittleEndian.PutUint32(buf[96:], math.Float32bits(g.FogNear))
	binary.LittleEndian.PutUint32(buf[100:], math.Float32bits(g.FogFar))
	binary.LittleEndian.PutUint32(buf[104:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[108:], g.ToneMapping)
	return buf
}
