package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxGPULights is the number of light slots in the per-frame uniform block.
// Lights past this budget are kept on the CPU side but not evaluated by the shader.
const MaxGPULights = 8

// GPULightSource is the canonical WGSL definition of the Light and LightBlock structs.
// Matches GPULight and MarshalLightBlock exactly.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single light source.
// Size: 64 bytes (WGSL uniform aligned).
type GPULight struct {
	Position    [3]float32 // offset  0: world-space position (directional only)
	LightType   uint32     // offset 12: 0 = ambient, 1 = hemisphere, 2 = directional
	Color       [3]float32 // offset 16: RGB color (sky color for hemisphere)
	Intensity   float32    // offset 28: scalar multiplier
	Direction   [3]float32 // offset 32: normalized travel direction (directional only)
	Enabled     uint32     // offset 44: 1 = contributes, 0 = ignored
	GroundColor [3]float32 // offset 48: hemisphere ground color
	_pad        uint32     // offset 60: padding to 64-byte alignment
}

// GPULightBlockSize is the byte size of the marshaled light block: a 16-byte header
// followed by MaxGPULights light slots.
const GPULightBlockSize = 16 + MaxGPULights*64

// NewGPULight converts a Light into its GPU representation.
//
// Parameters:
//   - l: the light to convert
//
// Returns:
//   - GPULight: the GPU-aligned light
func NewGPULight(l Light) GPULight {
	g := GPULight{
		Position:    l.Position(),
		LightType:   uint32(l.Type()),
		Color:       l.Color(),
		Intensity:   l.Intensity(),
		Direction:   l.Direction(),
		GroundColor: l.GroundColor(),
	}
	if l.Enabled() {
		g.Enabled = 1
	}
	return g
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 64)
	g.marshalInto(buf)
	return buf
}

func (g *GPULight) marshalInto(buf []byte) {
	putVec3(buf[0:12], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putVec3(buf[16:28], g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	putVec3(buf[32:44], g.Direction)
	binary.LittleEndian.PutUint32(buf[44:48], g.Enabled)
	putVec3(buf[48:60], g.GroundColor)
	binary.LittleEndian.PutUint32(buf[60:64], 0) // padding
}

// MarshalLightBlock serializes up to MaxGPULights lights into the fixed-size light
// block consumed by the frame uniform. Unused slots are zeroed.
//
// Parameters:
//   - lights: the scene lights in description order
//
// Returns:
//   - []byte: GPULightBlockSize bytes ready for GPU upload
func MarshalLightBlock(lights []Light) []byte {
	buf := make([]byte, GPULightBlockSize)
	n := min(len(lights), MaxGPULights)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	for i := 0; i < n; i++ {
		g := NewGPULight(lights[i])
		off := 16 + i*64
		g.marshalInto(buf[off : off+64])
	}
	return buf
}

func putVec3(buf []byte, v [3]float32) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v[2]))
}
