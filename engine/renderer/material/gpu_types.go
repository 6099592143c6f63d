package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (48 bytes, uniform aligned).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParamsSize is the byte size of a marshaled GPUMaterialParams.
const GPUMaterialParamsSize = 48

// GPUMaterialParams is the GPU-aligned per-material uniform.
// Matches the WGSL MaterialParams struct layout exactly (see GPUMaterialParamsSource).
type GPUMaterialParams struct {
	BaseColor [4]float32 // offset  0: RGBA albedo
	Metallic  float32    // offset 16
	Roughness float32    // offset 20
	Time      float32    // offset 24: elapsed seconds, read by the water shader
	Kind      uint32     // offset 28: 0 = standard, 1 = lambert, 2 = phong
	Shading   uint32     // offset 32: 0 = standard, 1 = water
	_pad      [3]uint32  // offset 36: padding to 48 bytes
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, GPUMaterialParamsSize)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(g.BaseColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Metallic))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[28:32], g.Kind)
	binary.LittleEndian.PutUint32(buf[32:36], g.Shading)
	return buf
}
