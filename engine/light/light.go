package light

import "strings"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient lights every surface uniformly with no direction.
	LightTypeAmbient LightType = iota

	// LightTypeHemisphere blends between a sky color and a ground color based on
	// how far a surface normal points up.
	LightTypeHemisphere

	// LightTypeDirectional is a distant source (sun or moon) positioned in world space
	// and shining toward the origin. No distance attenuation.
	LightTypeDirectional
)

var lightTypeNames = [...]string{"ambient", "hemisphere", "directional"}

func (t LightType) String() string {
	if t < 0 || int(t) >= len(lightTypeNames) {
		return "unknown"
	}
	return lightTypeNames[t]
}

// ParseLightType resolves a light type name case-insensitively.
//
// Parameters:
//   - name: the light type name
//
// Returns:
//   - LightType: the matching light type
//   - bool: false if the name is not a known light type
func ParseLightType(name string) (LightType, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range lightTypeNames {
		if s == n {
			return LightType(i), true
		}
	}
	return LightTypeAmbient, false
}

// DefaultIntensity returns the intensity used when a light of type t does not specify one.
func DefaultIntensity(t LightType) float32 {
	switch t {
	case LightTypeHemisphere:
		return 0.4
	case LightTypeDirectional:
		return 0.9
	default:
		return 0.6
	}
}

// DefaultGroundColor is the ground color of hemisphere lights.
var DefaultGroundColor = [3]float32{0.2, 0.2, 0.25}

// DefaultDirectionalPosition is where directional lights sit when no position is given.
var DefaultDirectionalPosition = [3]float32{5, 8, 5}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType   LightType
	position    [3]float32
	color       [3]float32
	groundColor [3]float32
	intensity   float32
	enabled     bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are created by the scene builder in description order and are
// marshaled into the per-frame uniform block via the gpu_types helpers.
// Type-specific properties (ground color for hemisphere lights, position for
// directional lights) are ignored by the shader for the other types.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (ambient, hemisphere or directional)
	Type() LightType

	// Position returns the world-space position of the light.
	// Only directional lights use it; the light direction is position toward the origin.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction the light travels in.
	//
	// Returns:
	//   - [3]float32: unit direction, or zero for non-directional lights
	Direction() [3]float32

	// Color returns the sky/primary color of the light.
	//
	// Returns:
	//   - [3]float32: linear RGB color
	Color() [3]float32

	// GroundColor returns the lower-hemisphere color of a hemisphere light.
	//
	// Returns:
	//   - [3]float32: linear RGB color
	GroundColor() [3]float32

	// Intensity returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float32: the intensity (>= 0)
	Intensity() float32

	// Enabled reports whether the light contributes to shading.
	//
	// Returns:
	//   - bool: true if the light is active
	Enabled() bool

	SetPosition(x, y, z float32)
	SetColor(r, g, b float32)
	SetIntensity(intensity float32)
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the given type with the per-type defaults applied
// before the options.
//
// Parameters:
//   - lightType: the kind of light source
//   - opts: optional builder options
//
// Returns:
//   - Light: the configured light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:   lightType,
		color:       [3]float32{1, 1, 1},
		groundColor: DefaultGroundColor,
		intensity:   DefaultIntensity(lightType),
		enabled:     true,
	}
	if lightType == LightTypeDirectional {
		l.position = DefaultDirectionalPosition
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	if l.lightType != LightTypeDirectional {
		return [3]float32{}
	}
	return normalize3(-l.position[0], -l.position[1], -l.position[2])
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) GroundColor() [3]float32 {
	return l.groundColor
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	if intensity < 0 {
		intensity = 0
	}
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
