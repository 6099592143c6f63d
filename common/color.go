package common

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorKeyPrecision is the number of buckets per unit channel used when canonicalizing colors
// into map keys. 1000 keeps three decimal digits, so colors closer than 0.0005 per channel collapse.
const ColorKeyPrecision = 1000

// Color is a linear RGB triple with channels nominally in [0, 1].
type Color struct {
	R, G, B float32
}

// ColorKey is a canonical, quantized representation of a Color suitable for use as a map key.
type ColorKey [3]int32

// White is the full-intensity white color.
var White = Color{1, 1, 1}

// RGB creates a Color from three channel values.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b}
}

// Key quantizes c to ColorKeyPrecision steps per channel.
//
// Returns:
//   - ColorKey: the quantized key
func (c Color) Key() ColorKey {
	q := func(v float32) int32 {
		return int32(math.Round(float64(v) * ColorKeyPrecision))
	}
	return ColorKey{q(c.R), q(c.G), q(c.B)}
}

// Color converts a quantized key back into the representative color of its bucket.
func (k ColorKey) Color() Color {
	return Color{
		R: float32(k[0]) / ColorKeyPrecision,
		G: float32(k[1]) / ColorKeyPrecision,
		B: float32(k[2]) / ColorKeyPrecision,
	}
}

// Lerp blends c toward o by factor t in RGB space. t = 0 yields c, t = 1 yields o.
//
// Parameters:
//   - o: the color to blend toward
//   - t: the blend factor
//
// Returns:
//   - Color: the blended color
func (c Color) Lerp(o Color, t float32) Color {
	return FromColorful(c.colorful().BlendRgb(o.colorful(), float64(t)))
}

// Clamped returns c with each channel clamped to [0, 1].
func (c Color) Clamped() Color {
	return FromColorful(c.colorful().Clamped())
}

// Array returns c as an [r, g, b] array.
func (c Color) Array() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

// Array4 returns c as an [r, g, b, a] array with the given alpha.
func (c Color) Array4(alpha float32) [4]float32 {
	return [4]float32{c.R, c.G, c.B, alpha}
}

// Hex formats c as a "#rrggbb" string.
func (c Color) Hex() string {
	return c.Clamped().colorful().Hex()
}

// ParseHex parses a "#rrggbb" or "#rgb" string into a Color.
//
// Parameters:
//   - s: the hex color string
//
// Returns:
//   - Color: the parsed color
//   - error: an error if s is not a valid hex color
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return FromColorful(c), nil
}

// HSV creates a Color from hue in degrees and saturation/value in [0, 1].
// Hue wraps into [0, 360).
func HSV(h, s, v float32) Color {
	hue := math.Mod(float64(h), 360)
	if hue < 0 {
		hue += 360
	}
	return FromColorful(colorful.Hsv(hue, float64(s), float64(v)))
}

// FromColorful converts a go-colorful color into a Color.
func FromColorful(c colorful.Color) Color {
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}
