package description

import (
	"encoding/json"
	"strings"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"
)

// Color is an RGB triple. It decodes from {r, g, b} objects, [r, g, b] arrays and
// "#rrggbb" strings. A value of any other shape decodes to NaN channels, which the
// resolution pass replaces with the field's default.
type Color struct {
	R float32 `json:"r" yaml:"r"`
	G float32 `json:"g" yaml:"g"`
	B float32 `json:"b" yaml:"b"`
}

// RGB returns a Color pointer ready to be placed in a Description.
func RGB(r, g, b float32) *Color {
	return &Color{R: r, G: g, B: b}
}

// FromColor converts a common.Color into a description Color pointer.
func FromColor(c common.Color) *Color {
	return &Color{R: c.R, G: c.G, B: c.B}
}

// Valid reports whether every channel is a finite number.
func (c *Color) Valid() bool {
	return c != nil && finite(c.R) && finite(c.G) && finite(c.B)
}

// Resolve returns c clamped to [0, 1], or def when c is missing or malformed.
func (c *Color) Resolve(def common.Color) common.Color {
	if !c.Valid() {
		return def
	}
	return common.Color{R: c.R, G: c.G, B: c.B}.Clamped()
}

func (c *Color) malformed() {
	nan := math32.NaN()
	*c = Color{R: nan, G: nan, B: nan}
}

func (c *Color) fromSlice(v []float32) bool {
	if len(v) != 3 {
		return false
	}
	*c = Color{R: v[0], G: v[1], B: v[2]}
	return true
}

func (c *Color) fromHex(s string) bool {
	parsed, err := common.ParseHex(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	*c = Color{R: parsed.R, G: parsed.G, B: parsed.B}
	return true
}

type colorFields struct {
	R *float32 `json:"r" yaml:"r"`
	G *float32 `json:"g" yaml:"g"`
	B *float32 `json:"b" yaml:"b"`
}

func (c *Color) fromFields(f colorFields) bool {
	if f.R == nil || f.G == nil || f.B == nil {
		return false
	}
	*c = Color{R: *f.R, G: *f.G, B: *f.B}
	return true
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var (
		fields colorFields
		slice  []float32
		hex    string
	)
	ok := false
	switch {
	case json.Unmarshal(data, &fields) == nil:
		ok = c.fromFields(fields)
	case json.Unmarshal(data, &slice) == nil:
		ok = c.fromSlice(slice)
	case json.Unmarshal(data, &hex) == nil:
		ok = c.fromHex(hex)
	}
	if !ok {
		c.malformed()
	}
	return nil
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	ok := false
	switch node.Kind {
	case yaml.MappingNode:
		var fields colorFields
		ok = node.Decode(&fields) == nil && c.fromFields(fields)
	case yaml.SequenceNode:
		var slice []float32
		ok = node.Decode(&slice) == nil && c.fromSlice(slice)
	case yaml.ScalarNode:
		ok = c.fromHex(node.Value)
	}
	if !ok {
		c.malformed()
	}
	return nil
}

// Vec3 is an authored 3-vector. Values of the wrong shape decode to nil so that
// resolution falls back to the field's default.
type Vec3 []float32

// V3 builds a Vec3 from three components.
func V3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Valid reports whether v has exactly three finite components.
func (v Vec3) Valid() bool {
	return len(v) == 3 && finite(v[0]) && finite(v[1]) && finite(v[2])
}

// Or returns v as an array, or def when v is not Valid.
func (v Vec3) Or(def [3]float32) [3]float32 {
	if !v.Valid() {
		return def
	}
	return [3]float32{v[0], v[1], v[2]}
}

func (v *Vec3) UnmarshalJSON(data []byte) error {
	var out []float32
	if err := json.Unmarshal(data, &out); err != nil || len(out) != 3 {
		*v = nil
		return nil
	}
	*v = out
	return nil
}

func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	var out []float32
	if err := node.Decode(&out); err != nil || len(out) != 3 {
		*v = nil
		return nil
	}
	*v = out
	return nil
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
