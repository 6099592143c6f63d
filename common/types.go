// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "strings"

// Primitive identifies one of the fixed set of procedural shapes a scene object can take.
type Primitive int

const (
	// PrimitiveBox is a unit cube. It is also the fallback for unknown primitive names.
	PrimitiveBox Primitive = iota
	// PrimitiveSphere is a sphere of radius 0.5.
	PrimitiveSphere
	// PrimitiveCylinder is a cylinder of radius 0.5 and height 1.
	PrimitiveCylinder
	// PrimitivePlane is a unit square in the XY plane.
	PrimitivePlane
	// PrimitiveCone is a cone of base radius 0.5 and height 1.
	PrimitiveCone
	// PrimitiveTorus is a torus with major radius 2 and tube radius 0.2.
	PrimitiveTorus
)

var primitiveNames = [...]string{"box", "sphere", "cylinder", "plane", "cone", "torus"}

// Primitives lists every primitive in declaration order.
var Primitives = []Primitive{PrimitiveBox, PrimitiveSphere, PrimitiveCylinder, PrimitivePlane, PrimitiveCone, PrimitiveTorus}

func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return "box"
	}
	return primitiveNames[p]
}

// ParsePrimitive resolves a primitive name case-insensitively.
//
// Parameters:
//   - name: the primitive name (e.g. "cone")
//
// Returns:
//   - Primitive: the matching primitive, or PrimitiveBox when unknown
//   - bool: false if the name was not recognized
func ParsePrimitive(name string) (Primitive, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range primitiveNames {
		if s == n {
			return Primitive(i), true
		}
	}
	return PrimitiveBox, false
}

// Transform is the position, orientation and scale of one drawable instance.
type Transform struct {
	Position [3]float32
	Rotation Quat
	Scale    [3]float32
}

// IdentityTransform returns a transform at the origin with no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: QuatIdentity,
		Scale:    [3]float32{1, 1, 1},
	}
}

// Matrix writes the column-major model matrix of t into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
func (t Transform) Matrix(out []float32) {
	BuildModelMatrix(out, t.Position, t.Rotation, t.Scale)
}
