package common

import "github.com/chewxy/math32"

// Quat is an orientation quaternion stored as (x, y, z, w).
type Quat [4]float32

// QuatIdentity is the orientation with no rotation.
var QuatIdentity = Quat{0, 0, 0, 1}

// QuatFromEuler builds a quaternion from Euler angles in radians applied in X, Y, Z order
// (intrinsic), which is the convention scene descriptions are authored in.
//
// Parameters:
//   - x, y, z: rotation angles around each axis in radians
//
// Returns:
//   - Quat: the equivalent unit quaternion
func QuatFromEuler(x, y, z float32) Quat {
	c1, s1 := math32.Cos(x/2), math32.Sin(x/2)
	c2, s2 := math32.Cos(y/2), math32.Sin(y/2)
	c3, s3 := math32.Cos(z/2), math32.Sin(z/2)

	return Quat{
		s1*c2*c3 + c1*s2*s3,
		c1*s2*c3 - s1*c2*s3,
		c1*c2*s3 + s1*s2*c3,
		c1*c2*c3 - s1*s2*s3,
	}
}

// QuatFromAxisAngle builds a quaternion rotating angle radians around axis.
// The axis must be normalized.
//
// Parameters:
//   - axis: unit rotation axis
//   - angle: rotation angle in radians
//
// Returns:
//   - Quat: the rotation quaternion
func QuatFromAxisAngle(axis [3]float32, angle float32) Quat {
	s := math32.Sin(angle / 2)
	return Quat{axis[0] * s, axis[1] * s, axis[2] * s, math32.Cos(angle / 2)}
}

// Mul returns the Hamilton product q * r, which applies r first and then q.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		q[3]*r[0] + q[0]*r[3] + q[1]*r[2] - q[2]*r[1],
		q[3]*r[1] - q[0]*r[2] + q[1]*r[3] + q[2]*r[0],
		q[3]*r[2] + q[0]*r[1] - q[1]*r[0] + q[2]*r[3],
		q[3]*r[3] - q[0]*r[0] - q[1]*r[1] - q[2]*r[2],
	}
}

// Normalize returns q scaled to unit length. A zero quaternion normalizes to identity.
func (q Quat) Normalize() Quat {
	l := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l < 1e-8 {
		return QuatIdentity
	}
	return Quat{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

// RotateOnAxis rotates q by angle radians around an axis expressed in the object's local space.
//
// Parameters:
//   - axis: unit rotation axis in local space
//   - angle: rotation angle in radians
//
// Returns:
//   - Quat: the composed orientation
func (q Quat) RotateOnAxis(axis [3]float32, angle float32) Quat {
	return q.Mul(QuatFromAxisAngle(axis, angle)).Normalize()
}

// Angle returns the rotation angle of q in radians, in [0, 2π].
func (q Quat) Angle() float32 {
	return 2 * math32.Acos(Clamp(q[3], -1, 1))
}
