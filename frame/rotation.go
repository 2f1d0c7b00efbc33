package frame

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// A Rotation is a 3x3 proper rotation matrix, in row-major order
// | 0 1 2 |
// | 3 4 5 |
// | 6 7 8 |
//
// Every Rotation produced by this package is orthonormal with
// determinant +1. The type is a plain value; copying it copies the
// matrix.
type Rotation [9]float64

// IdentityRotation returns the identity rotation.
func IdentityRotation() Rotation {
	return Rotation{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Mul returns the matrix product a*b.
func (a Rotation) Mul(b Rotation) Rotation {
	return Rotation{
		a[0]*b[0] + a[1]*b[3] + a[2]*b[6],
		a[0]*b[1] + a[1]*b[4] + a[2]*b[7],
		a[0]*b[2] + a[1]*b[5] + a[2]*b[8],

		a[3]*b[0] + a[4]*b[3] + a[5]*b[6],
		a[3]*b[1] + a[4]*b[4] + a[5]*b[7],
		a[3]*b[2] + a[4]*b[5] + a[5]*b[8],

		a[6]*b[0] + a[7]*b[3] + a[8]*b[6],
		a[6]*b[1] + a[7]*b[4] + a[8]*b[7],
		a[6]*b[2] + a[7]*b[5] + a[8]*b[8],
	}
}

// Transpose returns the transpose of a, which for a proper rotation is
// also its inverse.
func (a Rotation) Transpose() Rotation {
	return Rotation{
		a[0], a[3], a[6],
		a[1], a[4], a[7],
		a[2], a[5], a[8],
	}
}

// Apply rotates p by a.
func (a Rotation) Apply(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: a[0]*p.X + a[1]*p.Y + a[2]*p.Z,
		Y: a[3]*p.X + a[4]*p.Y + a[5]*p.Z,
		Z: a[6]*p.X + a[7]*p.Y + a[8]*p.Z,
	}
}

// ApplyTranspose rotates p by the inverse of a.
func (a Rotation) ApplyTranspose(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: a[0]*p.X + a[3]*p.Y + a[6]*p.Z,
		Y: a[1]*p.X + a[4]*p.Y + a[7]*p.Z,
		Z: a[2]*p.X + a[5]*p.Y + a[8]*p.Z,
	}
}

// RotationFromQuat converts the unit quaternion q to its rotation
// matrix. The caller is responsible for normalizing q; feeding a
// non-unit quaternion produces a scaled, non-orthonormal matrix.
func RotationFromQuat(q quat.Number) Rotation {
	a, b, c, d := q.Real, q.Imag, q.Jmag, q.Kmag
	return Rotation{
		a*a + b*b - c*c - d*d, 2*b*c - 2*a*d, 2*b*d + 2*a*c,
		2*b*c + 2*a*d, a*a - b*b + c*c - d*d, 2*c*d - 2*a*b,
		2*b*d - 2*a*c, 2*c*d + 2*a*b, a*a - b*b - c*c + d*d,
	}
}
