package structure

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/foldkit/foldkit/frame"
)

// quatNormFloor guards the quaternion normalization against a
// degenerate (near-zero) magnitude, which would otherwise propagate
// NaNs into the rotation matrix.
const quatNormFloor = 1e-8

// BackboneUpdate maps each residue's feature vector to a rigid frame
// update. A single affine projection produces six scalars per residue:
// the first three parameterize a unit quaternion (1, b, c, d) that is
// normalized and converted to a rotation matrix, and the last three
// are taken directly as the translation. Rotations are orthonormal by
// construction, and a zero feature vector yields the identity frame.
type BackboneUpdate struct {
	proj *linear // single -> 6
}

// NewBackboneUpdate constructs a backbone update for feature vectors
// of the given width. A nil rng falls back to the global source.
func NewBackboneUpdate(singleSize int, rng *rand.Rand) *BackboneUpdate {
	return &BackboneUpdate{proj: newLinear(singleSize, 6, true, rng)}
}

// Forward produces one frame per residue from the N×singleSize feature
// matrix.
func (b *BackboneUpdate) Forward(single *mat.Dense) frame.Frame {
	out := b.proj.forward(single)
	n, _ := out.Dims()

	rotations := make([]frame.Rotation, n)
	translations := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		row := out.RawRowView(i)
		q := quat.Number{Real: 1, Imag: row[0], Jmag: row[1], Kmag: row[2]}
		norm := quat.Abs(q)
		if norm < quatNormFloor {
			norm = quatNormFloor
		}
		rotations[i] = frame.RotationFromQuat(quat.Scale(1/norm, q))
		translations[i] = r3.Vec{X: row[3], Y: row[4], Z: row[5]}
	}
	return frame.New(rotations, translations)
}
