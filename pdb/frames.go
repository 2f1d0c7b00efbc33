package pdb

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/foldkit/foldkit/frame"
)

// degenerateNorm is the threshold below which backbone geometry is
// treated as unresolvable and the residue falls back to an identity
// rotation.
const degenerateNorm = 1e-6

// Frames derives the chain's ground-truth rigid frames: one per
// resolved residue, with the alpha-carbon as the translation and a
// rotation built from the backbone geometry. Residues missing an N or
// C atom get the identity rotation.
func (c *Chain) Frames() frame.Frame {
	rotations := make([]frame.Rotation, len(c.Residues))
	translations := make([]r3.Vec, len(c.Residues))
	for i, res := range c.Residues {
		rotations[i] = residueRotation(res)
		translations[i] = res.CA
	}
	return frame.New(rotations, translations)
}

// residueRotation orthonormalizes the C-CA and N-CA directions by
// Gram-Schmidt into a right-handed basis: the first axis points along
// C-CA, the second is the N-CA component orthogonal to it, and the
// third completes the frame via the cross product.
func residueRotation(res Residue) frame.Rotation {
	if !res.HasN || !res.HasC {
		return frame.IdentityRotation()
	}

	v1 := r3.Sub(res.C, res.CA)
	v2 := r3.Sub(res.N, res.CA)
	if r3.Norm(v1) < degenerateNorm {
		return frame.IdentityRotation()
	}
	e1 := r3.Unit(v1)
	u2 := r3.Sub(v2, r3.Scale(r3.Dot(e1, v2), e1))
	if r3.Norm(u2) < degenerateNorm {
		return frame.IdentityRotation()
	}
	e2 := r3.Unit(u2)
	e3 := r3.Cross(e1, e2)

	// Basis vectors are the columns of the rotation.
	return frame.Rotation{
		e1.X, e2.X, e3.X,
		e1.Y, e2.Y, e3.Y,
		e1.Z, e2.Z, e3.Z,
	}
}
