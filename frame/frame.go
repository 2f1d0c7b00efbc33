// Package frame provides the rigid-body transform algebra used to move
// 3D point sets between per-residue local coordinate systems and the
// global reference frame.
//
// A Frame holds one rotation and one translation per residue and is an
// immutable value: every operation returns a new Frame, so frames may
// be shared freely across goroutines.
package frame

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// A Frame is an ordered collection of rigid transforms, one per
// residue. Residue i's transform maps points from that residue's local
// coordinate system into global coordinates as R*p + t.
type Frame struct {
	rotations    []Rotation
	translations []r3.Vec
}

// New constructs a Frame from parallel slices of rotations and
// translations. The slices are copied, so the caller may reuse them.
// New panics with a ShapeError if the slice lengths differ.
func New(rotations []Rotation, translations []r3.Vec) Frame {
	if len(rotations) != len(translations) {
		Shapef("frame: %d rotations but %d translations",
			len(rotations), len(translations))
	}
	f := Frame{
		rotations:    make([]Rotation, len(rotations)),
		translations: make([]r3.Vec, len(translations)),
	}
	copy(f.rotations, rotations)
	copy(f.translations, translations)
	return f
}

// Identity returns a Frame of n identity transforms.
func Identity(n int) Frame {
	f := Frame{
		rotations:    make([]Rotation, n),
		translations: make([]r3.Vec, n),
	}
	for i := range f.rotations {
		f.rotations[i] = IdentityRotation()
	}
	return f
}

// Len returns the number of residues covered by the frame.
func (f Frame) Len() int {
	return len(f.rotations)
}

// Rotation returns residue i's rotation matrix.
func (f Frame) Rotation(i int) Rotation {
	return f.rotations[i]
}

// Translation returns residue i's translation vector.
func (f Frame) Translation(i int) r3.Vec {
	return f.translations[i]
}

// Index returns a single-residue Frame holding residue i's transform.
func (f Frame) Index(i int) Frame {
	return f.Slice(i, i+1)
}

// Slice returns the sub-Frame covering residues [start, end).
func (f Frame) Slice(start, end int) Frame {
	if start < 0 || end > f.Len() || start > end {
		Shapef("frame: slice [%d:%d] out of range for %d residues",
			start, end, f.Len())
	}
	return New(f.rotations[start:end], f.translations[start:end])
}

// Apply transforms p from residue i's local coordinate system into
// global coordinates.
func (f Frame) Apply(i int, p r3.Vec) r3.Vec {
	return r3.Add(f.rotations[i].Apply(p), f.translations[i])
}

// ApplyAll transforms points pointwise: points[i] is interpreted in
// residue i's local coordinate system. It panics with a ShapeError
// unless len(points) equals f.Len().
func (f Frame) ApplyAll(points []r3.Vec) []r3.Vec {
	if len(points) != f.Len() {
		Shapef("frame: %d points for %d residues", len(points), f.Len())
	}
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = f.Apply(i, p)
	}
	return out
}

// Inverse returns the Frame of inverse transforms. For each residue
// the inverse rotation is the transpose and the inverse translation is
// -R^T*t, so Inverse().Apply undoes Apply exactly.
func (f Frame) Inverse() Frame {
	inv := Frame{
		rotations:    make([]Rotation, f.Len()),
		translations: make([]r3.Vec, f.Len()),
	}
	for i, r := range f.rotations {
		inv.rotations[i] = r.Transpose()
		inv.translations[i] = r3.Scale(-1, r.ApplyTranspose(f.translations[i]))
	}
	return inv
}

// Compose returns the Frame representing "apply inner, then outer":
// rotation R_o*R_i and translation R_o*t_i + t_o per residue.
//
// When one operand has length 1 it is broadcast across the other,
// which is how a single global transform is composed with a whole
// chain of frames. Otherwise the lengths must match; Compose panics
// with a ShapeError if they don't.
func Compose(outer, inner Frame) Frame {
	n := outer.Len()
	switch {
	case outer.Len() == 1 && inner.Len() > 1:
		n = inner.Len()
	case inner.Len() == 1 && outer.Len() > 1:
		n = outer.Len()
	case outer.Len() != inner.Len():
		Shapef("frame: cannot compose %d frames with %d frames",
			outer.Len(), inner.Len())
	}

	at := func(f Frame, i int) int {
		if f.Len() == 1 {
			return 0
		}
		return i
	}

	out := Frame{
		rotations:    make([]Rotation, n),
		translations: make([]r3.Vec, n),
	}
	for i := 0; i < n; i++ {
		o, in := at(outer, i), at(inner, i)
		out.rotations[i] = outer.rotations[o].Mul(inner.rotations[in])
		out.translations[i] = outer.Apply(o, inner.translations[in])
	}
	return out
}
