package structure

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/foldkit/foldkit/frame"
)

func TestBackboneUpdateShape(t *testing.T) {
	const n, width = 10, 5
	rng := rand.New(rand.NewSource(7))
	b := NewBackboneUpdate(width, rng)

	data := make([]float64, n*width)
	for i := range data {
		data[i] = rng.Float64()
	}
	frames := b.Forward(mat.NewDense(n, width, data))
	if frames.Len() != n {
		t.Fatalf("got %d frames, want %d", frames.Len(), n)
	}
}

func TestBackboneUpdateOrthonormal(t *testing.T) {
	const n, width = 25, 6
	rng := rand.New(rand.NewSource(8))
	b := NewBackboneUpdate(width, rng)

	data := make([]float64, n*width)
	for i := range data {
		data[i] = rng.NormFloat64() * 3
	}
	frames := b.Forward(mat.NewDense(n, width, data))
	for i := 0; i < n; i++ {
		r := frames.Rotation(i)
		prod := r.Mul(r.Transpose())
		id := frame.IdentityRotation()
		for k := range prod {
			if math.Abs(prod[k]-id[k]) > tolerance {
				t.Fatalf("residue %d: R*R^T differs from I: %v", i, prod)
			}
		}
	}
}

// A zero feature vector parameterizes the quaternion (1, 0, 0, 0),
// which must normalize to the identity rotation with zero translation.
func TestBackboneUpdateZeroInput(t *testing.T) {
	const n, width = 4, 5
	b := NewBackboneUpdate(width, rand.New(rand.NewSource(9)))

	frames := b.Forward(mat.NewDense(n, width, nil))
	id := frame.IdentityRotation()
	for i := 0; i < n; i++ {
		r := frames.Rotation(i)
		for k := range r {
			if math.Abs(r[k]-id[k]) > tolerance {
				t.Fatalf("residue %d: rotation %v is not the identity", i, r)
			}
		}
		if tr := frames.Translation(i); r3.Norm(tr) > tolerance {
			t.Fatalf("residue %d: translation %v is not zero", i, tr)
		}
	}
}

// Translations are the raw projection output, with no activation.
func TestBackboneUpdateTranslation(t *testing.T) {
	const n, width = 10, 5
	rng := rand.New(rand.NewSource(10))
	b := NewBackboneUpdate(width, rng)

	data := make([]float64, n*width)
	for i := range data {
		data[i] = rng.Float64()
	}
	single := mat.NewDense(n, width, data)
	frames := b.Forward(single)

	proj := b.proj.forward(single)
	for i := 0; i < n; i++ {
		row := proj.RawRowView(i)
		want := r3.Vec{X: row[3], Y: row[4], Z: row[5]}
		if got := frames.Translation(i); r3.Norm(r3.Sub(got, want)) > tolerance {
			t.Fatalf("residue %d: translation %v, want raw projection %v", i, got, want)
		}
	}
}
