package structure

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/foldkit/foldkit/frame"
)

// A linear is a dense affine map y = W*x + b applied independently to
// every row of its input. Weights are an out×in matrix; the bias is
// optional and starts at zero so that untrained layers map zero to
// zero.
type linear struct {
	in, out int
	w       *mat.Dense // out×in
	b       []float64  // nil for layers without a bias
}

func newLinear(in, out int, bias bool, rng *rand.Rand) *linear {
	if in <= 0 || out <= 0 {
		frame.Shapef("structure: linear layer with dimensions %dx%d", out, in)
	}
	bound := 1 / math.Sqrt(float64(in))
	w := make([]float64, in*out)
	for i := range w {
		w[i] = uniform(rng, -bound, bound)
	}
	l := &linear{
		in:  in,
		out: out,
		w:   mat.NewDense(out, in, w),
	}
	if bias {
		l.b = make([]float64, out)
	}
	return l
}

// forward applies the layer to each row of x, an n×in matrix, and
// returns the n×out result.
func (l *linear) forward(x *mat.Dense) *mat.Dense {
	n, in := x.Dims()
	if in != l.in {
		frame.Shapef("structure: linear layer expects width %d, got %d", l.in, in)
	}
	out := mat.NewDense(n, l.out, nil)
	out.Mul(x, l.w.T())
	if l.b != nil {
		for i := 0; i < n; i++ {
			row := out.RawRowView(i)
			for j := range row {
				row[j] += l.b[j]
			}
		}
	}
	return out
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if rng == nil {
		return lo + (hi-lo)*rand.Float64()
	}
	return lo + (hi-lo)*rng.Float64()
}
