package structure

import (
	"gonum.org/v1/gonum/mat"

	"github.com/foldkit/foldkit/frame"
)

// A PairRep holds the pairwise residue representation: an N×N grid of
// feature vectors of fixed width. It is stored as an N²×dim matrix in
// which row i*N+j holds the features for the ordered residue pair
// (i, j).
type PairRep struct {
	n, dim int
	m      *mat.Dense
}

// NewPairRep wraps data, which must have length n*n*dim laid out as
// [i][j][feature], into a PairRep. The data is not copied.
func NewPairRep(n, dim int, data []float64) *PairRep {
	if len(data) != n*n*dim {
		frame.Shapef("structure: pair representation needs %d values, got %d",
			n*n*dim, len(data))
	}
	return &PairRep{n: n, dim: dim, m: mat.NewDense(n*n, dim, data)}
}

// Len returns the residue count N.
func (p *PairRep) Len() int { return p.n }

// Dim returns the per-pair feature width.
func (p *PairRep) Dim() int { return p.dim }

// At returns the feature vector for the residue pair (i, j). The
// returned slice aliases the representation's storage.
func (p *PairRep) At(i, j int) []float64 {
	return p.m.RawRowView(i*p.n + j)
}

// rows returns the N×dim block of features for pairs (i, 0..N-1).
func (p *PairRep) rows(i int) mat.Matrix {
	return p.m.Slice(i*p.n, (i+1)*p.n, 0, p.dim)
}
