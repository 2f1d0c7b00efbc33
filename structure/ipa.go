// Package structure implements the geometric reasoning core of the
// model: invariant point attention over per-residue frames, the
// backbone update that refines those frames, and the refinement
// module that alternates the two.
package structure

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/foldkit/foldkit/frame"
)

// IPAConfig fixes the dimensions of an invariant point attention
// layer. All values must be positive.
type IPAConfig struct {
	// SingleSize is the width of the per-residue (single)
	// representation consumed and produced by the layer.
	SingleSize int

	// PairSize is the feature width of the pairwise representation.
	PairSize int

	// EmbedSize is the internal per-head embedding width.
	EmbedSize int

	// QueryPoints and ValuePoints are the number of 3D points
	// projected per head for scoring and for aggregation.
	QueryPoints int
	ValuePoints int

	// Heads is the number of attention heads.
	Heads int
}

// IPA is an invariant point attention layer. Its output is unchanged
// under any global rigid transform applied to all input frames: every
// absolute position it touches either enters as a distance between two
// globally-mapped points or is mapped back into the query residue's
// local frame before leaving the layer.
//
// The attention score is the sum of three per-head terms, kept as
// separate methods so each can be validated in isolation: a scaled
// query/key dot product over the single representation, a learned bias
// projected from the pair representation, and a distance penalty
// between query and key points expressed in global coordinates.
type IPA struct {
	cfg IPAConfig

	query       *linear // single -> heads*embed
	key         *linear // single -> heads*embed
	value       *linear // single -> heads*embed
	queryPoints *linear // single -> heads*queryPoints*3
	keyPoints   *linear // single -> heads*queryPoints*3
	valuePoints *linear // single -> heads*valuePoints*3
	bias        *linear // pair -> heads
	out         *linear // heads*(embed+pair+valuePoints*4) -> single

	// scaleHead is a learnable per-head scale for the frame term,
	// passed through softplus so the effective scale stays positive.
	scaleHead []float64

	scaleSingle float64 // 1/sqrt(embed)
	scaleFrame  float64 // -1/sqrt(18*queryPoints)
}

// NewIPA constructs an invariant point attention layer with randomly
// initialized projections. A nil rng falls back to the global source.
func NewIPA(cfg IPAConfig, rng *rand.Rand) *IPA {
	if cfg.SingleSize <= 0 || cfg.PairSize <= 0 || cfg.EmbedSize <= 0 ||
		cfg.QueryPoints <= 0 || cfg.ValuePoints <= 0 || cfg.Heads <= 0 {
		frame.Shapef("structure: invalid IPA config %+v", cfg)
	}
	m := &IPA{
		cfg:         cfg,
		query:       newLinear(cfg.SingleSize, cfg.Heads*cfg.EmbedSize, false, rng),
		key:         newLinear(cfg.SingleSize, cfg.Heads*cfg.EmbedSize, false, rng),
		value:       newLinear(cfg.SingleSize, cfg.Heads*cfg.EmbedSize, false, rng),
		queryPoints: newLinear(cfg.SingleSize, cfg.Heads*cfg.QueryPoints*3, false, rng),
		keyPoints:   newLinear(cfg.SingleSize, cfg.Heads*cfg.QueryPoints*3, false, rng),
		valuePoints: newLinear(cfg.SingleSize, cfg.Heads*cfg.ValuePoints*3, false, rng),
		bias:        newLinear(cfg.PairSize, cfg.Heads, false, rng),
		out: newLinear(
			cfg.Heads*(cfg.EmbedSize+cfg.PairSize+cfg.ValuePoints*4),
			cfg.SingleSize, true, rng),
		scaleHead:   make([]float64, cfg.Heads),
		scaleSingle: 1 / math.Sqrt(float64(cfg.EmbedSize)),
		scaleFrame:  -1 / math.Sqrt(18*float64(cfg.QueryPoints)),
	}
	for h := range m.scaleHead {
		m.scaleHead[h] = 1
	}
	return m
}

// Config returns the dimensions the layer was built with.
func (m *IPA) Config() IPAConfig { return m.cfg }

// Forward computes the attention update for the single representation.
// single is N×SingleSize, pair covers the same N residues, and frames
// holds one rigid transform per residue. The result is N×SingleSize.
func (m *IPA) Forward(single *mat.Dense, pair *PairRep, frames frame.Frame) *mat.Dense {
	n := m.checkInputs(single, pair, frames)

	weight := m.SingleWeight(single)
	addEach(weight, m.PairWeight(pair))
	addEach(weight, m.FrameWeight(frames, single))
	for _, w := range weight {
		softmaxRows(w)
	}

	scalar := m.singleAttention(weight, single)      // per head: n×embed
	pairAtt := m.pairAttention(weight, pair)         // per head: n×pair
	points := m.pointAttention(weight, frames, single) // [head][point][residue]

	cfg := m.cfg
	width := cfg.Heads * (cfg.EmbedSize + cfg.PairSize + cfg.ValuePoints*4)
	cat := mat.NewDense(n, width, nil)
	for i := 0; i < n; i++ {
		row := cat.RawRowView(i)
		c := 0
		for h := 0; h < cfg.Heads; h++ {
			c += copy(row[c:], scalar[h].RawRowView(i))
		}
		for h := 0; h < cfg.Heads; h++ {
			c += copy(row[c:], pairAtt[h].RawRowView(i))
		}
		for h := 0; h < cfg.Heads; h++ {
			for p := 0; p < cfg.ValuePoints; p++ {
				v := points[h][p][i]
				row[c] = v.X
				row[c+1] = v.Y
				row[c+2] = v.Z
				c += 3
			}
		}
		for h := 0; h < cfg.Heads; h++ {
			for p := 0; p < cfg.ValuePoints; p++ {
				row[c] = r3.Norm(points[h][p][i])
				c++
			}
		}
	}
	return m.out.forward(cat)
}

// SingleWeight computes the scalar score term: for head h and residues
// (i, j), scaleSingle * q[i,h]·k[j,h]. One N×N matrix per head.
func (m *IPA) SingleWeight(single *mat.Dense) []*mat.Dense {
	n, _ := single.Dims()
	q := m.query.forward(single)
	k := m.key.forward(single)

	weight := make([]*mat.Dense, m.cfg.Heads)
	d := m.cfg.EmbedSize
	for h := range weight {
		qh := q.Slice(0, n, h*d, (h+1)*d)
		kh := k.Slice(0, n, h*d, (h+1)*d)
		w := mat.NewDense(n, n, nil)
		w.Mul(qh, kh.T())
		w.Scale(m.scaleSingle, w)
		weight[h] = w
	}
	return weight
}

// PairWeight computes the pair score term: the bias projection of the
// pair representation, with the head axis leading. One N×N matrix per
// head, where entry (i, j) is the bias for row residue i attending to
// column residue j.
func (m *IPA) PairWeight(pair *PairRep) []*mat.Dense {
	n := pair.Len()
	b := m.bias.forward(pair.m) // n²×heads

	weight := make([]*mat.Dense, m.cfg.Heads)
	for h := range weight {
		w := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				w.Set(i, j, b.At(i*n+j, h))
			}
		}
		weight[h] = w
	}
	return weight
}

// FrameWeight computes the frame score term. Query and key points are
// projected in each residue's local frame, mapped to global
// coordinates through that residue's transform, and scored by the
// summed squared distance over the query points, scaled by
// softplus(scaleHead[h]) * scaleFrame. The scale is negative: the
// farther apart two residues' points sit, the lower the score.
func (m *IPA) FrameWeight(frames frame.Frame, single *mat.Dense) []*mat.Dense {
	n, _ := single.Dims()
	qp := m.globalPoints(m.queryPoints, m.cfg.QueryPoints, single, frames)
	kp := m.globalPoints(m.keyPoints, m.cfg.QueryPoints, single, frames)

	weight := make([]*mat.Dense, m.cfg.Heads)
	for h := range weight {
		scale := softplus(m.scaleHead[h]) * m.scaleFrame
		w := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				var sum float64
				for p := 0; p < m.cfg.QueryPoints; p++ {
					sum += r3.Norm2(r3.Sub(qp[i][h][p], kp[j][h][p]))
				}
				w.Set(i, j, scale*sum)
			}
		}
		weight[h] = w
	}
	return weight
}

// singleAttention aggregates the value projection under the attention
// weights: per head, weight · value, an n×embed matrix.
func (m *IPA) singleAttention(weight []*mat.Dense, single *mat.Dense) []*mat.Dense {
	n, _ := single.Dims()
	v := m.value.forward(single)
	d := m.cfg.EmbedSize

	att := make([]*mat.Dense, m.cfg.Heads)
	for h := range att {
		vh := v.Slice(0, n, h*d, (h+1)*d)
		a := mat.NewDense(n, d, nil)
		a.Mul(weight[h], vh)
		att[h] = a
	}
	return att
}

// pairAttention aggregates the raw pair representation (not the bias
// projection used for scoring) under the attention weights: for head h
// and residue i, the weighted sum over j of pair[i, j, :].
func (m *IPA) pairAttention(weight []*mat.Dense, pair *PairRep) []*mat.Dense {
	n := pair.Len()

	att := make([]*mat.Dense, m.cfg.Heads)
	for h := range att {
		a := mat.NewDense(n, pair.Dim(), nil)
		for i := 0; i < n; i++ {
			wRow := weight[h].Slice(i, i+1, 0, n)
			var res mat.Dense
			res.Mul(wRow, pair.rows(i))
			copy(a.RawRowView(i), res.RawRowView(0))
		}
		att[h] = a
	}
	return att
}

// pointAttention aggregates value points in global coordinates, then
// maps each aggregate back into the query residue's local frame so the
// result is invariant to global rigid motion. Indexed
// [head][point][residue].
func (m *IPA) pointAttention(weight []*mat.Dense, frames frame.Frame, single *mat.Dense) [][][]r3.Vec {
	n, _ := single.Dims()
	vp := m.globalPoints(m.valuePoints, m.cfg.ValuePoints, single, frames)
	inv := frames.Inverse()

	att := make([][][]r3.Vec, m.cfg.Heads)
	for h := range att {
		att[h] = make([][]r3.Vec, m.cfg.ValuePoints)
		for p := range att[h] {
			att[h][p] = make([]r3.Vec, n)
			for i := 0; i < n; i++ {
				var sum r3.Vec
				for j := 0; j < n; j++ {
					sum = r3.Add(sum, r3.Scale(weight[h].At(i, j), vp[j][h][p]))
				}
				att[h][p][i] = inv.Apply(i, sum)
			}
		}
	}
	return att
}

// globalPoints projects the single representation to per-head local 3D
// points and maps each residue's points into global coordinates
// through that residue's frame. Indexed [residue][head][point].
func (m *IPA) globalPoints(proj *linear, perHead int, single *mat.Dense, frames frame.Frame) [][][]r3.Vec {
	n, _ := single.Dims()
	flat := proj.forward(single) // n×(heads*perHead*3)

	pts := make([][][]r3.Vec, n)
	for i := 0; i < n; i++ {
		row := flat.RawRowView(i)
		pts[i] = make([][]r3.Vec, m.cfg.Heads)
		for h := range pts[i] {
			pts[i][h] = make([]r3.Vec, perHead)
			for p := range pts[i][h] {
				base := (h*perHead + p) * 3
				local := r3.Vec{X: row[base], Y: row[base+1], Z: row[base+2]}
				pts[i][h][p] = frames.Apply(i, local)
			}
		}
	}
	return pts
}

func (m *IPA) checkInputs(single *mat.Dense, pair *PairRep, frames frame.Frame) int {
	n, d := single.Dims()
	if d != m.cfg.SingleSize {
		frame.Shapef("structure: single representation width %d, config says %d",
			d, m.cfg.SingleSize)
	}
	if pair.Len() != n {
		frame.Shapef("structure: pair representation covers %d residues, single has %d",
			pair.Len(), n)
	}
	if pair.Dim() != m.cfg.PairSize {
		frame.Shapef("structure: pair representation width %d, config says %d",
			pair.Dim(), m.cfg.PairSize)
	}
	if frames.Len() != n {
		frame.Shapef("structure: %d frames for %d residues", frames.Len(), n)
	}
	return n
}

func addEach(dst, src []*mat.Dense) {
	for h := range dst {
		dst[h].Add(dst[h], src[h])
	}
}

// softmaxRows normalizes each row of w in place.
func softmaxRows(w *mat.Dense) {
	n, _ := w.Dims()
	for i := 0; i < n; i++ {
		row := w.RawRowView(i)
		max := floats.Max(row)
		for j, x := range row {
			row[j] = math.Exp(x - max)
		}
		sum := floats.Sum(row)
		floats.Scale(1/sum, row)
	}
}

// softplus is log(1 + e^x), computed without overflow for large x.
func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}
