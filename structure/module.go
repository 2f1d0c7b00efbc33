package structure

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/foldkit/foldkit/frame"
)

// ModuleConfig fixes the shape of a refinement Module.
type ModuleConfig struct {
	// Layers is the number of refinement iterations.
	Layers int

	// IPA configures the shared attention layer.
	IPA IPAConfig
}

// A Module runs the structure refinement loop: starting from identity
// frames, each layer adds an invariant point attention update to the
// single representation and composes the current frames with a
// backbone update derived from it. The attention and update weights
// are shared across layers.
type Module struct {
	cfg    ModuleConfig
	ipa    *IPA
	update *BackboneUpdate
}

// NewModule constructs a refinement module. A nil rng falls back to
// the global source.
func NewModule(cfg ModuleConfig, rng *rand.Rand) *Module {
	if cfg.Layers <= 0 {
		frame.Shapef("structure: module needs at least one layer, got %d", cfg.Layers)
	}
	return &Module{
		cfg:    cfg,
		ipa:    NewIPA(cfg.IPA, rng),
		update: NewBackboneUpdate(cfg.IPA.SingleSize, rng),
	}
}

// Forward refines frames for the N residues described by single
// (N×SingleSize) and pair. It returns the final frames and the updated
// single representation; the input matrix is not modified.
func (m *Module) Forward(single *mat.Dense, pair *PairRep) (frame.Frame, *mat.Dense) {
	n, _ := single.Dims()
	frames := frame.Identity(n)
	s := mat.DenseCopyOf(single)
	for l := 0; l < m.cfg.Layers; l++ {
		s.Add(s, m.ipa.Forward(s, pair, frames))
		frames = frame.Compose(frames, m.update.Forward(s))
	}
	return frames, s
}
