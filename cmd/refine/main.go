// refine runs the structure refinement loop over a single chain of a
// PDB file and prints the resulting alpha-carbon trace. The network
// weights are randomly initialized from -seed, so the output geometry
// is only as good as the weights; the command exists to exercise the
// full pipeline from file to frames.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path"

	"gonum.org/v1/gonum/mat"

	"github.com/foldkit/foldkit/cmd/util"
	"github.com/foldkit/foldkit/config"
	"github.com/foldkit/foldkit/pdb"
	"github.com/foldkit/foldkit/structure"
)

var (
	flagConfig = ""
	flagChain  = ""
	flagSeed   = int64(1)
)

func main() {
	util.AssertNArg(1)

	conf, err := config.Load(flagConfig)
	util.Assert(err, "Could not load configuration")

	entry, err := pdb.New(flag.Arg(0))
	util.Assert(err, "Could not read PDB file '%s'", flag.Arg(0))

	var chain *pdb.Chain
	if len(flagChain) == 0 {
		chain = entry.OneChain()
	} else if chain = entry.Chains[flagChain[0]]; chain == nil {
		util.Fatalf("No chain '%c' in '%s'.", flagChain[0], flag.Arg(0))
	}
	n := len(chain.Residues)
	if n == 0 {
		util.Fatalf("Chain '%c' has no resolved residues.", chain.Ident)
	}

	rng := rand.New(rand.NewSource(flagSeed))
	module := structure.NewModule(structure.ModuleConfig{
		Layers: conf.Structure.NumLayers,
		IPA: structure.IPAConfig{
			SingleSize:  conf.Model.SingleEmbeddingSize,
			PairSize:    conf.Model.PairEmbeddingSize,
			EmbedSize:   conf.IPA.EmbeddingSize,
			QueryPoints: conf.IPA.NumQueryPoints,
			ValuePoints: conf.IPA.NumValuePoints,
			Heads:       conf.IPA.NumHeads,
		},
	}, rng)

	single, pair := featurize(chain, conf)

	util.Logger.Info().
		Int("residues", n).
		Int("layers", conf.Structure.NumLayers).
		Msg("refining")

	frames, _ := module.Forward(single, pair)
	for i, res := range chain.Residues {
		t := frames.Translation(i)
		fmt.Printf("%c %4d %s %8.3f %8.3f %8.3f\n",
			chain.Ident, res.SeqNum, res.Name, t.X, t.Y, t.Z)
	}
}

// featurize builds crude input representations from the chain: the
// single representation one-hot encodes each residue's amino acid and
// the pair representation one-hot encodes the sequence offset between
// residue pairs, saturating at the embedding width.
func featurize(chain *pdb.Chain, conf config.Config) (*mat.Dense, *structure.PairRep) {
	n := len(chain.Residues)
	sdim, pdim := conf.Model.SingleEmbeddingSize, conf.Model.PairEmbeddingSize

	single := mat.NewDense(n, sdim, nil)
	for i, res := range chain.Residues {
		aa := pdb.AminoThreeToOne[res.Name]
		single.Set(i, int(aa)%sdim, 1)
	}

	pairData := make([]float64, n*n*pdim)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			off := i - j
			if off < 0 {
				off = -off
			}
			if off >= pdim {
				off = pdim - 1
			}
			pairData[(i*n+j)*pdim+off] = 1
		}
	}
	return single, structure.NewPairRep(n, pdim, pairData)
}

func init() {
	flag.StringVar(&flagConfig, "config", flagConfig,
		"Path to a TOML configuration file. When empty, defaults plus "+
			"environment overrides are used.")
	flag.StringVar(&flagChain, "chain", flagChain,
		"The chain to refine. Required when the PDB file has several.")
	flag.Int64Var(&flagSeed, "seed", flagSeed,
		"Seed for the random weight initialization.")
	flag.Usage = usage
	flag.Parse()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] pdb-file\n", path.Base(os.Args[0]))
	flag.PrintDefaults()
	os.Exit(1)
}
