// pdb-frames prints the per-residue rigid frames derived from a PDB
// file's backbone atoms: for every resolved residue, its chain,
// residue number, name, rotation matrix and alpha-carbon translation.
package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/foldkit/foldkit/cmd/util"
	"github.com/foldkit/foldkit/pdb"
)

var flagChain = ""

func main() {
	util.AssertNArg(1)

	entry, err := pdb.New(flag.Arg(0))
	util.Assert(err, "Could not read PDB file '%s'", flag.Arg(0))

	idents := make([]byte, 0, len(entry.Chains))
	for ident := range entry.Chains {
		if len(flagChain) == 0 || flagChain[0] == ident {
			idents = append(idents, ident)
		}
	}
	if len(idents) == 0 {
		util.Fatalf("No matching chains in '%s'.", flag.Arg(0))
	}
	sort.Slice(idents, func(i, j int) bool { return idents[i] < idents[j] })

	for _, ident := range idents {
		chain := entry.Chains[ident]
		frames := chain.Frames()
		for i, res := range chain.Residues {
			r := frames.Rotation(i)
			t := frames.Translation(i)
			fmt.Printf("%c %4d %s\n", chain.Ident, res.SeqNum, res.Name)
			for row := 0; row < 3; row++ {
				fmt.Printf("    | %8.4f %8.4f %8.4f |\n",
					r[row*3], r[row*3+1], r[row*3+2])
			}
			fmt.Printf("    t = (%8.3f, %8.3f, %8.3f)\n", t.X, t.Y, t.Z)
		}
	}
}

func init() {
	flag.StringVar(&flagChain, "chain", flagChain,
		"When set, only the chain with this identifier is printed.")
	flag.Usage = usage
	flag.Parse()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] pdb-file\n", path.Base(os.Args[0]))
	flag.PrintDefaults()
	os.Exit(1)
}
