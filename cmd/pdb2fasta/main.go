// pdb2fasta converts the chains of a PDB file into FASTA entries,
// reading sequences either from resolved residues or from SEQRES
// records.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/foldkit/foldkit/cmd/util"
	"github.com/foldkit/foldkit/pdb"
	"github.com/foldkit/foldkit/seq"
)

var (
	flagChain          = ""
	flagSeparateChains = false
	flagSeqRes         = false
)

func main() {
	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
	}

	entry, err := pdb.New(flag.Arg(0))
	util.Assert(err, "Could not read PDB file '%s'", flag.Arg(0))

	var out io.Writer = os.Stdout
	if flag.NArg() == 2 {
		f, err := os.Create(flag.Arg(1))
		util.Assert(err, "Could not create FASTA file '%s'", flag.Arg(1))
		defer f.Close()
		out = f
	}

	var entries []seq.Sequence
	if flagSeparateChains {
		for _, chain := range entry.Chains {
			if !chainUsable(chain) {
				continue
			}
			residues := chainSequence(chain)
			if len(residues) == 0 {
				continue
			}
			entries = append(entries, seq.Sequence{
				Name:     chainHeader(chain),
				Residues: residues,
			})
		}
	} else {
		var residues []byte
		for _, chain := range entry.Chains {
			if chainUsable(chain) {
				residues = append(residues, chainSequence(chain)...)
			}
		}
		if len(residues) > 0 {
			entries = append(entries, seq.Sequence{
				Name:     strings.ToLower(entry.IdCode),
				Residues: residues,
			})
		}
	}

	if len(entries) == 0 {
		util.Fatalf("Could not find any chains with amino acids.")
	}
	util.Assert(seq.WriteFasta(out, entries), "Could not write FASTA")
}

func chainHeader(chain *pdb.Chain) string {
	return fmt.Sprintf("%s%c", strings.ToLower(chain.Entry.IdCode), chain.Ident)
}

func chainSequence(chain *pdb.Chain) []byte {
	if flagSeqRes {
		return chain.SeqRes
	}
	return chain.Sequence()
}

func chainUsable(chain *pdb.Chain) bool {
	if len(flagChain) == 0 {
		return true
	}
	return strings.IndexByte(flagChain, chain.Ident) >= 0
}

func init() {
	flag.StringVar(&flagChain, "chain", flagChain,
		"This may be set to one or more chain identifiers. Only amino acids "+
			"belonging to a chain specified will be included.")
	flag.BoolVar(&flagSeparateChains, "separate-chains", flagSeparateChains,
		"When set, each chain will get its own FASTA entry.")
	flag.BoolVar(&flagSeqRes, "seqres", flagSeqRes,
		"When set, sequences will be read from the SEQRES records. Otherwise, "+
			"sequences are read from residues with resolved backbone atoms.")
	flag.Usage = usage
	flag.Parse()
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage: %s [flags] in-pdb-file [out-fasta-file]\n",
		path.Base(os.Args[0]))
	flag.PrintDefaults()
	os.Exit(1)
}
