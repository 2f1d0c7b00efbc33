// Package pdb reads protein crystal structure files in PDB format and
// derives per-residue rigid frames from their backbone atoms. Only the
// records needed to build training examples are parsed: SEQRES for the
// declared sequence and ATOM records for the backbone atoms N, CA and
// C of standard amino acids.
package pdb

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// AminoThreeToOne is a map from three letter amino acids to their
// corresponding single letter representation.
var AminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O',
}

// AminoOneToThree is the reverse of AminoThreeToOne. It is created in
// this package's 'init' function.
var AminoOneToThree = map[byte]string{}

func init() {
	for k, v := range AminoThreeToOne {
		AminoOneToThree[v] = k
	}
}

// A Residue holds one residue's name and backbone atom coordinates.
// Only residues with an alpha-carbon are kept; the flanking N and C
// atoms may be absent in partially resolved structures.
type Residue struct {
	Name   string // three-letter code
	SeqNum int

	CA    r3.Vec
	N, C  r3.Vec
	hasCA bool
	HasN  bool
	HasC  bool
}

// A Chain is a single protein chain: its SEQRES sequence and the
// ordered residues for which backbone coordinates were resolved.
type Chain struct {
	Entry *Entry
	Ident byte

	// SeqRes is the one-letter sequence from SEQRES records.
	SeqRes []byte

	// Residues are the residues with an alpha-carbon ATOM record,
	// in file order.
	Residues []Residue
}

// Sequence returns the one-letter sequence of the resolved residues.
func (c *Chain) Sequence() []byte {
	seq := make([]byte, len(c.Residues))
	for i, r := range c.Residues {
		seq[i] = AminoThreeToOne[r.Name]
	}
	return seq
}

func (c *Chain) String() string {
	return fmt.Sprintf("%c (%d residues): %s",
		c.Ident, len(c.Residues), string(c.Sequence()))
}

// Entry represents all information read from a particular PDB file.
type Entry struct {
	Path   string
	IdCode string
	Chains map[byte]*Chain
}

// New creates a new PDB Entry from a file. If the file cannot be read,
// or there is an error parsing the PDB file, an error is returned.
//
// If the file name ends with ".gz", gzip decompression will be used.
func New(fileName string) (*Entry, error) {
	var reader io.Reader
	reader, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	if path.Ext(fileName) == ".gz" {
		if reader, err = gzip.NewReader(reader); err != nil {
			return nil, err
		}
	}
	entry, err := Read(reader)
	if err != nil {
		return nil, fmt.Errorf("error parsing PDB file '%s': %w", fileName, err)
	}
	entry.Path = fileName
	return entry, nil
}

// Read parses PDB records from r.
func Read(r io.Reader) (*Entry, error) {
	entry := &Entry{
		Chains: make(map[byte]*Chain),
	}

	// PDB records are 80 columns; lines longer than the buffer never
	// matter here.
	breader := bufio.NewReaderSize(r, 1000)
	for {
		line, _, err := breader.ReadLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		switch strings.TrimSpace(at(line, 0, 6)) {
		case "HEADER":
			entry.IdCode = strings.TrimSpace(at(line, 62, 66))
		case "SEQRES":
			entry.parseSeqres(line)
		case "ATOM":
			if err := entry.parseAtom(line); err != nil {
				return nil, err
			}
		}
	}

	// Residues whose alpha-carbon was never resolved cannot anchor a
	// frame and are dropped, mirroring the SEQRES/ATOM mismatch
	// handling of the training preprocessor.
	for _, chain := range entry.Chains {
		kept := chain.Residues[:0]
		for _, res := range chain.Residues {
			if res.hasCA {
				kept = append(kept, res)
			}
		}
		chain.Residues = kept
	}
	return entry, nil
}

// String returns a sorted list of all chains with their resolved
// sequences.
func (e *Entry) String() string {
	lines := make([]string, 0, len(e.Chains))
	for _, chain := range e.Chains {
		lines = append(lines, chain.String())
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// OneChain returns a single chain. If there is more than one chain,
// OneChain panics: it exists for the common case of single-chain
// entries, and calling it on anything else is a caller bug.
func (e *Entry) OneChain() *Chain {
	if len(e.Chains) != 1 {
		panic(fmt.Sprintf("OneChain can only be called on PDB entries with "+
			"one chain, but the entry '%s' has %d chains.",
			e.Path, len(e.Chains)))
	}
	for _, chain := range e.Chains {
		return chain
	}
	panic("unreachable")
}

// getOrMakeChain looks for a chain corresponding to the chain
// identifier, creating it on first use.
func (e *Entry) getOrMakeChain(ident byte) *Chain {
	if ident == ' ' {
		ident = '_'
	}
	if chain, ok := e.Chains[ident]; ok {
		return chain
	}
	chain := &Chain{
		Entry: e,
		Ident: ident,
	}
	e.Chains[ident] = chain
	return chain
}

// parseSeqres appends the residues of a SEQRES record to the chain's
// declared sequence. Non-standard residues map to 'X'.
func (e *Entry) parseSeqres(line []byte) {
	chain := e.getOrMakeChain(line[11])
	for _, name := range strings.Fields(at(line, 19, 71)) {
		if one, ok := AminoThreeToOne[name]; ok {
			chain.SeqRes = append(chain.SeqRes, one)
		} else {
			chain.SeqRes = append(chain.SeqRes, 'X')
		}
	}
}

// parseAtom folds an ATOM record for a backbone atom (N, CA or C) of a
// standard amino acid into the chain's residue list. All other ATOM
// records are skipped, as are alternate locations beyond the first.
func (e *Entry) parseAtom(line []byte) error {
	atomName := strings.TrimSpace(at(line, 12, 16))
	if atomName != "N" && atomName != "CA" && atomName != "C" {
		return nil
	}
	if altLoc := line[16]; altLoc != ' ' && altLoc != 'A' {
		return nil
	}
	resName := strings.TrimSpace(at(line, 17, 20))
	if _, ok := AminoThreeToOne[resName]; !ok {
		return nil
	}

	seqNum, err := strconv.Atoi(strings.TrimSpace(at(line, 22, 26)))
	if err != nil {
		return fmt.Errorf("bad residue number in ATOM record: %w", err)
	}
	coords, err := parseCoords(line)
	if err != nil {
		return err
	}

	chain := e.getOrMakeChain(line[21])
	n := len(chain.Residues)
	if n == 0 || chain.Residues[n-1].SeqNum != seqNum {
		chain.Residues = append(chain.Residues, Residue{
			Name:   resName,
			SeqNum: seqNum,
		})
		n++
	}
	res := &chain.Residues[n-1]
	switch atomName {
	case "N":
		res.N, res.HasN = coords, true
	case "CA":
		res.CA, res.hasCA = coords, true
	case "C":
		res.C, res.HasC = coords, true
	}
	return nil
}

func parseCoords(line []byte) (r3.Vec, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(at(line, 30, 38)), 64)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("bad x coordinate in ATOM record: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(at(line, 38, 46)), 64)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("bad y coordinate in ATOM record: %w", err)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(at(line, 46, 54)), 64)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("bad z coordinate in ATOM record: %w", err)
	}
	return r3.Vec{X: x, Y: y, Z: z}, nil
}

// at slices a fixed-column PDB record, tolerating short lines.
func at(line []byte, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return string(line[start:end])
}
