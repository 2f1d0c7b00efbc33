package pdb

import (
	"compress/gzip"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/foldkit/foldkit/frame"
)

const tolerance = 1e-5

func atomLine(serial int, name, resName string, chain byte, seq int, x, y, z float64) string {
	return fmt.Sprintf("ATOM  %5d %-4s %3s %c%4d    %8.3f%8.3f%8.3f  1.00  0.00",
		serial, name, resName, chain, seq, x, y, z)
}

func fixture() string {
	lines := []string{
		"HEADER" + strings.Repeat(" ", 56) + "1ABC",
		"SEQRES   1 A    3  MET ALA GLY",

		atomLine(1, "N", "MET", 'A', 1, 0, 1, 0),
		atomLine(2, "CA", "MET", 'A', 1, 0, 0, 0),
		atomLine(3, "C", "MET", 'A', 1, 1, 0, 0),
		atomLine(4, "O", "MET", 'A', 1, 2, 0, 0), // skipped: not backbone

		atomLine(5, "N", "ALA", 'A', 2, 3, 1, 2),
		atomLine(6, "CA", "ALA", 'A', 2, 3, 0, 2),
		atomLine(7, "C", "ALA", 'A', 2, 4, 0, 2),

		// No CA: the residue is dropped.
		atomLine(8, "N", "GLY", 'A', 3, 6, 1, 4),
		atomLine(9, "C", "GLY", 'A', 3, 7, 0, 4),

		// Water is not a standard residue.
		"HETATM   10  O   HOH A   4      9.000   9.000   9.000",
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestRead(t *testing.T) {
	entry, err := Read(strings.NewReader(fixture()))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	if entry.IdCode != "1ABC" {
		t.Errorf("IdCode %q, want 1ABC", entry.IdCode)
	}
	if len(entry.Chains) != 1 {
		t.Fatalf("%d chains, want 1", len(entry.Chains))
	}

	chain := entry.OneChain()
	if got := string(chain.SeqRes); got != "MAG" {
		t.Errorf("SEQRES sequence %q, want MAG", got)
	}
	if got := string(chain.Sequence()); got != "MA" {
		t.Errorf("resolved sequence %q, want MA (GLY has no CA)", got)
	}

	met := chain.Residues[0]
	if !met.HasN || !met.HasC {
		t.Error("MET should have both flanking backbone atoms")
	}
	if r3.Norm(met.CA) > tolerance {
		t.Errorf("MET CA at %v, want origin", met.CA)
	}
}

func TestNewGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1abc.pdb.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(fixture())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	entry, err := New(path)
	if err != nil {
		t.Fatalf("reading gzipped entry: %v", err)
	}
	if got := string(entry.OneChain().Sequence()); got != "MA" {
		t.Errorf("resolved sequence %q, want MA", got)
	}
}

func TestFrames(t *testing.T) {
	entry, err := Read(strings.NewReader(fixture()))
	if err != nil {
		t.Fatal(err)
	}
	chain := entry.OneChain()
	frames := chain.Frames()
	if frames.Len() != len(chain.Residues) {
		t.Fatalf("%d frames for %d residues", frames.Len(), len(chain.Residues))
	}

	for i, res := range chain.Residues {
		if got := frames.Translation(i); r3.Norm(r3.Sub(got, res.CA)) > tolerance {
			t.Errorf("residue %d: translation %v, want CA %v", i, got, res.CA)
		}
		r := frames.Rotation(i)
		prod := r.Mul(r.Transpose())
		id := frame.IdentityRotation()
		for k := range prod {
			if math.Abs(prod[k]-id[k]) > tolerance {
				t.Fatalf("residue %d: rotation is not orthonormal: %v", i, r)
			}
		}
	}

	// For MET, C-CA is +x and N-CA is +y, so the first two basis
	// columns are the x and y axes and the rotation is the identity.
	r := frames.Rotation(0)
	id := frame.IdentityRotation()
	for k := range r {
		if math.Abs(r[k]-id[k]) > tolerance {
			t.Fatalf("MET rotation %v, want identity", r)
		}
	}
}

func TestResidueRotationDegenerate(t *testing.T) {
	tests := []struct {
		name string
		res  Residue
	}{
		{"missing N", Residue{CA: r3.Vec{}, C: r3.Vec{X: 1}, HasC: true}},
		{"missing C", Residue{CA: r3.Vec{}, N: r3.Vec{Y: 1}, HasN: true}},
		{"collinear backbone", Residue{
			CA:   r3.Vec{},
			N:    r3.Vec{X: -1},
			C:    r3.Vec{X: 1},
			HasN: true,
			HasC: true,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := residueRotation(tt.res); got != frame.IdentityRotation() {
				t.Errorf("got %v, want identity fallback", got)
			}
		})
	}
}
