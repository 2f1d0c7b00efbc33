// Package seq provides the minimal protein sequence handling shared by
// the preprocessing tools: a named residue string and FASTA reading
// and writing.
package seq

// A Sequence is a named list of residues in one-letter code.
type Sequence struct {
	Name     string
	Residues []byte
}

// Len returns the number of residues in the sequence.
func (s Sequence) Len() int {
	return len(s.Residues)
}

// Copy returns a deep copy of the sequence.
func (s Sequence) Copy() Sequence {
	residues := make([]byte, len(s.Residues))
	copy(residues, s.Residues)
	return Sequence{Name: s.Name, Residues: residues}
}

// Slice returns the sub-sequence covering residues [start, end). The
// underlying residues are copied.
func (s Sequence) Slice(start, end int) Sequence {
	return Sequence{
		Name:     s.Name,
		Residues: append([]byte(nil), s.Residues[start:end]...),
	}
}
