package seq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// fastaCols is the residue wrap width used when writing FASTA entries.
const fastaCols = 60

// ReadFasta reads all FASTA entries from r. Residues may span multiple
// lines; blank lines are ignored. An entry with no residues is an
// error, as is residue data before the first header.
func ReadFasta(r io.Reader) ([]Sequence, error) {
	var seqs []Sequence
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			seqs = append(seqs, Sequence{Name: strings.TrimSpace(line[1:])})
			continue
		}
		if len(seqs) == 0 {
			return nil, fmt.Errorf("fasta: residues before the first '>' header")
		}
		s := &seqs[len(seqs)-1]
		s.Residues = append(s.Residues, []byte(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for _, s := range seqs {
		if s.Len() == 0 {
			return nil, fmt.Errorf("fasta: entry '%s' has no residues", s.Name)
		}
	}
	return seqs, nil
}

// WriteFasta writes the given sequences to w in FASTA format, wrapping
// residues at 60 columns.
func WriteFasta(w io.Writer, seqs []Sequence) error {
	var buf bytes.Buffer
	for _, s := range seqs {
		fmt.Fprintf(&buf, ">%s\n", s.Name)
		for start := 0; start < s.Len(); start += fastaCols {
			end := start + fastaCols
			if end > s.Len() {
				end = s.Len()
			}
			buf.Write(s.Residues[start:end])
			buf.WriteByte('\n')
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
