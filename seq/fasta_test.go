package seq

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadFasta(t *testing.T) {
	in := `>query description here
MKVL
AGHT

>second
GG
`
	seqs, err := ReadFasta(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 2 {
		t.Fatalf("%d entries, want 2", len(seqs))
	}
	if seqs[0].Name != "query description here" {
		t.Errorf("name %q", seqs[0].Name)
	}
	if got := string(seqs[0].Residues); got != "MKVLAGHT" {
		t.Errorf("residues %q, want MKVLAGHT", got)
	}
	if got := string(seqs[1].Residues); got != "GG" {
		t.Errorf("residues %q, want GG", got)
	}
}

func TestReadFastaErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"residues before header", "MKVL\n"},
		{"empty entry", ">lonely\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadFasta(strings.NewReader(tt.in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriteFastaRoundTrip(t *testing.T) {
	long := strings.Repeat("MKVLAGHTWE", 13) // forces wrapping
	want := []Sequence{
		{Name: "a", Residues: []byte(long)},
		{Name: "b", Residues: []byte("GG")},
	}

	var buf bytes.Buffer
	if err := WriteFasta(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFasta(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("%d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("entry %d: name %q, want %q", i, got[i].Name, want[i].Name)
		}
		if string(got[i].Residues) != string(want[i].Residues) {
			t.Errorf("entry %d: residues differ after round trip", i)
		}
	}
}
