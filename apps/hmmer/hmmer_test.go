package hmmer

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSto = `# STOCKHOLM 1.0
#=GF ID test
#=GS seq1 DE first hit
#=GS seq2 DE second hit
#=GS seq3 DE third hit
seq1 MKVLAG
seq2 MKVLAG
seq3 MKV-AG
#=GR seq3 PP 999.99
seq1 HTWE
seq2 HTW-
seq3 HTWE
//
`

func TestTruncateSto(t *testing.T) {
	var out strings.Builder
	if err := TruncateSto(&out, strings.NewReader(testSto), 2); err != nil {
		t.Fatal(err)
	}
	got := out.String()

	for _, want := range []string{
		"# STOCKHOLM 1.0",
		"#=GF ID test",
		"#=GS seq1",
		"seq2 HTW-",
		"//",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("truncated output is missing %q", want)
		}
	}
	if strings.Contains(got, "seq3") {
		t.Error("truncated output still mentions seq3")
	}
}

func TestTruncateStoKeepAll(t *testing.T) {
	var out strings.Builder
	if err := TruncateSto(&out, strings.NewReader(testSto), 0); err != nil {
		t.Fatal(err)
	}
	if out.String() != testSto {
		t.Error("max <= 0 should keep the alignment unchanged")
	}
}

func TestJackhmmerArgs(t *testing.T) {
	conf := JackhmmerDefault
	conf.CPUs = 4
	args := conf.args(Database("/data/small_bfd"), "query.fasta", "out.sto")

	joined := " " + strings.Join(args, " ") + " "
	for _, want := range []string{
		" --noali ",
		" --cpu 4 ",
		" -A out.sto ",
		" -N 1 ",
		" -E 0.0001 ",
		" --incE 0.0001 ",
		" --F1 0.0005 ",
		" --F2 5e-05 ",
		" --F3 5e-07 ",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q are missing %q", joined, want)
		}
	}
	if args[len(args)-2] != "query.fasta" || args[len(args)-1] != "/data/small_bfd" {
		t.Errorf("query and database must be the trailing arguments, got %v", args)
	}
}

func TestDatabaseResolve(t *testing.T) {
	defer func(old string) { DatabasePath = old }(DatabasePath)
	DatabasePath = "/data/seqdbs"

	if got := Database("small_bfd").Resolve(); got != "/data/seqdbs/small_bfd" {
		t.Errorf("relative database resolved to %q", got)
	}
	if got := Database("/abs/db").Resolve(); got != "/abs/db" {
		t.Errorf("absolute database resolved to %q", got)
	}
}

// A cached compressed result is answered without touching the binary.
func TestSearchCachedCompressed(t *testing.T) {
	dir := t.TempDir()
	r := Runner{
		Config:   JackhmmerConfig{Exec: "/nonexistent/jackhmmer"},
		DB:       Database("db"),
		CacheDir: dir,
	}

	writeGzip(t, filepath.Join(dir, "q1.sto.gz"), testSto)
	rc, err := r.Search(context.Background(), "query.fasta", "q1")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != testSto {
		t.Error("cached alignment differs from what was stored")
	}
}

// A leftover uncompressed result is adopted: compressed, removed, and
// served.
func TestSearchAdoptsRawResult(t *testing.T) {
	dir := t.TempDir()
	r := Runner{
		Config:   JackhmmerConfig{Exec: "/nonexistent/jackhmmer"},
		DB:       Database("db"),
		CacheDir: dir,
	}

	raw := filepath.Join(dir, "q2.sto")
	if err := os.WriteFile(raw, []byte(testSto), 0666); err != nil {
		t.Fatal(err)
	}

	rc, err := r.Search(context.Background(), "query.fasta", "q2")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != testSto {
		t.Error("adopted alignment differs from the raw file")
	}
	if _, err := os.Stat(raw); !os.IsNotExist(err) {
		t.Error("raw .sto should be removed after adoption")
	}
	if _, err := os.Stat(raw + ".gz"); err != nil {
		t.Errorf("compressed cache entry missing: %v", err)
	}
}

// Without a cache entry the runner tries to execute the binary; a
// missing executable surfaces as an error rather than a panic.
func TestSearchMissingBinary(t *testing.T) {
	r := Runner{
		Config:   JackhmmerConfig{Exec: "/nonexistent/jackhmmer"},
		DB:       Database("db"),
		CacheDir: t.TempDir(),
	}
	if _, err := r.Search(context.Background(), "query.fasta", "q3"); err == nil {
		t.Error("expected an error for a missing binary")
	}
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := gzip.NewWriter(f)
	if _, err := io.WriteString(zw, content); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}
