// Package hmmer provides a convenient wrapper for running jackhmmer
// searches against a sequence database, with gzip-compressed caching
// of the resulting Stockholm alignments.
//
// The FOLD_SEQDB_DIR environment variable is used to determine the
// location of databases: a database named "small_bfd" resolves to
// $FOLD_SEQDB_DIR/small_bfd. If this behavior is not desired, change
// the global variable DatabasePath. (An empty database path leaves
// database names untouched.)
package hmmer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
)

// DatabasePath is used to resolve the full paths of databases. See the
// package documentation.
var DatabasePath = os.Getenv("FOLD_SEQDB_DIR")

// A Database is a sequence database for jackhmmer, named relative to
// DatabasePath. Absolute paths are used unaltered.
type Database string

// Resolve expands a Database value to its full path using
// DatabasePath.
func (db Database) Resolve() string {
	if filepath.IsAbs(string(db)) {
		return string(db)
	}
	return filepath.Join(DatabasePath, string(db))
}

// JackhmmerConfig holds the jackhmmer options the preprocessing
// pipeline cares about. Options are added on an as-needed basis.
type JackhmmerConfig struct {
	Exec       string
	CPUs       int
	Iterations int

	// ReportE and InclusionE are the sequence E-value thresholds for
	// reporting and inclusion.
	ReportE    float64
	InclusionE float64

	// F1, F2 and F3 are the MSV, Viterbi and Forward filter
	// thresholds of the acceleration pipeline.
	F1, F2, F3 float64
}

// JackhmmerDefault mirrors the search parameters the training
// preprocessor uses: a single iteration with tight E-value and filter
// thresholds.
var JackhmmerDefault = JackhmmerConfig{
	Exec:       "jackhmmer",
	CPUs:       runtime.NumCPU(),
	Iterations: 1,
	ReportE:    0.0001,
	InclusionE: 0.0001,
	F1:         0.0005,
	F2:         0.00005,
	F3:         0.0000005,
}

func (conf JackhmmerConfig) args(db Database, query, out string) []string {
	ff := func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return []string{
		"--noali",
		"--cpu", strconv.Itoa(conf.CPUs),
		"-A", out,
		"-N", strconv.Itoa(conf.Iterations),
		"-E", ff(conf.ReportE),
		"--incE", ff(conf.InclusionE),
		"--F1", ff(conf.F1),
		"--F2", ff(conf.F2),
		"--F3", ff(conf.F3),
		query,
		db.Resolve(),
	}
}

// Run executes jackhmmer with the given configuration, searching the
// database with the query FASTA file and writing the resulting
// Stockholm alignment to out. On failure the process's stderr is
// folded into the returned error.
func (conf JackhmmerConfig) Run(ctx context.Context, db Database, query, out string) error {
	cmd := exec.CommandContext(ctx, conf.Exec, conf.args(db, query, out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", conf.Exec, err, lastLines(stderr.Bytes(), 5))
	}
	return nil
}

// lastLines returns up to n trailing non-empty lines of buf as a
// single string.
func lastLines(buf []byte, n int) string {
	lines := bytes.Split(bytes.TrimSpace(buf), []byte{'\n'})
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return string(bytes.Join(lines, []byte("; ")))
}
