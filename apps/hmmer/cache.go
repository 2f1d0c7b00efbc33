package hmmer

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// A Runner executes jackhmmer searches and caches their Stockholm
// results, gzip-compressed, in a directory keyed by query identifier.
// Search results are immutable once cached, so a Runner is safe for
// concurrent use as long as distinct queries use distinct identifiers.
type Runner struct {
	Config   JackhmmerConfig
	DB       Database
	CacheDir string

	// MaxSequences truncates each alignment to its first N sequences
	// before caching. Zero keeps every hit.
	MaxSequences int
}

// Search returns a reader over the Stockholm alignment for the query
// FASTA file, identified by id in the cache. A compressed cached
// result is answered directly; an uncompressed leftover is adopted
// into the cache; otherwise jackhmmer is executed, and its output
// truncated, cached and returned.
func (r Runner) Search(ctx context.Context, queryFasta, id string) (io.ReadCloser, error) {
	raw := filepath.Join(r.CacheDir, id+".sto")
	zipped := raw + ".gz"

	if rc, err := openGzip(zipped); err == nil {
		return rc, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if info, err := os.Stat(raw); err == nil && info.Size() > 0 {
		if err := compressInto(raw, zipped); err != nil {
			return nil, err
		}
		if err := os.Remove(raw); err != nil {
			return nil, err
		}
		return openGzip(zipped)
	}

	if err := r.run(ctx, queryFasta, raw); err != nil {
		return nil, err
	}
	if err := compressInto(raw, zipped); err != nil {
		return nil, err
	}
	if err := os.Remove(raw); err != nil {
		return nil, err
	}
	return openGzip(zipped)
}

// run executes the search into a temporary file, truncates the
// alignment and renames it into place so a crashed search never leaves
// a partial result behind.
func (r Runner) run(ctx context.Context, queryFasta, out string) error {
	tmp := out + ".tmp"
	defer os.Remove(tmp)

	if err := r.Config.Run(ctx, r.DB, queryFasta, tmp); err != nil {
		return err
	}
	if r.MaxSequences > 0 {
		if err := truncateFile(tmp, r.MaxSequences); err != nil {
			return fmt.Errorf("truncating alignment: %w", err)
		}
	}
	return os.Rename(tmp, out)
}

func truncateFile(path string, max int) error {
	in, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := TruncateSto(&buf, bytes.NewReader(in), max); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0666)
}

func compressInto(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// gzipReadCloser closes both the decompressor and the underlying file.
type gzipReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (g gzipReadCloser) Close() error {
	zerr := g.Reader.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

func openGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return gzipReadCloser{Reader: zr, f: f}, nil
}
