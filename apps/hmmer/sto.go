package hmmer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxStoLine bounds a single Stockholm line. Alignments against large
// databases produce very long alignment rows.
const maxStoLine = 16 * 1024 * 1024

// TruncateSto copies a Stockholm alignment, keeping only the first max
// sequences (in order of first appearance) along with all file-level
// markup. Per-sequence markup (#=GS, #=GR) for dropped sequences is
// dropped with them. A max of 0 or less keeps everything.
func TruncateSto(w io.Writer, r io.Reader, max int) error {
	keep := make(map[string]bool)
	kept := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxStoLine)
	out := bufio.NewWriter(w)
	for scanner.Scan() {
		line := scanner.Text()
		name, ok := sequenceName(line)
		if ok && max > 0 {
			if !keep[name] {
				if kept >= max {
					continue
				}
				keep[name] = true
				kept++
			}
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return out.Flush()
}

// sequenceName extracts the sequence a Stockholm line belongs to, or
// reports false for file-level lines (header, #=GF, #=GC, //, blanks).
func sequenceName(line string) (string, bool) {
	if len(line) == 0 || line == "//" {
		return "", false
	}
	if strings.HasPrefix(line, "#") {
		// #=GS and #=GR annotate a single sequence; everything else
		// starting with '#' is file-level.
		if strings.HasPrefix(line, "#=GS ") || strings.HasPrefix(line, "#=GR ") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return fields[1], true
			}
		}
		return "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", false
	}
	return fields[0], true
}
