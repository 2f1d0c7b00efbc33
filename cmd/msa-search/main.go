// msa-search runs a cached jackhmmer search for a query FASTA file and
// writes the resulting Stockholm alignment to stdout (or a file).
// Results are cached under the configured cache directory, so repeating
// a search is free.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/foldkit/foldkit/apps/hmmer"
	"github.com/foldkit/foldkit/cmd/util"
	"github.com/foldkit/foldkit/config"
)

var (
	flagConfig = ""
	flagID     = ""
)

func main() {
	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
	}
	query := flag.Arg(0)

	conf, err := config.Load(flagConfig)
	util.Assert(err, "Could not load configuration")
	if len(conf.MSA.Database) == 0 {
		util.Fatalf("No sequence database configured. " +
			"Set [msa] database in the config file or FOLD_SEQDB.")
	}

	id := flagID
	if len(id) == 0 {
		id = strings.TrimSuffix(path.Base(query), path.Ext(query))
	}

	util.Assert(os.MkdirAll(conf.MSA.CacheDir, 0777),
		"Could not create cache directory '%s'", conf.MSA.CacheDir)

	jconf := hmmer.JackhmmerDefault
	jconf.Exec = conf.MSA.Jackhmmer
	jconf.CPUs = conf.MSA.CPUs
	runner := hmmer.Runner{
		Config:       jconf,
		DB:           hmmer.Database(conf.MSA.Database),
		CacheDir:     conf.MSA.CacheDir,
		MaxSequences: conf.MSA.MaxSequences,
	}

	util.Logger.Info().
		Str("query", query).
		Str("database", runner.DB.Resolve()).
		Msg("searching")

	result, err := runner.Search(context.Background(), query, id)
	util.Assert(err, "Search failed for '%s'", query)
	defer result.Close()

	var out io.Writer = os.Stdout
	if flag.NArg() == 2 {
		f, err := os.Create(flag.Arg(1))
		util.Assert(err, "Could not create output file '%s'", flag.Arg(1))
		defer f.Close()
		out = f
	}
	_, err = io.Copy(out, result)
	util.Assert(err, "Could not write alignment")
}

func init() {
	flag.StringVar(&flagConfig, "config", flagConfig,
		"Path to a TOML configuration file. When empty, defaults plus "+
			"environment overrides are used.")
	flag.StringVar(&flagID, "id", flagID,
		"Cache identifier for the query. Defaults to the query file name "+
			"without its extension.")
	flag.Usage = usage
	flag.Parse()
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage: %s [flags] query-fasta-file [out-sto-file]\n",
		path.Base(os.Args[0]))
	flag.PrintDefaults()
	os.Exit(1)
}
