// Package config loads the model and preprocessing configuration from
// a TOML file, with environment variable overrides for the
// preprocessing paths. The core packages never see this type; they
// take plain integers, and the commands translate between the two.
package config

import (
	"fmt"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config is the full configuration tree.
type Config struct {
	Model     Model     `toml:"model"`
	IPA       IPA       `toml:"ipa"`
	Structure Structure `toml:"structure"`
	MSA       MSA       `toml:"msa"`
}

// Model holds the embedding widths shared across the network.
type Model struct {
	SingleEmbeddingSize int `toml:"single_embedding_size"`
	PairEmbeddingSize   int `toml:"pair_embedding_size"`
}

// IPA holds the invariant point attention dimensions.
type IPA struct {
	EmbeddingSize  int `toml:"embedding_size"`
	NumHeads       int `toml:"num_heads"`
	NumQueryPoints int `toml:"num_query_points"`
	NumValuePoints int `toml:"num_value_points"`
}

// Structure holds the refinement module settings.
type Structure struct {
	NumLayers int `toml:"num_layers"`
}

// MSA holds the alignment search settings. Every field can be
// overridden from the environment, which is how deployment scripts
// point the tools at their databases.
type MSA struct {
	Jackhmmer    string `toml:"jackhmmer" env:"FOLD_JACKHMMER"`
	Database     string `toml:"database" env:"FOLD_SEQDB"`
	CacheDir     string `toml:"cache_dir" env:"FOLD_MSA_CACHE"`
	MaxSequences int    `toml:"max_sequences" env:"FOLD_MSA_MAX_SEQUENCES"`
	CPUs         int    `toml:"cpus" env:"FOLD_MSA_CPUS"`
}

// Default returns the configuration used when a key (or the whole
// file) is absent.
func Default() Config {
	return Config{
		Model: Model{
			SingleEmbeddingSize: 384,
			PairEmbeddingSize:   128,
		},
		IPA: IPA{
			EmbeddingSize:  16,
			NumHeads:       12,
			NumQueryPoints: 4,
			NumValuePoints: 8,
		},
		Structure: Structure{
			NumLayers: 8,
		},
		MSA: MSA{
			Jackhmmer:    "jackhmmer",
			CacheDir:     "msa-cache",
			MaxSequences: 5000,
			CPUs:         runtime.NumCPU(),
		},
	}
}

// Load reads the TOML file at path on top of the defaults and then
// applies environment overrides. An empty path skips the file and
// loads defaults plus environment.
func Load(path string) (Config, error) {
	conf := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &conf); err != nil {
			return conf, fmt.Errorf("error decoding config file '%s': %w", path, err)
		}
	}
	if err := env.Parse(&conf); err != nil {
		return conf, fmt.Errorf("error applying environment overrides: %w", err)
	}
	return conf, nil
}
