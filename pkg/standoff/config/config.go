package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/standoff/pkg/standoff/align"
	"github.com/cognicore/standoff/pkg/standoff/indices"
	"github.com/cognicore/standoff/pkg/standoff/internalerr"
	"github.com/cognicore/standoff/pkg/standoff/split"
)

// Config represents the conversion configuration file
type Config struct {
	TokenIndex int            `yaml:"token_index"`
	TagIndices string         `yaml:"tag_indices"`
	Unescape   []UnescapeRule `yaml:"unescape"`
	Split      Split          `yaml:"split"`
	Batch      Batch          `yaml:"batch"`
	Store      Store          `yaml:"store"`
	ID         ID             `yaml:"id"`
}

// UnescapeRule is one entry of the aligner's unescape table
type UnescapeRule struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Suffix bool   `yaml:"suffix"`
}

// Split configures the corpus splitter
type Split struct {
	Suffix    string `yaml:"suffix"`
	Directory string `yaml:"directory"`
}

// Batch configures directory conversion
type Batch struct {
	TextSuffix string `yaml:"text_suffix"`
	BioSuffix  string `yaml:"bio_suffix"`
	AnnSuffix  string `yaml:"ann_suffix"`
}

// Store configures annotation persistence; an empty path disables it
type Store struct {
	Path string `yaml:"path"`
}

// ID configures entity numbering
type ID struct {
	ResetPerDocument bool `yaml:"reset_per_document"`
}

// Default returns the built-in configuration.
func Default() *Config {
	rules := align.DefaultRules()
	unescape := make([]UnescapeRule, len(rules))
	for i, r := range rules {
		unescape[i] = UnescapeRule{From: r.From, To: r.To, Suffix: r.Suffix}
	}

	return &Config{
		TokenIndex: 0,
		TagIndices: "-1",
		Unescape:   unescape,
		Split: Split{
			Suffix:    split.DefaultSuffix,
			Directory: split.DefaultDir,
		},
		Batch: Batch{
			TextSuffix: "txt",
			BioSuffix:  "conll",
			AnnSuffix:  "ann",
		},
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(internalerr.ErrInvalidConfig, "parse %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if _, err := indices.Parse(c.TagIndices); err != nil {
		return errors.Wrapf(internalerr.ErrInvalidConfig, "tag_indices %q", c.TagIndices)
	}
	for i, r := range c.Unescape {
		if r.From == "" {
			return errors.Wrapf(internalerr.ErrInvalidConfig, "unescape rule %d has empty 'from'", i)
		}
	}
	for name, v := range map[string]string{
		"split.suffix":      c.Split.Suffix,
		"split.directory":   c.Split.Directory,
		"batch.text_suffix": c.Batch.TextSuffix,
		"batch.bio_suffix":  c.Batch.BioSuffix,
		"batch.ann_suffix":  c.Batch.AnnSuffix,
	} {
		if v == "" {
			return errors.Wrapf(internalerr.ErrInvalidConfig, "%s is empty", name)
		}
	}
	return nil
}

// Rules returns the unescape table in the aligner's form.
func (c *Config) Rules() []align.Rule {
	rules := make([]align.Rule, len(c.Unescape))
	for i, r := range c.Unescape {
		rules[i] = align.Rule{From: r.From, To: r.To, Suffix: r.Suffix}
	}
	return rules
}
