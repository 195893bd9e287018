// Package cliconfig loads the optional funxy.yaml file the CLI reads
// its default Options and top-level environment path from, mirroring
// how the compiler's ext package loads funxy.yaml for dependency
// bindings: a plain yaml.Unmarshal into a small struct, found by
// walking up from the working directory.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/funxy/internal/options"
)

// Config is the shape of funxy.yaml: default option toggles applied
// before any `.options` form in the source overrides them, plus the
// path to a persistent top-level environment database.
type Config struct {
	Checked            *bool  `yaml:"checked"`
	Debug              *bool  `yaml:"debug"`
	Optimize           *bool  `yaml:"optimize"`
	AllowRedefinition  *bool  `yaml:"allowRedefinition"`
	OptimisticInlining *bool  `yaml:"optimisticInlining"`
	PromoteOnOverflow  *bool  `yaml:"promoteOnOverflow"`
	Persist            string `yaml:"persist"`
}

// Find walks up from dir looking for funxy.yaml or funxy.yml.
// Returns "" with a nil error if neither is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range []string{"funxy.yaml", "funxy.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads and parses path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyTo overlays every toggle cfg sets onto opts.
func (cfg *Config) ApplyTo(opts *options.Options) {
	if cfg == nil {
		return
	}
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&opts.Checked, cfg.Checked)
	apply(&opts.Debug, cfg.Debug)
	apply(&opts.Optimize, cfg.Optimize)
	apply(&opts.AllowRedefinition, cfg.AllowRedefinition)
	apply(&opts.OptimisticInlining, cfg.OptimisticInlining)
	apply(&opts.PromoteOnOverflow, cfg.PromoteOnOverflow)
}
