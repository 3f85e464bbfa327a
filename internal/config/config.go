// Package config loads the optional per-project .quackc.yaml file the
// driver consults for toolchain and output settings, grounded on
// funvibe/funxy's config.go (a small yaml.v3-decoded struct with package-
// level defaults) for the shape of project configuration in this corpus.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults the driver falls back to when no config file is present or a
// field is left unset, matching spec §6's fixed CLI/ABI surface.
const (
	DefaultOutputBinary = "pgm"
	DefaultCC           = "cc"
	DefaultGeneratedC   = "q.c"
	DefaultRuntimeObj   = "Builtins.o"
)

// Config is the decoded shape of .quackc.yaml.
type Config struct {
	// OutputBinary names the linked executable. Defaults to "pgm" (spec §6).
	OutputBinary string `yaml:"output"`

	// CC is the external C compiler/linker driver to invoke.
	CC string `yaml:"cc"`

	// RuntimeObj is the pre-built object the generated translation unit is
	// linked against.
	RuntimeObj string `yaml:"runtime_obj"`

	// KeepGeneratedC keeps q.c after a successful build instead of
	// discarding it.
	KeepGeneratedC bool `yaml:"keep_generated_c"`

	// CacheDB is the path to the sqlite compile cache, empty disables it.
	CacheDB string `yaml:"cache_db"`
}

// Default returns a Config with every field at its built-in default.
func Default() *Config {
	return &Config{
		OutputBinary: DefaultOutputBinary,
		CC:           DefaultCC,
		RuntimeObj:   DefaultRuntimeObj,
	}
}

// Load reads and decodes path, overlaying onto the defaults; a missing
// file is not an error -- the project simply runs unconfigured.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.OutputBinary == "" {
		cfg.OutputBinary = DefaultOutputBinary
	}
	if cfg.CC == "" {
		cfg.CC = DefaultCC
	}
	if cfg.RuntimeObj == "" {
		cfg.RuntimeObj = DefaultRuntimeObj
	}
	return cfg, nil
}
