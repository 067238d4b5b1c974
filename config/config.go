// Package config handles bfx.toml interpreter configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/bfx/interp"
)

// Config represents a bfx.toml configuration file.
type Config struct {
	Machine  Machine  `toml:"machine"`
	Input    Input    `toml:"input"`
	Features Features `toml:"features"`
	Compiler Compiler `toml:"compiler"`

	// Dir is the directory containing the bfx.toml file (set at load time).
	Dir string `toml:"-"`
}

// Machine configures the tape.
type Machine struct {
	TapeSize    int    `toml:"tape-size"`
	EOFBehavior string `toml:"eof-behavior"` // zero | decrement | unchanged
}

// Input configures the program/input buffers.
type Input struct {
	SeedSize int  `toml:"seed-size"`
	Separate bool `toml:"separate"`
}

// Features toggles optional operator handling.
type Features struct {
	Debug      bool `toml:"debug"`
	SpecialOps bool `toml:"special-ops"`
}

// Compiler configures the external C toolchain.
type Compiler struct {
	CC    string `toml:"cc"`
	Flags string `toml:"flags"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Machine:  Machine{TapeSize: interp.DefaultTapeSize, EOFBehavior: "zero"},
		Input:    Input{SeedSize: interp.DefaultInputSeed},
		Features: Features{SpecialOps: true},
	}
}

// Load parses a bfx.toml file from the given directory. Missing keys keep
// their defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "bfx.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a bfx.toml file, then loads
// and returns it. Returns nil (and no error) if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "bfx.toml")); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Params maps the configuration onto session parameters.
func (c *Config) Params() (interp.Params, error) {
	eof, err := interp.ParseEOFBehavior(c.Machine.EOFBehavior)
	if err != nil {
		return interp.Params{}, err
	}
	if c.Machine.TapeSize <= 0 {
		return interp.Params{}, fmt.Errorf("tape-size must be positive, got %d", c.Machine.TapeSize)
	}
	return interp.Params{
		TapeSize:      c.Machine.TapeSize,
		InputSeed:     c.Input.SeedSize,
		EOF:           eof,
		Debug:         c.Features.Debug,
		SpecialOps:    c.Features.SpecialOps,
		SeparateInput: c.Input.Separate,
	}, nil
}
