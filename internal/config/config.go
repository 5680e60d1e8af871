// Package config loads lozengectl settings from a TOML file.
//
// A file has two optional tables:
//
//	[sort]
//	upper = "anchor-skipper"
//	lower = "anchor-skipless"
//	switch_level = 4
//	block_skip = true
//
//	[bench]
//	size = 1024
//	trials = 200
//	pattern = "random"
//
// Missing keys keep their defaults. Keys that match no setting are an error.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/joshuapare/lozenge/internal/pattern"
	"github.com/joshuapare/lozenge/merge"
)

// Config is the full settings file.
type Config struct {
	Sort  SortConfig  `toml:"sort"`
	Bench BenchConfig `toml:"bench"`
}

// SortConfig selects merge strategies and their switches.
type SortConfig struct {
	Upper           string `toml:"upper"`
	Lower           string `toml:"lower"`
	SwitchLevel     int    `toml:"switch_level"`
	BlockSkip       bool   `toml:"block_skip"`
	UpperLozenge    bool   `toml:"upper_lozenge"`
	DFSTree         bool   `toml:"dfs_tree"`
	FinalReverse    bool   `toml:"final_reverse"`
	CheckInvariants bool   `toml:"check_invariants"`
}

// BenchConfig describes a batch of random trials.
type BenchConfig struct {
	Size       int     `toml:"size"`
	Trials     int     `toml:"trials"`
	Workers    int     `toml:"workers"`
	Pattern    string  `toml:"pattern"`
	Disruption float64 `toml:"disruption"`
	Nudges     int     `toml:"nudges"`
	Seed       uint64  `toml:"seed"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	d := merge.DefaultOptions()
	return Config{
		Sort: SortConfig{
			Upper:       d.Upper.String(),
			Lower:       d.Lower.String(),
			SwitchLevel: d.SwitchLevel,
			BlockSkip:   true,
		},
		Bench: BenchConfig{
			Size:       1024,
			Trials:     200,
			Workers:    runtime.GOMAXPROCS(0),
			Pattern:    "random",
			Disruption: 0.01,
			Seed:       1,
		},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := checkDecoded(md); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := checkDecoded(md); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func checkDecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
}

// Validate checks the settings that do not depend on the input size.
// Strategy combinations are checked by merge.Options.Validate once the
// size is known.
func (c Config) Validate() error {
	if _, err := c.Sort.Options(); err != nil {
		return err
	}
	b := c.Bench
	if _, ok := pattern.Named(b.Pattern, b.Disruption); !ok {
		return fmt.Errorf("%w %q (known: %s)", ErrUnknownPattern, b.Pattern, strings.Join(pattern.Names(), ", "))
	}
	switch {
	case b.Size < 0:
		return fmt.Errorf("%w: bench.size %d", ErrInvalid, b.Size)
	case b.Trials < 1:
		return fmt.Errorf("%w: bench.trials %d", ErrInvalid, b.Trials)
	case b.Workers < 1:
		return fmt.Errorf("%w: bench.workers %d", ErrInvalid, b.Workers)
	case b.Disruption < 0 || b.Disruption > 1:
		return fmt.Errorf("%w: bench.disruption %g", ErrInvalid, b.Disruption)
	case b.Nudges < 0:
		return fmt.Errorf("%w: bench.nudges %d", ErrInvalid, b.Nudges)
	}
	return nil
}

// Options converts the sort table to merge options. Counter, StepHook and
// Logger are left for the caller.
func (s SortConfig) Options() (merge.Options, error) {
	upper, err := merge.ParseStrategy(s.Upper)
	if err != nil {
		return merge.Options{}, fmt.Errorf("sort.upper: %w", err)
	}
	lower, err := merge.ParseStrategy(s.Lower)
	if err != nil {
		return merge.Options{}, fmt.Errorf("sort.lower: %w", err)
	}
	return merge.Options{
		Upper:            upper,
		Lower:            lower,
		SwitchLevel:      s.SwitchLevel,
		DisableBlockSkip: !s.BlockSkip,
		UpperLozenge:     s.UpperLozenge,
		DFSTree:          s.DFSTree,
		FinalReverse:     s.FinalReverse,
		CheckInvariants:  s.CheckInvariants,
	}, nil
}
