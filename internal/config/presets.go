package config

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// Presets are partial overrides applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"helix": func(c *Config) {
		c.Init, c.Rule = "helix", "llg"
	},
	"easy-axis": func(c *Config) {
		c.Init, c.Rule, c.Tilt = "easy-axis", "llg", 0.05
		c.Physics.ExternalField = []float64{1, 0, 0}
		c.Physics.TimeStep = 5e-7
	},
	"random": func(c *Config) {
		c.Size, c.Init, c.Seed, c.Rule = 50, "random", 1, "damping"
	},
	"scalar": func(c *Config) {
		c.Init, c.Rule, c.Tilt = "easy-axis", "damping", 0.0
		c.Physics.ExternalField = []float64{0.1, 0.1, 0.1}
	},
	"field-flip": func(c *Config) {
		c.Size, c.Init, c.Rule = 64, "uniform", "llg"
		c.Direction = []float64{1, 0.05, 0}
		c.Physics.ExternalField = []float64{-2, 0, 0}
		c.Physics.TimeStep = 2.5e-7
		c.Loop.MaxIterations = 100000
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// Resolve builds a config from an optional YAML file and an optional preset.
// The file, or DefaultConfig when path is empty, is the base; the preset's
// overrides are applied on top of it.
func Resolve(path, preset string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		apply, ok := Presets[preset]
		if !ok {
			return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, preset, ListPresets())
		}
		apply(cfg)
	}
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
