package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/spinchain/internal/micromag"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Size != DefaultSize {
		t.Errorf("expected size %d, got %d", DefaultSize, cfg.Size)
	}
	if cfg.Rule != "llg" {
		t.Errorf("expected rule llg, got %s", cfg.Rule)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConstants(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics.EasyAxis = []float64{0, 3, 4}
	cfg.Workers = 0

	c, err := cfg.Constants()
	if err != nil {
		t.Fatalf("Constants failed: %v", err)
	}
	if math.Abs(c.EasyAxis.Norm()-1) > 1e-12 {
		t.Errorf("easy axis not normalized: %v", c.EasyAxis)
	}
	want := micromag.Vec3{0, 0.6, 0.8}
	if c.EasyAxis.Sub(want).Norm() > 1e-12 {
		t.Errorf("easy axis = %v, want %v", c.EasyAxis, want)
	}
	if c.Workers != 1 {
		t.Errorf("workers = %d, want 1", c.Workers)
	}
	if c.MaxIterations != cfg.Loop.MaxIterations || c.Tolerance != cfg.Loop.Tolerance {
		t.Error("loop settings not copied")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero size", func(c *Config) { c.Size = 0 }},
		{"zero saturation", func(c *Config) { c.Physics.Saturation = 0 }},
		{"zero cell size", func(c *Config) { c.Physics.CellSize = 0 }},
		{"llg without time step", func(c *Config) { c.Physics.TimeStep = 0 }},
		{"zero tolerance", func(c *Config) { c.Loop.Tolerance = 0 }},
		{"zero iterations", func(c *Config) { c.Loop.MaxIterations = 0 }},
		{"short easy axis", func(c *Config) { c.Physics.EasyAxis = []float64{1, 0} }},
		{"unknown rule", func(c *Config) { c.Rule = "rk4" }},
		{"unknown init", func(c *Config) { c.Init = "spiral" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Size = 17
	cfg.Init = "random"
	cfg.Seed = 99
	cfg.Physics.ExternalField = []float64{0.5, 0, 0}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Size != 17 || loaded.Init != "random" || loaded.Seed != 99 {
		t.Errorf("loaded config mismatch: %+v", loaded)
	}
	if loaded.Physics.ExternalField[0] != 0.5 {
		t.Errorf("external field = %v", loaded.Physics.ExternalField)
	}
}

func TestGetPreset(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s: nil", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresets_LLGStepSize(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg.Rule != "llg" {
			continue
		}
		c, err := cfg.Constants()
		if err != nil {
			t.Fatalf("preset %s: %v", name, err)
		}
		h := c.ExternalField.Norm() + 2*c.Anisotropy/c.Saturation
		rotation := c.Gyromagnetic * h * c.TimeStep / (1 + c.Damping*c.Damping)
		if rotation >= 0.1 {
			t.Errorf("preset %s: rotation per step %.3f, want < 0.1", name, rotation)
		}
	}
}

func TestResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	base := DefaultConfig()
	base.Size = 17
	base.Physics.Exchange = 2e-11
	if err := Save(path, base); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cfg, err := Resolve(path, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Size != 17 {
		t.Errorf("size = %d, want 17 from file", cfg.Size)
	}

	cfg, err = Resolve(path, "field-flip")
	if err != nil {
		t.Fatalf("Resolve with preset failed: %v", err)
	}
	if cfg.Size != 64 || cfg.Init != "uniform" {
		t.Errorf("preset not applied on top of file: size %d, init %s", cfg.Size, cfg.Init)
	}
	if cfg.Physics.Exchange != 2e-11 {
		t.Errorf("exchange = %v, want 2e-11 kept from file", cfg.Physics.Exchange)
	}

	cfg, err = Resolve("", "random")
	if err != nil {
		t.Fatalf("Resolve preset only failed: %v", err)
	}
	if cfg.Size != 50 || cfg.Rule != "damping" {
		t.Errorf("unexpected preset config: size %d, rule %s", cfg.Size, cfg.Rule)
	}

	if _, err := Resolve("", "nonexistent"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if _, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset_Fresh(t *testing.T) {
	a := GetPreset("random")
	a.Size = 3
	b := GetPreset("random")
	if b.Size != 50 {
		t.Errorf("preset mutated through previous caller: size %d", b.Size)
	}
}

func TestInitPolicy(t *testing.T) {
	for _, name := range InitNames() {
		cfg := DefaultConfig()
		cfg.Init = name
		p, err := cfg.InitPolicy()
		if err != nil {
			t.Errorf("init %s: %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("policy name = %s, want %s", p.Name(), name)
		}
	}
}
