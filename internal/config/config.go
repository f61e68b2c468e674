package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spinchain/internal/micromag"
)

const (
	DefaultSize = 100
	DefaultInit = "helix"
	DefaultRule = "llg"
	DefaultTilt = 0.05
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Size      int           `yaml:"size"`
	Init      string        `yaml:"init"`
	Seed      int64         `yaml:"seed"`
	Tilt      float64       `yaml:"tilt"`
	Direction []float64     `yaml:"direction"`
	Rule      string        `yaml:"rule"`
	Workers   int           `yaml:"workers"`
	Physics   PhysicsConfig `yaml:"physics"`
	Loop      LoopConfig    `yaml:"loop"`
}

type PhysicsConfig struct {
	Exchange      float64   `yaml:"exchange"`
	Saturation    float64   `yaml:"saturation"`
	Anisotropy    float64   `yaml:"anisotropy"`
	EasyAxis      []float64 `yaml:"easy_axis"`
	ExternalField []float64 `yaml:"external_field"`
	Damping       float64   `yaml:"damping"`
	Gyromagnetic  float64   `yaml:"gyromagnetic"`
	CellSize      float64   `yaml:"cell_size"`
	TimeStep      float64   `yaml:"time_step"`
	Permeability  float64   `yaml:"permeability"`
}

type LoopConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

func DefaultConfig() *Config {
	return &Config{
		Size:      DefaultSize,
		Init:      DefaultInit,
		Tilt:      DefaultTilt,
		Direction: []float64{0, 0, 1},
		Rule:      DefaultRule,
		Workers:   1,
		Physics: PhysicsConfig{
			Exchange:      micromag.DefaultExchange,
			Saturation:    micromag.DefaultSaturation,
			Anisotropy:    micromag.DefaultAnisotropy,
			EasyAxis:      []float64{1, 0, 0},
			ExternalField: []float64{0, 0, micromag.DefaultFieldStrength},
			Damping:       micromag.DefaultDamping,
			Gyromagnetic:  micromag.DefaultGyromagnetic,
			CellSize:      micromag.DefaultCellSize,
			TimeStep:      micromag.DefaultTimeStep,
		},
		Loop: LoopConfig{
			MaxIterations: micromag.DefaultMaxIterations,
			Tolerance:     micromag.DefaultTolerance,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Size < 1 {
		errs = append(errs, fmt.Errorf("size must be positive, got %d", c.Size))
	}
	if c.Physics.Saturation <= 0 {
		errs = append(errs, fmt.Errorf("saturation must be positive, got %g", c.Physics.Saturation))
	}
	if c.Physics.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_size must be positive, got %g", c.Physics.CellSize))
	}
	if c.Physics.Damping < 0 {
		errs = append(errs, fmt.Errorf("damping must be non-negative, got %g", c.Physics.Damping))
	}
	if c.Rule == "llg" && c.Physics.TimeStep <= 0 {
		errs = append(errs, fmt.Errorf("time_step must be positive for the llg rule, got %g", c.Physics.TimeStep))
	}
	if c.Loop.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("max_iterations must be positive, got %d", c.Loop.MaxIterations))
	}
	if c.Loop.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %g", c.Loop.Tolerance))
	}
	if _, err := vec3("easy_axis", c.Physics.EasyAxis); err != nil {
		errs = append(errs, err)
	}
	if _, err := vec3("external_field", c.Physics.ExternalField); err != nil {
		errs = append(errs, err)
	}
	if _, err := micromag.RuleByName(c.Rule); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.InitPolicy(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Constants converts the physics and loop sections, normalizing the easy axis.
func (c *Config) Constants() (micromag.Constants, error) {
	axis, err := vec3("easy_axis", c.Physics.EasyAxis)
	if err != nil {
		return micromag.Constants{}, err
	}
	unit, ok := axis.Normalize()
	if !ok {
		return micromag.Constants{}, fmt.Errorf("%w: easy_axis must be non-zero", ErrInvalidConfig)
	}
	field, err := vec3("external_field", c.Physics.ExternalField)
	if err != nil {
		return micromag.Constants{}, err
	}

	workers := c.Workers
	if workers < 1 {
		workers = 1
	}

	return micromag.Constants{
		Exchange:      c.Physics.Exchange,
		Saturation:    c.Physics.Saturation,
		Anisotropy:    c.Physics.Anisotropy,
		EasyAxis:      unit,
		ExternalField: field,
		Damping:       c.Physics.Damping,
		Gyromagnetic:  c.Physics.Gyromagnetic,
		CellSize:      c.Physics.CellSize,
		TimeStep:      c.Physics.TimeStep,
		Permeability:  c.Physics.Permeability,
		MaxIterations: c.Loop.MaxIterations,
		Tolerance:     c.Loop.Tolerance,
		Workers:       workers,
	}, nil
}

func (c *Config) InitPolicy() (micromag.InitPolicy, error) {
	switch c.Init {
	case "easy-axis":
		axis, err := vec3("easy_axis", c.Physics.EasyAxis)
		if err != nil {
			return nil, err
		}
		return micromag.EasyAxis(axis, c.Tilt), nil
	case "helix":
		return micromag.Helix(), nil
	case "random":
		return micromag.Random(c.Seed), nil
	case "uniform":
		dir, err := vec3("direction", c.Direction)
		if err != nil {
			return nil, err
		}
		return micromag.Uniform(dir), nil
	default:
		return nil, fmt.Errorf("%w: unknown init policy %q (available: %v)", ErrInvalidConfig, c.Init, InitNames())
	}
}

func (c *Config) UpdateRule() (micromag.UpdateRule, error) {
	return micromag.RuleByName(c.Rule)
}

func InitNames() []string {
	return []string{"easy-axis", "helix", "random", "uniform"}
}

func vec3(name string, v []float64) (micromag.Vec3, error) {
	if len(v) != 3 {
		return micromag.Vec3{}, fmt.Errorf("%w: %s needs 3 components, got %d", ErrInvalidConfig, name, len(v))
	}
	return micromag.Vec3{v[0], v[1], v[2]}, nil
}
