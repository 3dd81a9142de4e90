package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/orbitsim/internal/nbody"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBodies      = 5000
	DefaultDt          = 0.2
	DefaultSteps       = 500
	DefaultSampleEvery = 10
	DefaultBackend     = "auto"
)

type Config struct {
	Bodies      int           `yaml:"bodies"`
	Dt          float64       `yaml:"dt"`
	Steps       int           `yaml:"steps"`
	SampleEvery int           `yaml:"sample_every"`
	Backend     string        `yaml:"backend"`
	Physics     PhysicsConfig `yaml:"physics"`
}

// PhysicsConfig mirrors nbody.Params in file form.
type PhysicsConfig struct {
	G          float64 `yaml:"g"`
	Epsilon    float64 `yaml:"epsilon"`
	StarMass   float64 `yaml:"star_mass"`
	PlanetMass float64 `yaml:"planet_mass"`
	Scale      float64 `yaml:"scale"`
	Stride     int     `yaml:"stride"`
	TimeTag    uint32  `yaml:"time_tag"`
}

func DefaultConfig() *Config {
	return &Config{
		Bodies:      DefaultBodies,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Backend:     DefaultBackend,
		Physics: PhysicsConfig{
			G:          nbody.DefaultG,
			Epsilon:    nbody.DefaultEpsilon,
			StarMass:   nbody.DefaultStarMass,
			PlanetMass: nbody.DefaultPlanetMass,
			Scale:      nbody.DefaultScale,
			Stride:     nbody.DefaultStride,
			TimeTag:    nbody.DefaultTimeTag,
		},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over base, which is modified and returned.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the physics section to simulation constants.
func (c *Config) Params() nbody.Params {
	return nbody.Params{
		G:          float32(c.Physics.G),
		Epsilon:    float32(c.Physics.Epsilon),
		StarMass:   float32(c.Physics.StarMass),
		PlanetMass: float32(c.Physics.PlanetMass),
		Scale:      float32(c.Physics.Scale),
		Stride:     c.Physics.Stride,
		TimeTag:    c.Physics.TimeTag,
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Bodies < 1 || c.Bodies > nbody.MaxBodies {
		errs = append(errs, fmt.Errorf("bodies must be in 1..%d, got %d", nbody.MaxBodies, c.Bodies))
	}
	// dt is stepped as float32
	if dt := float64(float32(c.Dt)); dt <= 0 || math.IsInf(dt, 0) || math.IsNaN(dt) {
		errs = append(errs, fmt.Errorf("dt must be positive and finite, got %g", c.Dt))
	}
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must not be negative, got %d", c.Steps))
	}
	if c.SampleEvery < 0 {
		errs = append(errs, fmt.Errorf("sample_every must not be negative, got %d", c.SampleEvery))
	}
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
