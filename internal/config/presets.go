package config

import "sort"

func preset(bodies, steps, stride int, dt float64) *Config {
	cfg := DefaultConfig()
	cfg.Bodies = bodies
	cfg.Steps = steps
	cfg.Dt = dt
	cfg.Physics.Stride = stride
	return cfg
}

var Presets = map[string]*Config{
	// few bodies, every pair counted
	"small": preset(200, 1000, 1, 0.2),
	// the full visual disk
	"galaxy": preset(5000, 2000, 1, 0.2),
	// large disk, every fourth partner sampled
	"fast": preset(20000, 500, 4, 0.2),
	"binary": func() *Config {
		cfg := preset(2, 5000, 1, 0.05)
		cfg.SampleEvery = 5
		cfg.Physics.PlanetMass = cfg.Physics.StarMass / 10
		return cfg
	}(),
}

var descriptions = map[string]string{
	"small":  "200 bodies, all pairs",
	"galaxy": "5000-body disk",
	"fast":   "20000 bodies, stride 4",
	"binary": "one heavy planet",
}

// Describe returns a one-line summary of the named preset.
func Describe(name string) string { return descriptions[name] }

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
