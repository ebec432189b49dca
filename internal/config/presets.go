package config

import (
	"fmt"
	"sort"
)

func float(v float64) *float64 { return &v }

var Presets = map[string]*Config{
	"solar": {
		Scenario: "solar", Theta: 1.0, Mode: "accelerated", Steps: 2000,
	},
	"solar-realistic": {
		Scenario: "solar", Theta: 1.0, Mode: "realistic", Steps: 20000,
	},
	"cluster": {
		Scenario: "random", Bodies: 200, Seed: 1, Theta: 1.0, Mode: "accelerated", Steps: 1000,
	},
	"swarm": {
		Scenario: "random", Bodies: 2000, Seed: 7, Theta: 1.2, Mode: "accelerated", Steps: 500,
		DrawOctants: true,
	},
	"precise": {
		Scenario: "random", Bodies: 500, Seed: 3, Theta: 0.3, Mode: "accelerated", Steps: 500,
		TimeScale: float(1e3), Integrator: "leapfrog",
	},
	"direct": {
		Scenario: "random", Bodies: 500, Seed: 3, Theta: 1.0, Mode: "accelerated", Steps: 500,
		Method: "direct",
	},
}

// GetPreset returns a copy of the named preset with every field it leaves
// unset taken from DefaultConfig.
func GetPreset(name string) (*Config, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	cfg := DefaultConfig()
	cfg.Scenario = p.Scenario
	cfg.Theta = p.Theta
	cfg.Mode = p.Mode
	cfg.Steps = p.Steps
	cfg.Seed = p.Seed
	cfg.DrawOctants = p.DrawOctants
	if p.Bodies > 0 {
		cfg.Bodies = p.Bodies
	}
	if p.Integrator != "" {
		cfg.Integrator = p.Integrator
	}
	if p.Method != "" {
		cfg.Method = p.Method
	}
	if p.Softening != nil {
		cfg.Softening = float(*p.Softening)
	}
	if p.TimeScale != nil {
		cfg.TimeScale = float(*p.TimeScale)
	}
	return cfg, nil
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
