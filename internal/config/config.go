package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/integrators"
	"github.com/san-kum/bhsim/internal/scenario"
	"github.com/san-kum/bhsim/internal/sim"
)

const (
	DefaultScenario    = "solar"
	DefaultBodies      = 100
	DefaultTheta       = 1.0
	DefaultHalfWidth   = sim.DefaultHalfWidth
	DefaultWindow      = scenario.DefaultWindow
	DefaultMode        = "accelerated"
	DefaultSteps       = 1000
	DefaultSampleEvery = 10
)

var (
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrUnknownMode   = errors.New("config: unknown mode")
	ErrInvalid       = errors.New("config: invalid value")
)

type Config struct {
	Scenario string  `yaml:"scenario"`
	Bodies   int     `yaml:"bodies"`
	Seed     uint64  `yaml:"seed"`
	Theta    float64 `yaml:"theta"`
	Method   string  `yaml:"method"`

	Integrator string `yaml:"integrator"`

	UniverseHalfWidth float64 `yaml:"universe_half_width"`
	DisplayWindow     float64 `yaml:"display_window"`

	// Mode names a preset; Softening and TimeScale override its fields.
	Mode      string   `yaml:"mode"`
	Softening *float64 `yaml:"softening,omitempty"`
	TimeScale *float64 `yaml:"time_scale,omitempty"`

	Steps       int  `yaml:"steps"`
	Workers     int  `yaml:"workers"`
	SampleEvery int  `yaml:"sample_every"`
	AllowEscape bool `yaml:"allow_escape"`
	DrawOctants bool `yaml:"draw_octants"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:          DefaultScenario,
		Bodies:            DefaultBodies,
		Theta:             DefaultTheta,
		Method:            string(sim.MethodTree),
		Integrator:        integrators.NameEuler,
		UniverseHalfWidth: DefaultHalfWidth,
		DisplayWindow:     DefaultWindow,
		Mode:              DefaultMode,
		Steps:             DefaultSteps,
		Workers:           runtime.NumCPU(),
		SampleEvery:       DefaultSampleEvery,
		AllowEscape:       true,
	}
}

func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads the file at path over a copy of base: keys the file sets
// win, the rest keep base's values. base is not modified.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) clone() *Config {
	cp := *c
	if c.Softening != nil {
		cp.Softening = float(*c.Softening)
	}
	if c.TimeScale != nil {
		cp.TimeScale = float(*c.TimeScale)
	}
	return &cp
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ModeNames lists the named modes in sorted order.
func ModeNames() []string {
	names := make([]string, 0, len(body.Modes))
	for name := range body.Modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveMode applies the softening and time scale overrides to the named
// mode.
func (c *Config) ResolveMode() (body.Mode, error) {
	m, ok := body.Modes[c.Mode]
	if !ok {
		return body.Mode{}, fmt.Errorf("%w %q (available: %v)", ErrUnknownMode, c.Mode, ModeNames())
	}
	if c.Softening != nil {
		m.Softening = *c.Softening
	}
	if c.TimeScale != nil {
		m.TimeScale = *c.TimeScale
	}
	if err := m.Validate(); err != nil {
		return body.Mode{}, err
	}
	return m, nil
}

func (c *Config) Validate() error {
	if _, err := c.ResolveMode(); err != nil {
		return err
	}
	if !positive(c.Theta) {
		return fmt.Errorf("%w: theta must be positive, got %g", ErrInvalid, c.Theta)
	}
	if !positive(c.UniverseHalfWidth) {
		return fmt.Errorf("%w: universe_half_width must be positive, got %g", ErrInvalid, c.UniverseHalfWidth)
	}
	if !positive(c.DisplayWindow) {
		return fmt.Errorf("%w: display_window must be positive, got %g", ErrInvalid, c.DisplayWindow)
	}
	if c.Scenario == "random" && c.Bodies <= 0 {
		return fmt.Errorf("%w: bodies must be positive, got %d", ErrInvalid, c.Bodies)
	}
	if c.Steps < 0 || c.Workers < 0 || c.SampleEvery < 0 {
		return fmt.Errorf("%w: steps, workers and sample_every must be non-negative", ErrInvalid)
	}
	switch sim.Method(c.Method) {
	case sim.MethodTree, sim.MethodDirect:
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalid, c.Method)
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

// SimConfig translates the file settings into a simulator configuration.
func (c *Config) SimConfig() (sim.Config, error) {
	if err := c.Validate(); err != nil {
		return sim.Config{}, err
	}
	mode, _ := c.ResolveMode()
	return sim.Config{
		Theta:         c.Theta,
		HalfWidth:     c.UniverseHalfWidth,
		Mode:          mode,
		Method:        sim.Method(c.Method),
		Integrator:    c.Integrator,
		Workers:       c.Workers,
		SampleEvery:   c.SampleEvery,
		AllowEscape:   c.AllowEscape,
		ValidateState: true,
	}, nil
}

// BuildBodies creates the configured scenario.
func (c *Config) BuildBodies() ([]*body.Body, error) {
	return scenario.Build(c.Scenario, c.Bodies, c.DisplayWindow, c.Seed)
}
