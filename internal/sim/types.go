package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/integrators"
	"github.com/san-kum/bhsim/internal/octree"
	"github.com/san-kum/bhsim/internal/scenario"
)

// DefaultHalfWidth leaves room for bodies flung past the default display
// window.
const DefaultHalfWidth = 2 * scenario.DefaultWindow

// Method selects how forces are computed.
type Method string

const (
	// MethodTree uses the Barnes-Hut octree.
	MethodTree Method = "tree"
	// MethodDirect sums every pair exactly; it is the accuracy reference.
	MethodDirect Method = "direct"
)

// Frame is what metrics and observers see once per tick, after forces are
// known and before bodies move.
type Frame struct {
	Tick   int
	Time   float64
	Bodies []*body.Body
	// Tree is nil with MethodDirect.
	Tree *octree.Tree
	Mode body.Mode
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnTick(f Frame) { fn(f) }

type Config struct {
	Theta     float64
	HalfWidth float64
	Mode      body.Mode
	Method    Method
	// Integrator names the time-stepping scheme; empty means semi-implicit
	// Euler.
	Integrator string
	// Workers > 1 spreads force queries over that many goroutines.
	Workers int
	// SampleEvery records a Sample every n ticks; 0 disables sampling.
	SampleEvery int
	// AllowEscape keeps running when bodies leave the universe cube. Escaped
	// bodies still feel the tree's gravity but no longer contribute to it.
	AllowEscape   bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Theta:         octree.DefaultTheta,
		HalfWidth:     DefaultHalfWidth,
		Mode:          body.Accelerated,
		Method:        MethodTree,
		Integrator:    integrators.NameEuler,
		Workers:       1,
		SampleEvery:   1,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if err := c.Mode.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval must be non-negative, got %d", ErrInvalidConfig, c.SampleEvery)
	}
	switch c.Method {
	case MethodTree, "":
		return octree.Config{HalfWidth: c.HalfWidth, Theta: c.Theta, Softening: c.Mode.Softening}.Validate()
	case MethodDirect:
		return nil
	default:
		return fmt.Errorf("%w: unknown force method %q", ErrInvalidConfig, c.Method)
	}
}

// Sample is one row of per-tick diagnostics.
type Sample struct {
	Tick      int
	Time      float64
	Kinetic   float64
	Potential float64
	Energy    float64
	Momentum  float64
	Nodes     int
	Height    int
	Escaped   int
	Elapsed   time.Duration
}

type Result struct {
	Samples     []Sample
	Metrics     map[string]float64
	TicksTaken  int
	EnergyDrift float64
	Elapsed     time.Duration
}
