package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/integrators"
	"github.com/san-kum/bhsim/internal/logging"
	"github.com/san-kum/bhsim/internal/octree"
)

type Simulator struct {
	bodies    []*body.Body
	tree      *octree.Tree
	cfg       Config
	integ     integrators.Integrator
	metrics   []Metric
	observers []Observer
	logger    *log.Logger

	tick    int
	elapsed float64
	escaped int
}

func New(bodies []*body.Body, cfg Config) (*Simulator, error) {
	if len(bodies) == 0 {
		return nil, ErrNoBodies
	}
	if cfg.Method == "" {
		cfg.Method = MethodTree
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		bodies:    bodies,
		cfg:       cfg,
		integ:     integ,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logging.Discard(),
	}
	if cfg.Method == MethodTree {
		tree, err := octree.New(octree.Config{
			HalfWidth: cfg.HalfWidth,
			Theta:     cfg.Theta,
			Softening: cfg.Mode.Softening,
		})
		if err != nil {
			return nil, err
		}
		s.tree = tree
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *log.Logger) { s.logger = l }
func (s *Simulator) Bodies() []*body.Body    { return s.bodies }
func (s *Simulator) Config() Config          { return s.cfg }
func (s *Simulator) Ticks() int              { return s.tick }
func (s *Simulator) Time() float64           { return s.elapsed }
func (s *Simulator) Escaped() int            { return s.escaped }
func (s *Simulator) Tree() *octree.Tree      { return s.tree }

// Energy is the current total energy, O(n²).
func (s *Simulator) Energy() float64 {
	return body.TotalEnergy(s.bodies, s.cfg.Mode.Softening)
}

// SetTheta changes the opening angle from the next tick on.
func (s *Simulator) SetTheta(theta float64) error {
	if s.tree == nil {
		return fmt.Errorf("%w: theta has no effect with the %s method", ErrInvalidConfig, s.cfg.Method)
	}
	if err := s.tree.SetTheta(theta); err != nil {
		return err
	}
	s.cfg.Theta = theta
	return nil
}

// Tick advances the system by one step: let the integrator predict, rebuild
// the tree, compute every force, let metrics and observers see the frame,
// then let the integrator correct.
func (s *Simulator) Tick(ctx context.Context) error {
	return s.step(ctx, nil)
}

// step is Tick that also fills sample, when non-nil, from the state the
// forces were computed on.
func (s *Simulator) step(ctx context.Context, sample *Sample) error {
	ts := s.cfg.Mode.TimeScale
	s.integ.Predict(s.bodies, ts)

	if err := s.rebuild(); err != nil {
		return &TickError{Tick: s.tick, Wrapped: err}
	}
	if err := s.computeForces(ctx); err != nil {
		return &TickError{Tick: s.tick, Wrapped: err}
	}

	if sample != nil {
		*sample = s.sample()
	}

	f := s.frame()
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnTick(f)
	}

	s.integ.Correct(s.bodies, ts)

	if s.cfg.ValidateState {
		for _, b := range s.bodies {
			if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
				return &TickError{Tick: s.tick, Body: b.Name, Wrapped: ErrInvalidState}
			}
		}
	}

	s.tick++
	s.elapsed += ts
	return nil
}

func (s *Simulator) frame() Frame {
	return Frame{
		Tick:   s.tick,
		Time:   s.elapsed,
		Bodies: s.bodies,
		Tree:   s.tree,
		Mode:   s.cfg.Mode,
	}
}

func (s *Simulator) rebuild() error {
	if s.tree == nil {
		return nil
	}
	s.tree.Reset()
	err := s.tree.Build(s.bodies)
	s.tree.Finalize()
	if err == nil {
		if s.escaped > 0 {
			s.logger.Info("all bodies back inside the universe", "tick", s.tick)
		}
		s.escaped = 0
		return nil
	}

	n, ok := outOfBounds(err)
	if !ok || !s.cfg.AllowEscape {
		return err
	}
	if n != s.escaped {
		s.logger.Warn("bodies outside the universe", "tick", s.tick, "escaped", n)
	}
	s.escaped = n
	return nil
}

// outOfBounds reports how many of the joined build errors are bounds
// errors, and whether there were no others.
func outOfBounds(err error) (int, bool) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	n := 0
	for _, e := range errs {
		if !errors.Is(e, octree.ErrOutOfBounds) {
			return n, false
		}
		n++
	}
	return n, true
}

// Run performs steps ticks. On error the partial result is returned along
// with it.
func (s *Simulator) Run(ctx context.Context, steps int) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, steps)
	}

	result := &Result{
		Samples: make([]Sample, 0, s.sampleCap(steps)),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	initialEnergy := s.Energy()
	s.logger.Debug("run started", "bodies", len(s.bodies), "steps", steps, "method", s.cfg.Method, "theta", s.cfg.Theta)

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		tickStart := time.Now()
		var sample *Sample
		if s.cfg.SampleEvery > 0 && s.tick%s.cfg.SampleEvery == 0 {
			sample = &Sample{}
		}

		if err := s.step(ctx, sample); err != nil {
			runErr = err
			break
		}
		result.TicksTaken++

		if sample != nil {
			sample.Elapsed = time.Since(tickStart)
			result.Samples = append(result.Samples, *sample)
		}
	}

	finalEnergy := s.Energy()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)

	if runErr != nil {
		s.logger.Error("run stopped", "tick", s.tick, "err", runErr)
		return result, runErr
	}
	s.logger.Debug("run finished", "ticks", result.TicksTaken, "drift", result.EnergyDrift, "elapsed", result.Elapsed)
	return result, nil
}

func (s *Simulator) sampleCap(steps int) int {
	if s.cfg.SampleEvery <= 0 {
		return 0
	}
	return steps/s.cfg.SampleEvery + 1
}

func (s *Simulator) sample() Sample {
	soft := s.cfg.Mode.Softening
	ke := body.KineticEnergy(s.bodies)
	pe := body.PotentialEnergy(s.bodies, soft)
	sm := Sample{
		Tick:      s.tick,
		Time:      s.elapsed,
		Kinetic:   ke,
		Potential: pe,
		Energy:    ke + pe,
		Momentum:  body.TotalMomentum(s.bodies).Length(),
		Escaped:   s.escaped,
		Height:    -1,
	}
	if s.tree != nil {
		sm.Nodes = s.tree.NodeCount()
		sm.Height = s.tree.Height()
	}
	return sm
}
