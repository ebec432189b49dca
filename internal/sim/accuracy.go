package sim

import (
	"context"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/octree"
	"github.com/san-kum/bhsim/internal/vec"
)

// Accuracy compares one theta against direct summation on a fixed snapshot.
type Accuracy struct {
	Theta     float64
	MeanError float64
	P95Error  float64
	MaxError  float64
	Build     time.Duration
	Query     time.Duration
	Direct    time.Duration
	Nodes     int
	Height    int
	Skipped   int
}

// Speedup is the direct time over the tree's build plus query time.
func (a Accuracy) Speedup() float64 {
	tree := a.Build + a.Query
	if tree <= 0 {
		return 0
	}
	return float64(a.Direct) / float64(tree)
}

// MeasureAccuracy evaluates each theta on the current positions of bodies.
// Relative errors are |F_tree - F_direct| / |F_direct|; bodies with zero
// direct force are skipped. Bodies are not modified.
func MeasureAccuracy(ctx context.Context, bodies []*body.Body, halfWidth, softening float64, thetas []float64, workers int) ([]Accuracy, error) {
	if len(bodies) == 0 {
		return nil, ErrNoBodies
	}

	exact := make([]vec.Vec3, len(bodies))
	start := time.Now()
	err := parallelFor(ctx, len(bodies), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			exact[i] = body.DirectForce(bodies[i], bodies, softening)
		}
	})
	if err != nil {
		return nil, err
	}
	direct := time.Since(start)

	out := make([]Accuracy, 0, len(thetas))
	approx := make([]vec.Vec3, len(bodies))
	for _, theta := range thetas {
		tree, err := octree.New(octree.Config{HalfWidth: halfWidth, Theta: theta, Softening: softening})
		if err != nil {
			return nil, err
		}

		start := time.Now()
		if err := tree.Build(bodies); err != nil {
			return nil, err
		}
		tree.Finalize()
		build := time.Since(start)

		start = time.Now()
		err = parallelFor(ctx, len(bodies), workers, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				approx[i] = tree.QueryForce(bodies[i])
			}
		})
		if err != nil {
			return nil, err
		}
		query := time.Since(start)

		errs := make([]float64, 0, len(bodies))
		for i := range bodies {
			ref := exact[i].Length()
			if ref == 0 {
				continue
			}
			errs = append(errs, approx[i].Sub(exact[i]).Length()/ref)
		}

		a := Accuracy{
			Theta:   theta,
			Build:   build,
			Query:   query,
			Direct:  direct,
			Nodes:   tree.NodeCount(),
			Height:  tree.Height(),
			Skipped: len(bodies) - len(errs),
		}
		if len(errs) > 0 {
			sorted := append([]float64(nil), errs...)
			slices.Sort(sorted)
			a.MeanError = stat.Mean(errs, nil)
			a.P95Error = stat.Quantile(0.95, stat.Empirical, sorted, nil)
			a.MaxError = sorted[len(sorted)-1]
		}
		out = append(out, a)
	}
	return out, nil
}
