package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/vec"
)

// minChunk is the smallest number of bodies handed to one goroutine.
const minChunk = 64

func (s *Simulator) computeForces(ctx context.Context) error {
	var force func(b *body.Body) vec.Vec3
	if s.tree != nil {
		force = s.tree.QueryForce
	} else {
		soft := s.cfg.Mode.Softening
		force = func(b *body.Body) vec.Vec3 { return body.DirectForce(b, s.bodies, soft) }
	}
	return ParallelForces(ctx, s.bodies, s.cfg.Workers, force)
}

// ParallelForces stores force(b) on every body, spread over at most workers
// goroutines. force must only read shared state.
func ParallelForces(ctx context.Context, bodies []*body.Body, workers int, force func(*body.Body) vec.Vec3) error {
	return parallelFor(ctx, len(bodies), workers, func(start, end int) {
		for _, b := range bodies[start:end] {
			b.SetForce(force(b))
		}
	})
}

// parallelFor splits [0, n) into contiguous chunks of at least minChunk
// and runs fn on each. Small inputs run on the calling goroutine.
func parallelFor(ctx context.Context, n, workers int, fn func(start, end int)) error {
	if workers <= 1 || n <= minChunk {
		fn(0, n)
		return ctx.Err()
	}

	chunks := workers
	if n/minChunk < chunks {
		chunks = n / minChunk
	}
	chunkSize := (n + chunks - 1) / chunks

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(start, end)
			return nil
		})
	}
	return g.Wait()
}
