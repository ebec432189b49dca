package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/bhsim/internal/body"
)

// Member is one independent run of an ensemble. Members must not share
// bodies.
type Member struct {
	Name   string
	Bodies []*body.Body
	Config Config
}

// EnsembleResult pairs a member with its outcome.
type EnsembleResult struct {
	Name   string
	Result *Result
	Err    error
}

// RunEnsemble runs every member for steps ticks, at most limit at a time.
// A failing member does not stop the others; its error is reported in its
// result. The returned error is only set when ctx is cancelled.
func RunEnsemble(ctx context.Context, members []Member, steps, limit int, setup func(*Simulator)) ([]EnsembleResult, error) {
	results := make([]EnsembleResult, len(members))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, m := range members {
		g.Go(func() error {
			results[i].Name = m.Name
			s, err := New(m.Bodies, m.Config)
			if err != nil {
				results[i].Err = fmt.Errorf("%s: %w", m.Name, err)
				return nil
			}
			if setup != nil {
				setup(s)
			}
			res, err := s.Run(ctx, steps)
			results[i].Result = res
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				results[i].Err = fmt.Errorf("%s: %w", m.Name, err)
			}
			return nil
		})
	}
	return results, g.Wait()
}
