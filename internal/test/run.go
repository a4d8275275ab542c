package test

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/smcompiler/pkg/field"
	"github.com/luxfi/smcompiler/pkg/party"
)

// RunEngines runs run(id) concurrently for every participant in ids via
// errgroup, mirroring how the teacher's benchmark and test harnesses spin
// up one goroutine per simulated participant and join them. If any
// participant's run fails, the first error is returned and the remaining
// goroutines' results are discarded.
func RunEngines(ctx context.Context, ids party.IDSlice, run func(ctx context.Context, id party.ID) (field.Element, error)) ([]field.Element, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]field.Element, len(ids))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			r, err := run(gctx, id)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
