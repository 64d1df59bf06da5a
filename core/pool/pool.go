package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of one worker invocation.
type Result[T any] struct {
	// Target is the ID the worker was invoked with.
	Target int64

	// Value is the worker's output. Only meaningful when Err is nil.
	Value T

	// Err is the worker's failure, if any. A failed target never affects
	// its siblings; the caller decides how to account for it.
	Err error
}

// Run processes targets with a bounded number of concurrent workers and
// returns one Result per target, in completion order.
//
// Worker errors are captured in the corresponding Result instead of being
// propagated, so a single failing target cannot cancel or corrupt the rest
// of the batch. Run only stops early when ctx is cancelled, in which case
// unstarted targets are reported with ctx.Err().
func Run[T any](ctx context.Context, targets []int64, maxParallel int, worker func(ctx context.Context, target int64) (T, error)) []Result[T] {
	if maxParallel < 1 {
		maxParallel = 1
	}

	out := make(chan Result[T], len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for _, target := range targets {
		if gctx.Err() != nil {
			out <- Result[T]{Target: target, Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			value, err := worker(gctx, target)
			out <- Result[T]{Target: target, Value: value, Err: err}
			// Never fail the group; isolation is the whole point.
			return nil
		})
	}

	_ = g.Wait()
	close(out)

	results := make([]Result[T], 0, len(targets))
	for r := range out {
		results = append(results, r)
	}
	return results
}
