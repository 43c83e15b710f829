package resilience

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrPanicRecovered is recorded for a task that panicked.
var ErrPanicRecovered = errors.New("resilience: panic recovered")

// Result is the settled outcome of one task.
type Result[T any] struct {
	Value T
	Err   error
}

// SettleAll runs fn for every index in [0, n) concurrently and waits for all of them.
// A failing or panicking task never cancels or short-circuits the others;
// each outcome lands in its own slot of the returned slice, in index order.
func SettleAll[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) (T, error)) []Result[T] {
	results := make([]Result[T], n)

	// A plain Group: no derived context, so the first error cancels nothing.
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result[T]{Err: fmt.Errorf("%w: %v", ErrPanicRecovered, r)}
				}
			}()

			v, err := fn(ctx, i)
			results[i] = Result[T]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
