// Package clock provides the cooperative wall-clock deadline check the
// search loop polls between rounds (spec.md §5: "cooperative
// cancellation via wall-clock deadline polling between phases and
// rounds"), wrapping context.Context the way the teacher's
// solver.Solve(ctx context.Context) does.
package clock

import "context"

// Deadline wraps a context.Context, offering a single cheap
// non-blocking check safe to call at the top of every round.
type Deadline struct {
	ctx context.Context
}

// New wraps ctx. A nil ctx is treated as context.Background().
func New(ctx context.Context) Deadline {
	if ctx == nil {
		ctx = context.Background()
	}
	return Deadline{ctx: ctx}
}

// Expired reports whether the wrapped context has already been
// cancelled or its deadline has passed.
func (d Deadline) Expired() bool {
	select {
	case <-d.ctx.Done():
		return true
	default:
		return false
	}
}

// Err returns the underlying context's error, if any.
func (d Deadline) Err() error {
	return d.ctx.Err()
}

// Context returns the wrapped context, for passing on to a SAT backend.
func (d Deadline) Context() context.Context {
	return d.ctx
}
