package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotConfirmed is returned when a commit run was not explicitly confirmed.
var ErrNotConfirmed = errors.New("write mode requires explicit confirmation (--confirm)")

// DefaultGrace is how long a confirmed run waits before its first write.
const DefaultGrace = 5 * time.Second

// Gate decides whether a planned commit may proceed
type Gate interface {
	Wait(ctx context.Context, plan *Plan) error
}

// ConfirmGate lets a commit through only when Confirmed is set, after
// announcing the plan and waiting Grace. Cancelling ctx during the wait aborts.
type ConfirmGate struct {
	Confirmed bool
	Grace     time.Duration
	Out       io.Writer

	after func(time.Duration) <-chan time.Time
}

// Wait implements Gate.
func (g *ConfirmGate) Wait(ctx context.Context, plan *Plan) error {
	if !g.Confirmed {
		return ErrNotConfirmed
	}

	ids, _ := plan.Updates()
	if g.Out != nil {
		fmt.Fprintf(g.Out, "About to delete %d of %d events and update %d. Committing in %s, interrupt to abort.\n",
			len(plan.Deletions), plan.Total(), len(ids), g.Grace)
	}

	if g.Grace <= 0 {
		return ctx.Err()
	}

	after := g.after
	if after == nil {
		after = time.After
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("commit aborted: %w", ctx.Err())
	case <-after(g.Grace):
		return nil
	}
}
