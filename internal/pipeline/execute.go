package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/coordination"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research"
)

const defaultAttemptDelay = 30 * time.Second

// ExecuteOptions tunes a full start-to-publish execution.
type ExecuteOptions struct {
	// Lock guards against concurrent executions when set.
	Lock *coordination.RunLock
	// AttemptDelay is the wait between finalize attempts while pending.
	AttemptDelay time.Duration
}

// Execute performs a complete discovery cycle in one invocation: start a
// run, then finalize repeatedly until it publishes, yields nothing, or
// exhausts its budget. This is the scheduler's entry point; the operator
// API drives start and finalize separately instead.
func (r *Runner) Execute(ctx context.Context, p research.Params, opts ExecuteOptions) (*Outcome, error) {
	if opts.AttemptDelay <= 0 {
		opts.AttemptDelay = defaultAttemptDelay
	}

	if opts.Lock != nil {
		if err := opts.Lock.Acquire(ctx); err != nil {
			if errors.Is(err, coordination.ErrRunInProgress) {
				r.log.Warn("skipping cycle: another run holds the lock")
			}
			return nil, err
		}
		defer func() {
			if err := opts.Lock.Release(context.WithoutCancel(ctx)); err != nil {
				r.log.Warn("failed to release run lock", zap.Error(err))
			}
		}()
	}

	job, err := r.StartRun(ctx, p)
	if err != nil {
		return nil, err
	}

	for {
		out, err := r.FinalizeRun(ctx, job.RunID)
		if err != nil {
			return nil, err
		}
		if out.Status != StatusPending {
			return out, nil
		}

		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(opts.AttemptDelay):
		}
	}
}
