// Package scheduler triggers discovery cycles on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/coordination"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/pipeline"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research"
)

// Scheduler runs the pipeline on a fixed cron expression. One entry, one
// pipeline; overlapping ticks are rejected by the run lock when Redis is
// configured, and by the in-process guard otherwise.
type Scheduler struct {
	runner       *pipeline.Runner
	params       research.Params
	lock         *coordination.RunLock
	cronExpr     string
	attemptDelay time.Duration
	log          logger.Logger

	cron    *cron.Cron
	running chan struct{}
}

// New creates a scheduler. lock may be nil when Redis is not configured.
func New(
	runner *pipeline.Runner,
	params research.Params,
	lock *coordination.RunLock,
	cronExpr string,
	attemptDelay time.Duration,
	log logger.Logger,
) *Scheduler {
	return &Scheduler{
		runner:       runner,
		params:       params,
		lock:         lock,
		cronExpr:     cronExpr,
		attemptDelay: attemptDelay,
		log:          log,
		running:      make(chan struct{}, 1),
	}
}

// Start registers the cron entry and begins scheduling. It returns once
// the scheduler is running; Stop halts it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.cronExpr, func() {
		s.tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.cronExpr, err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.String("cron", s.cronExpr))
	return nil
}

// Stop halts scheduling and waits for a running cycle's cron entry to
// return.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
	}
	s.log.Info("scheduler stopped")
}

// tick runs one discovery cycle. A tick that fires while the previous
// cycle is still running is skipped.
func (s *Scheduler) tick(ctx context.Context) {
	select {
	case s.running <- struct{}{}:
		defer func() { <-s.running }()
	default:
		s.log.Warn("skipping tick: previous cycle still running")
		return
	}

	s.log.Info("discovery cycle starting")
	out, err := s.runner.Execute(ctx, s.params, pipeline.ExecuteOptions{
		Lock:         s.lock,
		AttemptDelay: s.attemptDelay,
	})
	if err != nil {
		if errors.Is(err, coordination.ErrRunInProgress) {
			return
		}
		s.log.Error("discovery cycle failed", zap.Error(err))
		return
	}

	s.log.Info("discovery cycle finished",
		zap.String("run_id", out.RunID),
		zap.String("status", string(out.Status)),
		zap.Int("added", len(out.AddedIDs)),
		zap.Int("rejected", out.Rejected),
	)
}
