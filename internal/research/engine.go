// Package research owns the job state machine: it spawns the research
// stages for one run, persists their progress to the versioned store
// between invocations, and aggregates their output once every stage is
// terminal.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/blob"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research/providers"
)

// ErrRunBlocked is returned when a run's finalize-attempt budget is spent
// while stages remain non-terminal. The run is permanently blocked; the
// caller must start a new one.
var ErrRunBlocked = errors.New("finalize attempt budget exhausted")

// Config bounds the engine's polling behavior.
type Config struct {
	// MaxFinalizeAttempts is the total finalize budget per run.
	MaxFinalizeAttempts int `yaml:"max_finalize_attempts" env:"MAX_FINALIZE_ATTEMPTS"`
	// PollBackoff is the fixed delay between the two poll passes of one
	// finalize call.
	PollBackoff time.Duration `yaml:"poll_backoff"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.MaxFinalizeAttempts <= 0 {
		c.MaxFinalizeAttempts = 3
	}
	if c.PollBackoff <= 0 {
		c.PollBackoff = 20 * time.Second
	}
}

// Params are the knobs for one research run.
type Params struct {
	Query       string
	WithinDays  int
	TargetCount int
	SearchLimit int
	Mode        domain.RunMode
}

// FinalizeResult reports the outcome of one finalize call. Sources and
// Summary are populated only when Ready is true.
type FinalizeResult struct {
	Job     *domain.Job
	Ready   bool
	Sources []domain.SourceRecord
	Summary string
}

// Engine is the job state machine. All cross-invocation progress lives in
// the store, never in memory: a single process invocation is not
// guaranteed to outlive a multi-minute remote research job.
type Engine struct {
	store blob.Store
	log   logger.Logger
	sync  []providers.SyncProvider
	async []providers.AsyncProvider
	cfg   Config

	now   func() time.Time
	sleep func(context.Context, time.Duration)
}

// NewEngine creates the engine with its stage providers.
func NewEngine(store blob.Store, log logger.Logger, syncProviders []providers.SyncProvider, asyncProviders []providers.AsyncProvider, cfg Config) *Engine {
	cfg.SetDefaults()
	return &Engine{
		store: store,
		log:   log,
		sync:  syncProviders,
		async: asyncProviders,
		cfg:   cfg,
		now:   time.Now,
		sleep: func(ctx context.Context, d time.Duration) {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		},
	}
}

// JobKey returns the store key the job record is persisted under.
func JobKey(runID string) string {
	return "runs/" + runID + "/job.json"
}

// LoadJob reads and, if needed, schema-upgrades the persisted job.
func (e *Engine) LoadJob(ctx context.Context, runID string) (*domain.Job, error) {
	data, err := e.store.Read(ctx, JobKey(runID))
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", runID, err)
	}
	return domain.DecodeJob(data)
}

// SaveJob persists the job record. The job object is a mutable pointer:
// it is rewritten after every poll pass.
func (e *Engine) SaveJob(ctx context.Context, job *domain.Job) error {
	job.SchemaVersion = domain.CurrentJobSchema
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.RunID, err)
	}
	if _, err := e.store.WritePointer(ctx, JobKey(job.RunID), data); err != nil {
		return fmt.Errorf("save job %s: %w", job.RunID, err)
	}
	return nil
}

// Start creates and persists a new job: every asynchronous stage is
// started (its remote handle recorded) before any synchronous work, then
// the synchronous stages run concurrently to completion. Provider errors
// are captured per stage and never abort the run.
func (e *Engine) Start(ctx context.Context, p Params) (*domain.Job, error) {
	job := &domain.Job{
		SchemaVersion: domain.CurrentJobSchema,
		RunID:         uuid.NewString(),
		CreatedAt:     e.now().UTC(),
		WithinDays:    p.WithinDays,
		TargetCount:   p.TargetCount,
		SearchLimit:   p.SearchLimit,
		Mode:          p.Mode,
	}
	query := providers.Query{Text: p.Query, WithinDays: p.WithinDays, Limit: p.SearchLimit}

	// Fire off all remote jobs first so they run while sync stages work.
	for _, ap := range e.async {
		stage := domain.Stage{
			ID:       ap.ID(),
			Provider: providerName(ap.ID()),
			Status:   domain.StagePending,
			Query:    p.Query,
		}
		handle, err := ap.Start(ctx, query)
		if err != nil {
			stage.Fail(err.Error(), e.now().UTC())
			e.log.Warn("async stage failed to start",
				zap.String("run_id", job.RunID),
				zap.String("stage", stage.ID),
				zap.Error(err),
			)
		} else {
			stage.RequestHandle = handle
		}
		job.Stages = append(job.Stages, stage)
	}

	base := len(job.Stages)
	for _, sp := range e.sync {
		job.Stages = append(job.Stages, domain.Stage{
			ID:       sp.ID(),
			Provider: providerName(sp.ID()),
			Status:   domain.StagePending,
			Query:    p.Query,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, sp := range e.sync {
		stage := &job.Stages[base+i]
		g.Go(func() error {
			res, err := sp.Run(gctx, query)
			if err != nil {
				stage.Fail(err.Error(), e.now().UTC())
				e.log.Warn("sync stage failed",
					zap.String("run_id", job.RunID),
					zap.String("stage", stage.ID),
					zap.Error(err),
				)
				return nil
			}
			stage.Complete(res.Sources, res.Summary, e.now().UTC())
			return nil
		})
	}
	_ = g.Wait()

	if err := e.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	e.log.Info("research job started",
		zap.String("run_id", job.RunID),
		zap.String("mode", string(job.Mode)),
		zap.Int("stages", len(job.Stages)),
	)
	return job, nil
}

// Poll performs one poll pass over the job, re-querying only non-terminal
// asynchronous stages. Safe to call repeatedly: terminal stages are left
// untouched.
func (e *Engine) Poll(ctx context.Context, job *domain.Job) {
	for i := range job.Stages {
		stage := &job.Stages[i]
		if stage.Status.Terminal() {
			continue
		}

		ap := e.asyncProvider(stage.ID)
		if ap == nil {
			stage.Fail("no provider registered for stage", e.now().UTC())
			continue
		}

		res, err := ap.Poll(ctx, stage.RequestHandle)
		switch {
		case err != nil:
			stage.Fail(err.Error(), e.now().UTC())
		case res == nil:
			stage.Status = domain.StageInProgress
		default:
			stage.Complete(res.Sources, res.Summary, e.now().UTC())
		}
	}
}

// Finalize spends one attempt from the run's budget: the counter is
// incremented and persisted before any polling work, on every call. It
// then performs two poll passes separated by a fixed backoff and reports
// pending or ready. A spent budget returns ErrRunBlocked without polling.
func (e *Engine) Finalize(ctx context.Context, runID string) (*FinalizeResult, error) {
	job, err := e.LoadJob(ctx, runID)
	if err != nil {
		return nil, err
	}

	job.FinalizeAttempts++
	at := e.now().UTC()
	job.LastFinalizeAt = &at
	if err := e.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	if job.FinalizeAttempts > e.cfg.MaxFinalizeAttempts {
		e.log.Error("run blocked: finalize budget exhausted",
			zap.String("run_id", runID),
			zap.Int("attempts", job.FinalizeAttempts),
		)
		return &FinalizeResult{Job: job}, fmt.Errorf("run %s: %w", runID, ErrRunBlocked)
	}

	e.Poll(ctx, job)
	if !job.AllTerminal() {
		e.sleep(ctx, e.cfg.PollBackoff)
		e.Poll(ctx, job)
	}
	if err := e.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	if !job.AllTerminal() {
		e.log.Info("run still pending",
			zap.String("run_id", runID),
			zap.Int("attempts", job.FinalizeAttempts),
		)
		return &FinalizeResult{Job: job}, nil
	}

	sources, summary := Aggregate(job.Stages)
	e.log.Info("run ready for aggregation",
		zap.String("run_id", runID),
		zap.Int("sources", len(sources)),
	)
	return &FinalizeResult{Job: job, Ready: true, Sources: sources, Summary: summary}, nil
}

func (e *Engine) asyncProvider(stageID string) providers.AsyncProvider {
	for _, ap := range e.async {
		if ap.ID() == stageID {
			return ap
		}
	}
	return nil
}

// providerName maps stage ids to their provider names.
func providerName(stageID string) string {
	switch stageID {
	case domain.StageIDSocial:
		return domain.ProviderSocial
	case domain.StageIDDeepResearch:
		return domain.ProviderDeepResearch
	case domain.StageIDTranscripts:
		return domain.ProviderTranscripts
	default:
		return stageID
	}
}
