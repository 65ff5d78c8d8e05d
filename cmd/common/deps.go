// Package common builds the shared dependency graph for all commands.
package common

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/blob"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/config"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/coordination"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/dataset"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/extract"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/index"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/pipeline"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research/providers"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/runlog"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/validate"
)

// ErrNoProviders is returned when no research stage is configured.
var ErrNoProviders = errors.New("no research providers configured")

// Deps holds the wired dependencies shared by all commands.
type Deps struct {
	Config    *config.Config
	Logger    logger.Logger
	Store     blob.Store
	Engine    *research.Engine
	Publisher *dataset.Publisher
	Runner    *pipeline.Runner
	// Lock is nil when Redis is not configured.
	Lock *coordination.RunLock

	closers []func() error
}

// Build loads configuration and constructs the dependency graph. Optional
// backends (Postgres, Elasticsearch, Redis) are wired only when
// configured.
func Build(ctx context.Context, configPath string) (*Deps, error) {
	cfg, err := config.LoadService(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	d := &Deps{Config: cfg, Logger: log}
	if err := d.build(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Deps) build(ctx context.Context) error {
	cfg := d.Config
	log := d.Logger

	store, err := d.buildStore(ctx)
	if err != nil {
		return err
	}
	d.Store = store

	syncProviders, asyncProviders := d.buildProviders()
	if len(syncProviders)+len(asyncProviders) == 0 {
		return ErrNoProviders
	}
	d.Engine = research.NewEngine(store, log, syncProviders, asyncProviders, cfg.Research)

	policy := validate.DefaultPolicy()
	if cfg.Validation.PolicyPath != "" {
		policy, err = validate.LoadPolicy(cfg.Validation.PolicyPath)
		if err != nil {
			return fmt.Errorf("load trust policy: %w", err)
		}
	}
	validator := validate.New(policy, log)

	extractor := extract.New(cfg.Extract, log)
	d.Publisher = dataset.NewPublisher(store, log)
	d.Runner = pipeline.NewRunner(d.Engine, extractor, validator, d.Publisher, store, log)

	if cfg.Database.Enabled() {
		db, dbErr := runlog.NewPostgresConnection(cfg.Database)
		if dbErr != nil {
			return dbErr
		}
		d.closers = append(d.closers, db.Close)
		d.Runner.WithAudit(runlog.NewRepository(db))
	}

	if cfg.Elasticsearch.Enabled() {
		esClient, esErr := index.NewClient(ctx, cfg.Elasticsearch, log)
		if esErr != nil {
			return esErr
		}
		indexer := index.NewIndexer(esClient, cfg.Elasticsearch.Index, log)
		if ensureErr := indexer.EnsureIndex(ctx); ensureErr != nil {
			log.Warn("failed to ensure search index", zap.Error(ensureErr))
		}
		d.Runner.WithIndexer(indexer)
	}

	if cfg.Redis.Enabled() {
		redisClient, redisErr := coordination.NewRedisClient(ctx, cfg.Redis)
		if redisErr != nil {
			return redisErr
		}
		d.closers = append(d.closers, redisClient.Close)
		d.Lock = coordination.NewRunLock(redisClient, cfg.Redis)
	}

	return nil
}

func (d *Deps) buildStore(ctx context.Context) (blob.Store, error) {
	switch d.Config.Storage.Backend {
	case config.StorageGCS:
		store, err := blob.NewGCSStore(ctx, d.Config.Storage.Bucket, d.Config.Storage.Prefix)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, store.Close)
		return store, nil
	default:
		return blob.NewFSStore(d.Config.Storage.Dir)
	}
}

func (d *Deps) buildProviders() ([]providers.SyncProvider, []providers.AsyncProvider) {
	cfg := d.Config.Providers
	var syncProviders []providers.SyncProvider
	var asyncProviders []providers.AsyncProvider

	if cfg.Social.BaseURL != "" {
		syncProviders = append(syncProviders, providers.NewSocial(cfg.Social, d.Logger))
	}
	if len(cfg.Transcripts.Feeds) > 0 {
		syncProviders = append(syncProviders, providers.NewTranscripts(cfg.Transcripts, d.Logger))
	}
	if cfg.DeepResearch.BaseURL != "" {
		asyncProviders = append(asyncProviders, providers.NewDeepResearch(cfg.DeepResearch, d.Logger))
	}
	return syncProviders, asyncProviders
}

// Params returns the configured default research parameters.
func (d *Deps) Params() research.Params {
	q := d.Config.Query
	return research.Params{
		Query:       q.Text,
		WithinDays:  q.WithinDays,
		TargetCount: q.TargetCount,
		SearchLimit: q.SearchLimit,
		Mode:        domain.RunMode(q.Mode),
	}
}

// Close releases held connections in reverse order.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
	return errors.Join(errs...)
}
