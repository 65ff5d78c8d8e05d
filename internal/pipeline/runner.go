// Package pipeline orchestrates one discovery cycle end to end: finalize
// the research job, extract and validate candidates, merge survivors into
// the dataset, and publish a new version.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/blob"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/dataset"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/extract"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/index"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/metrics"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/runlog"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/validate"
)

// Status is the operator-facing outcome of one finalize cycle.
type Status string

const (
	// StatusPending means stages are still running; call finalize again later.
	StatusPending Status = "pending"
	// StatusBlocked means the run spent its finalize budget and is dead.
	StatusBlocked Status = "blocked"
	// StatusPublished means a new dataset version was written.
	StatusPublished Status = "published"
	// StatusNoChange means the run completed but yielded nothing new; no
	// version was published.
	StatusNoChange Status = "no_change"
)

// Outcome reports what one finalize cycle did.
type Outcome struct {
	RunID          string   `json:"run_id"`
	Status         Status   `json:"status"`
	Attempts       int      `json:"attempts"`
	SourceCount    int      `json:"source_count"`
	CandidateCount int      `json:"candidate_count"`
	Rejected       int      `json:"rejected"`
	AddedIDs       []string `json:"added_ids"`
	DatasetVersion int      `json:"dataset_version,omitempty"`
	SnapshotURL    string   `json:"snapshot_url,omitempty"`
	ManifestURL    string   `json:"manifest_url,omitempty"`
}

// CandidateExtractor is the model-call boundary, narrowed for tests.
type CandidateExtractor interface {
	Extract(ctx context.Context, req extract.Request) ([]domain.Candidate, error)
}

// Runner wires the pipeline stages together. Audit and Indexer are
// optional; when present their failures are logged and swallowed because
// the blob store alone decides whether a run succeeded.
type Runner struct {
	engine    *research.Engine
	extractor CandidateExtractor
	validator *validate.Validator
	publisher *dataset.Publisher
	store     blob.Store
	log       logger.Logger
	stats     *metrics.Metrics

	audit   *runlog.Repository
	indexer *index.Indexer
}

// NewRunner creates a pipeline runner from its required parts.
func NewRunner(
	engine *research.Engine,
	extractor CandidateExtractor,
	validator *validate.Validator,
	publisher *dataset.Publisher,
	store blob.Store,
	log logger.Logger,
) *Runner {
	return &Runner{
		engine:    engine,
		extractor: extractor,
		validator: validator,
		publisher: publisher,
		store:     store,
		log:       log,
		stats:     metrics.NewMetrics(),
	}
}

// WithAudit attaches the optional Postgres audit trail.
func (r *Runner) WithAudit(repo *runlog.Repository) *Runner {
	r.audit = repo
	return r
}

// WithIndexer attaches the optional Elasticsearch mirror.
func (r *Runner) WithIndexer(ix *index.Indexer) *Runner {
	r.indexer = ix
	return r
}

// Metrics exposes the run counters for the operator API.
func (r *Runner) Metrics() *metrics.Metrics {
	return r.stats
}

// StartRun creates a new research job.
func (r *Runner) StartRun(ctx context.Context, p research.Params) (*domain.Job, error) {
	job, err := r.engine.Start(ctx, p)
	if err != nil {
		r.stats.RecordFailure()
		return nil, err
	}
	r.stats.RecordStart()
	return job, nil
}

// FinalizeRun spends one finalize attempt and, when the research is done,
// runs extraction, validation, merge and publish. Pending and blocked are
// reported in the Outcome, not as errors.
func (r *Runner) FinalizeRun(ctx context.Context, runID string) (*Outcome, error) {
	res, err := r.engine.Finalize(ctx, runID)
	if err != nil {
		if errors.Is(err, research.ErrRunBlocked) {
			r.stats.RecordBlocked()
			out := &Outcome{RunID: runID, Status: StatusBlocked, Attempts: res.Job.FinalizeAttempts}
			r.recordAudit(ctx, res.Job, out, "")
			return out, nil
		}
		r.stats.RecordFailure()
		return nil, err
	}

	job := res.Job
	if !res.Ready {
		r.stats.RecordPending()
		out := &Outcome{RunID: runID, Status: StatusPending, Attempts: job.FinalizeAttempts}
		r.recordAudit(ctx, job, out, "")
		return out, nil
	}

	out, err := r.process(ctx, job, res.Sources, res.Summary)
	if err != nil {
		r.stats.RecordFailure()
		r.recordAudit(ctx, job, &Outcome{RunID: runID, Attempts: job.FinalizeAttempts}, err.Error())
		return nil, err
	}
	r.recordAudit(ctx, job, out, "")
	return out, nil
}

// process runs the publish half of the pipeline once research is ready.
func (r *Runner) process(ctx context.Context, job *domain.Job, sources []domain.SourceRecord, summary string) (*Outcome, error) {
	out := &Outcome{
		RunID:       job.RunID,
		Attempts:    job.FinalizeAttempts,
		SourceCount: len(sources),
		AddedIDs:    []string{},
	}
	fallbackDate := job.CreatedAt.Format("2006-01-02")

	candidates, err := r.extractor.Extract(ctx, extract.Request{
		Sources:      sources,
		Summary:      summary,
		MaxItems:     job.TargetCount,
		Mode:         job.Mode,
		FallbackDate: fallbackDate,
	})
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", job.RunID, err)
	}
	out.CandidateCount = len(candidates)

	existing, _, err := r.publisher.LoadLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", job.RunID, err)
	}

	in := validatorInput(job, sources, existing, fallbackDate)
	var accepted []domain.CaseStudy
	for _, c := range candidates {
		if cs := r.validator.Normalize(c, in); cs != nil {
			accepted = append(accepted, *cs)
		} else {
			out.Rejected++
		}
	}

	merged, addedIDs := dataset.Merge(existing, accepted)
	if len(addedIDs) == 0 {
		// Nothing new survived; keep the current version untouched.
		out.Status = StatusNoChange
		r.stats.RecordPublish(0, out.Rejected)
		r.log.Info("run completed with no new case studies",
			zap.String("run_id", job.RunID),
			zap.Int("candidates", out.CandidateCount),
			zap.Int("rejected", out.Rejected),
		)
		return out, nil
	}

	manifest, err := r.publisher.Publish(ctx, job.RunID, merged, addedIDs)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", job.RunID, err)
	}

	out.Status = StatusPublished
	out.AddedIDs = addedIDs
	out.DatasetVersion = manifest.Version
	out.SnapshotURL = manifest.SnapshotURL
	out.ManifestURL = dataset.ManifestKey
	r.stats.RecordPublish(len(addedIDs), out.Rejected)

	r.writeRunArtifacts(ctx, job.RunID, sources, summary, merged, addedIDs)
	r.indexPublished(ctx, job.RunID, merged, addedIDs, manifest.Version)
	return out, nil
}

// validatorInput builds the per-run validation context from the
// aggregated sources and the current dataset.
func validatorInput(job *domain.Job, sources []domain.SourceRecord, existing domain.Dataset, fallbackDate string) validate.Input {
	allowed := make(map[string]struct{}, len(sources))
	snippets := make(map[string]string, len(sources))
	trusted := make(map[string]struct{})
	for _, s := range sources {
		allowed[s.URL] = struct{}{}
		if s.Snippet != "" {
			snippets[s.URL] = s.Snippet
		}
		// Handle-search hits carry a verified account handle, so their
		// social URLs count as corroborated.
		if s.StageID == domain.StageIDSocial {
			trusted[s.URL] = struct{}{}
		}
	}
	return validate.Input{
		AllowedURLs:       allowed,
		Mode:              job.Mode,
		FallbackDate:      fallbackDate,
		ExistingIDs:       existing.IDs(),
		URLSnippets:       snippets,
		TrustedHandleURLs: trusted,
	}
}

// writeRunArtifacts stores per-run debug artifacts next to the job record.
// Best effort only.
func (r *Runner) writeRunArtifacts(ctx context.Context, runID string, sources []domain.SourceRecord, summary string, merged domain.Dataset, addedIDs []string) {
	type sourcesArtifact struct {
		Sources []domain.SourceRecord `json:"sources"`
		Summary string                `json:"summary"`
	}
	if data, err := json.MarshalIndent(sourcesArtifact{Sources: sources, Summary: summary}, "", "  "); err == nil {
		if _, err := r.store.WritePointer(ctx, "runs/"+runID+"/sources.json", data); err != nil {
			r.log.Warn("failed to write sources artifact", zap.String("run_id", runID), zap.Error(err))
		}
	}

	addedSet := make(map[string]struct{}, len(addedIDs))
	for _, id := range addedIDs {
		addedSet[id] = struct{}{}
	}
	var added []domain.CaseStudy
	for _, cs := range merged {
		if _, ok := addedSet[cs.ID]; ok {
			added = append(added, cs)
		}
	}
	if data, err := json.MarshalIndent(added, "", "  "); err == nil {
		if _, err := r.store.WritePointer(ctx, "runs/"+runID+"/added.json", data); err != nil {
			r.log.Warn("failed to write added artifact", zap.String("run_id", runID), zap.Error(err))
		}
	}
}

// indexPublished mirrors the newly added case studies to Elasticsearch.
// Best effort only.
func (r *Runner) indexPublished(ctx context.Context, runID string, merged domain.Dataset, addedIDs []string, version int) {
	if r.indexer == nil {
		return
	}

	addedSet := make(map[string]struct{}, len(addedIDs))
	for _, id := range addedIDs {
		addedSet[id] = struct{}{}
	}
	var added []domain.CaseStudy
	for _, cs := range merged {
		if _, ok := addedSet[cs.ID]; ok {
			added = append(added, cs)
		}
	}

	indexed, err := r.indexer.IndexCaseStudies(ctx, added, runID, version)
	if err != nil {
		r.log.Warn("failed to index published case studies",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return
	}
	r.log.Debug("case studies indexed",
		zap.String("run_id", runID),
		zap.Int("indexed", indexed),
	)
}

// recordAudit appends a run history row. Best effort only.
func (r *Runner) recordAudit(ctx context.Context, job *domain.Job, out *Outcome, errMsg string) {
	if r.audit == nil || job == nil {
		return
	}

	status := string(out.Status)
	if errMsg != "" {
		status = "failed"
	}
	rec := &runlog.RunRecord{
		RunID:           job.RunID,
		Mode:            string(job.Mode),
		Status:          status,
		FinalizeAttempt: job.FinalizeAttempts,
		SourceCount:     out.SourceCount,
		CandidateCount:  out.CandidateCount,
		RejectedCount:   out.Rejected,
		AddedIDs:        out.AddedIDs,
		DatasetVersion:  out.DatasetVersion,
		SnapshotURL:     out.SnapshotURL,
		Error:           errMsg,
	}
	auditCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := r.audit.Create(auditCtx, rec); err != nil {
		r.log.Warn("failed to record run history",
			zap.String("run_id", job.RunID),
			zap.Error(err),
		)
	}
}
