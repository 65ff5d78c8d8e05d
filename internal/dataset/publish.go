package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/blob"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
)

// Object layout in the versioned store.
const (
	snapshotKeyPrefix = "data/snapshots/"
	// ManifestKey is the single mutable pointer readers fetch first.
	ManifestKey = "data/latest.json"
)

// SnapshotKey returns the write-once snapshot key for a run.
func SnapshotKey(runID string) string {
	return snapshotKeyPrefix + runID + ".json"
}

// Publisher writes immutable dataset snapshots and updates the manifest
// pointer as the final step, so readers always see a complete dataset.
type Publisher struct {
	store blob.Store
	log   logger.Logger
	now   func() time.Time
}

// NewPublisher creates a Publisher backed by the given store.
func NewPublisher(store blob.Store, log logger.Logger) *Publisher {
	return &Publisher{store: store, log: log, now: time.Now}
}

// LoadLatest reads the manifest and the snapshot it points at. A missing
// manifest means no dataset has been published yet; it returns an empty
// dataset and a zero manifest.
func (p *Publisher) LoadLatest(ctx context.Context) (domain.Dataset, domain.Manifest, error) {
	var manifest domain.Manifest

	raw, err := p.store.Read(ctx, ManifestKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return domain.Dataset{}, manifest, nil
		}
		return nil, manifest, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, manifest, fmt.Errorf("decode manifest: %w", err)
	}

	snapRaw, err := p.store.Read(ctx, manifest.SnapshotURL)
	if err != nil {
		return nil, manifest, fmt.Errorf("read snapshot %s: %w", manifest.SnapshotURL, err)
	}
	var ds domain.Dataset
	if err := json.Unmarshal(snapRaw, &ds); err != nil {
		return nil, manifest, fmt.Errorf("decode snapshot: %w", err)
	}
	return ds, manifest, nil
}

// Publish writes the dataset to the run's immutable snapshot path and then
// updates the manifest pointer. A write-once collision on the snapshot is
// fatal; it must never fall back to overwriting.
func (p *Publisher) Publish(ctx context.Context, runID string, ds domain.Dataset, addedIDs []string) (domain.Manifest, error) {
	// Read the previous manifest before writing anything. An unreadable or
	// corrupt manifest aborts the publish; falling back to version 1 here
	// would silently reset the version history.
	_, prev, err := p.LoadLatest(ctx)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("load previous manifest: %w", err)
	}
	version := prev.Version + 1

	payload, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("encode dataset: %w", err)
	}

	snapshotURL, err := p.store.WriteImmutable(ctx, SnapshotKey(runID), payload)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("write snapshot for run %s: %w", runID, err)
	}

	if addedIDs == nil {
		addedIDs = []string{}
	}
	manifest := domain.Manifest{
		Version:     version,
		UpdatedAt:   p.now().UTC(),
		RunID:       runID,
		Count:       len(ds),
		SnapshotURL: snapshotURL,
		AddedIDs:    addedIDs,
	}
	manifestPayload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("encode manifest: %w", err)
	}

	// Pointer update is the only mutable write and always the final step.
	if _, err := p.store.WritePointer(ctx, ManifestKey, manifestPayload); err != nil {
		return domain.Manifest{}, fmt.Errorf("write manifest: %w", err)
	}

	p.log.Info("dataset published",
		zap.String("run_id", runID),
		zap.Int("count", len(ds)),
		zap.Int("added", len(addedIDs)),
		zap.Int("version", version),
	)
	return manifest, nil
}
