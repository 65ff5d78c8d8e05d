package dataset_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/blob"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/dataset"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
)

func newPublisher(t *testing.T) (*dataset.Publisher, blob.Store) {
	t.Helper()
	store, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)
	return dataset.NewPublisher(store, logger.NewNop()), store
}

func TestLoadLatestEmpty(t *testing.T) {
	p, _ := newPublisher(t)

	ds, manifest, err := p.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds)
	assert.Zero(t, manifest.Version)
}

func TestPublishRoundTrip(t *testing.T) {
	p, _ := newPublisher(t)
	ctx := context.Background()

	ds := domain.Dataset{
		study("cs-1", "2026-08-01", "Bot earns $100", "https://a.example.com"),
	}
	manifest, err := p.Publish(ctx, "run-1", ds, []string{"cs-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Version)
	assert.Equal(t, "run-1", manifest.RunID)
	assert.Equal(t, 1, manifest.Count)
	assert.Equal(t, []string{"cs-1"}, manifest.AddedIDs)

	loaded, loadedManifest, err := p.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds, loaded)
	assert.Equal(t, manifest.Version, loadedManifest.Version)
}

func TestPublishIncrementsVersion(t *testing.T) {
	p, _ := newPublisher(t)
	ctx := context.Background()

	ds := domain.Dataset{
		study("cs-1", "2026-08-01", "Bot earns $100", "https://a.example.com"),
	}
	_, err := p.Publish(ctx, "run-1", ds, []string{"cs-1"})
	require.NoError(t, err)

	ds = append(ds, study("cs-2", "2026-08-02", "Other earns $200", "https://b.example.com"))
	manifest, err := p.Publish(ctx, "run-2", ds, []string{"cs-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.Version)

	loaded, _, err := p.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestPublishSameRunTwiceFails(t *testing.T) {
	p, _ := newPublisher(t)
	ctx := context.Background()

	ds := domain.Dataset{
		study("cs-1", "2026-08-01", "Bot earns $100", "https://a.example.com"),
	}
	_, err := p.Publish(ctx, "run-1", ds, []string{"cs-1"})
	require.NoError(t, err)

	// The snapshot path is write-once per run.
	_, err = p.Publish(ctx, "run-1", ds, []string{"cs-1"})
	assert.ErrorIs(t, err, blob.ErrObjectExists)
}

func TestPublishCorruptManifestAborts(t *testing.T) {
	p, store := newPublisher(t)
	ctx := context.Background()

	ds := domain.Dataset{
		study("cs-1", "2026-08-01", "Bot earns $100", "https://a.example.com"),
	}
	_, err := p.Publish(ctx, "run-1", ds, []string{"cs-1"})
	require.NoError(t, err)

	_, err = store.WritePointer(ctx, dataset.ManifestKey, []byte("{not json"))
	require.NoError(t, err)

	// An unreadable manifest must abort the publish outright, not reset
	// the version history to 1.
	_, err = p.Publish(ctx, "run-2", ds, []string{"cs-1"})
	require.ErrorContains(t, err, "load previous manifest")

	// Nothing was written: the pointer still holds the corrupt payload and
	// no snapshot exists for the aborted run.
	after, err := store.Read(ctx, dataset.ManifestKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("{not json"), after)
	_, err = store.Read(ctx, dataset.SnapshotKey("run-2"))
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestPublishManifestWrittenLast(t *testing.T) {
	p, store := newPublisher(t)
	ctx := context.Background()

	ds := domain.Dataset{
		study("cs-1", "2026-08-01", "Bot earns $100", "https://a.example.com"),
	}
	manifest, err := p.Publish(ctx, "run-1", ds, []string{"cs-1"})
	require.NoError(t, err)

	// The manifest's snapshot reference must dereference to the full dataset.
	raw, err := store.Read(ctx, manifest.SnapshotURL)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "cs-1")
}
