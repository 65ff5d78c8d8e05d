package research_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research"
)

func completedStage(id, summary string, sources ...domain.SourceRecord) domain.Stage {
	return domain.Stage{
		ID:      id,
		Status:  domain.StageCompleted,
		Sources: sources,
		Summary: summary,
	}
}

func TestAggregateOrdersByPriority(t *testing.T) {
	stages := []domain.Stage{
		completedStage(domain.StageIDTranscripts, "mined",
			domain.SourceRecord{URL: "https://t.example.com", StageID: domain.StageIDTranscripts}),
		completedStage(domain.StageIDSocial, "searched",
			domain.SourceRecord{URL: "https://s.example.com", StageID: domain.StageIDSocial}),
		completedStage(domain.StageIDDeepResearch, "researched",
			domain.SourceRecord{URL: "https://d.example.com", StageID: domain.StageIDDeepResearch}),
	}

	sources, summary := research.Aggregate(stages)
	require.Len(t, sources, 3)
	assert.Equal(t, "https://s.example.com", sources[0].URL)
	assert.Equal(t, "https://d.example.com", sources[1].URL)
	assert.Equal(t, "https://t.example.com", sources[2].URL)

	// Summaries are labeled and follow the same order.
	assert.Equal(t,
		"[social-search]\nsearched\n\n[deep-research]\nresearched\n\n[transcripts]\nmined",
		summary)
}

func TestAggregateDedupsFirstWriterWins(t *testing.T) {
	shared := "https://shared.example.com"
	stages := []domain.Stage{
		completedStage(domain.StageIDDeepResearch, "",
			domain.SourceRecord{Title: "from research", URL: shared}),
		completedStage(domain.StageIDSocial, "",
			domain.SourceRecord{Title: "from social", URL: shared}),
	}

	sources, _ := research.Aggregate(stages)
	require.Len(t, sources, 1)
	// Social outranks deep research regardless of slice order.
	assert.Equal(t, "from social", sources[0].Title)
}

func TestAggregateSkipsNonCompleted(t *testing.T) {
	stages := []domain.Stage{
		{ID: domain.StageIDSocial, Status: domain.StageFailed, Error: "boom"},
		completedStage(domain.StageIDDeepResearch, "ok",
			domain.SourceRecord{URL: "https://d.example.com"}),
		{ID: domain.StageIDTranscripts, Status: domain.StageInProgress},
	}

	sources, summary := research.Aggregate(stages)
	require.Len(t, sources, 1)
	assert.Equal(t, "[deep-research]\nok", summary)
}

func TestAggregateUnknownStageAppended(t *testing.T) {
	stages := []domain.Stage{
		completedStage("experimental", "extra",
			domain.SourceRecord{URL: "https://x.example.com"}),
		completedStage(domain.StageIDSocial, "searched",
			domain.SourceRecord{URL: "https://s.example.com"}),
	}

	sources, _ := research.Aggregate(stages)
	require.Len(t, sources, 2)
	assert.Equal(t, "https://s.example.com", sources[0].URL)
	assert.Equal(t, "https://x.example.com", sources[1].URL)
}

func TestAggregateEmpty(t *testing.T) {
	sources, summary := research.Aggregate(nil)
	assert.Empty(t, sources)
	assert.Empty(t, summary)
}
