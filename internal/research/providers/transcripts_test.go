package providers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research/providers"
)

const transcriptPage = `<html><head><title>Episode 42 transcript</title></head><body>
<p>The agent collected $500 in subscription revenue from early users earning alongside it this week.</p>
<p>No dollar figures here, just a long discussion of agents earning money and how they schedule work.</p>
<p>Someone raised $2,000,000 in a funding round last quarter for entirely unrelated ventures and tooling.</p>
<p>Agents made $10.</p>
<blockquote>Our bot hit 2.3k MRR last month while agents handled billing end to end without supervision.</blockquote>
</body></html>`

func transcriptServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, transcriptPage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranscriptsMinesMoneyBlocks(t *testing.T) {
	srv := transcriptServer(t)

	tr := providers.NewTranscripts(providers.TranscriptsConfig{Feeds: []string{srv.URL}}, logger.NewNop())
	res, err := tr.Run(context.Background(), providers.Query{Text: "AI agents earning money"})
	require.NoError(t, err)

	// Only blocks that carry a money token AND a query keyword survive:
	// the literal-dollar paragraph and the shorthand blockquote.
	require.Len(t, res.Sources, 2)
	assert.Contains(t, res.Sources[0].Snippet, "$500")
	assert.Contains(t, res.Sources[1].Snippet, "2.3k MRR")

	for _, src := range res.Sources {
		assert.Equal(t, "Episode 42 transcript", src.Title)
		assert.True(t, strings.HasPrefix(src.URL, srv.URL+"#block-"))
		assert.Equal(t, domain.StageIDTranscripts, src.StageID)
	}
	assert.Contains(t, res.Summary, "2 money-bearing transcript excerpts")
}

func TestTranscriptsHonorsLimit(t *testing.T) {
	srv := transcriptServer(t)

	tr := providers.NewTranscripts(providers.TranscriptsConfig{Feeds: []string{srv.URL}}, logger.NewNop())
	res, err := tr.Run(context.Background(), providers.Query{Text: "AI agents earning money", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Sources, 1)
}

func TestTranscriptsSnippetTruncationKeepsRunesIntact(t *testing.T) {
	// 33-byte ASCII lead followed by two-byte runes, so the byte-length cap
	// lands on the middle of a rune unless truncation backs up to a rune
	// boundary.
	block := "The agents banked $500 this week." + strings.Repeat("é", 150)
	page := fmt.Sprintf(
		"<html><head><title>Long episode</title></head><body><p>%s</p></body></html>", block)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	tr := providers.NewTranscripts(providers.TranscriptsConfig{Feeds: []string{srv.URL}}, logger.NewNop())
	res, err := tr.Run(context.Background(), providers.Query{Text: "AI agents earning money"})
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)

	snippet := res.Sources[0].Snippet
	assert.True(t, utf8.ValidString(snippet))
	assert.Less(t, len(snippet), len(block))
	assert.True(t, strings.HasPrefix(block, snippet))
	assert.True(t, strings.HasSuffix(snippet, "é"))
}

func TestTranscriptsAllFeedsFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	tr := providers.NewTranscripts(providers.TranscriptsConfig{Feeds: []string{srv.URL}}, logger.NewNop())
	_, err := tr.Run(context.Background(), providers.Query{Text: "agents earning"})
	assert.ErrorContains(t, err, "transcript feeds failed")
}

func TestTranscriptsPartialFeedFailureTolerated(t *testing.T) {
	good := transcriptServer(t)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer bad.Close()

	tr := providers.NewTranscripts(providers.TranscriptsConfig{
		Feeds: []string{bad.URL, good.URL},
	}, logger.NewNop())
	res, err := tr.Run(context.Background(), providers.Query{Text: "AI agents earning money"})
	require.NoError(t, err)
	assert.Len(t, res.Sources, 2)
	assert.Contains(t, res.Summary, "from 1 feeds")
}
