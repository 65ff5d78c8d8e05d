package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/retry"
)

func newTestExtractor(complete func(ctx context.Context, prompt string) (string, error)) *Extractor {
	cfg := Config{APIKey: "test-key"}
	cfg.SetDefaults()
	return &Extractor{
		cfg: cfg,
		log: logger.NewNop(),
		retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			IsRetryable:  retry.DefaultIsRetryable,
		},
		complete: complete,
	}
}

func request() Request {
	return Request{
		Sources:  []domain.SourceRecord{{Title: "t", URL: "https://a.example.com"}},
		MaxItems: 10,
		Mode:     domain.ModeStrict,
	}
}

func TestExtractParsesReply(t *testing.T) {
	var gotPrompt string
	e := newTestExtractor(func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return `[{"title": "Bot ($100)", "summary": "s", "description": "d"}]`, nil
	})

	candidates, err := e.Extract(context.Background(), request())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Bot ($100)", candidates[0].Title)
	assert.Contains(t, gotPrompt, "https://a.example.com")
}

func TestExtractEmptySourcesSkipsModelCall(t *testing.T) {
	called := false
	e := newTestExtractor(func(ctx context.Context, prompt string) (string, error) {
		called = true
		return "[]", nil
	})

	candidates, err := e.Extract(context.Background(), Request{MaxItems: 10})
	require.NoError(t, err)
	assert.Nil(t, candidates)
	assert.False(t, called)
}

func TestExtractRetriesTransientFailures(t *testing.T) {
	calls := 0
	e := newTestExtractor(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("status 529: overloaded, too many requests")
		}
		return "[]", nil
	})

	candidates, err := e.Extract(context.Background(), request())
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 3, calls)
}

func TestExtractPermanentFailureNotRetried(t *testing.T) {
	calls := 0
	e := newTestExtractor(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", errors.New("status 401: invalid api key")
	})

	_, err := e.Extract(context.Background(), request())
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExtractUnparseableReply(t *testing.T) {
	e := newTestExtractor(func(ctx context.Context, prompt string) (string, error) {
		return "I found nothing worth reporting.", nil
	})

	_, err := e.Extract(context.Background(), request())
	assert.Error(t, err)
}
