package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research/providers"
)

func TestSocialRun(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/search", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"summary": "two hits",
			"results": []map[string]string{
				{"title": "Post A", "url": "https://x.com/a/status/1", "published_at": "2026-08-10", "snippet": "made $500"},
				{"title": "No URL", "url": ""},
				{"title": "Post B", "url": "https://x.com/b/status/2"},
			},
		})
	}))
	defer srv.Close()

	s := providers.NewSocial(providers.SocialConfig{BaseURL: srv.URL, APIKey: "sk-test"}, logger.NewNop())
	res, err := s.Run(context.Background(), providers.Query{Text: "agents earning money", WithinDays: 7, Limit: 25})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "agents earning money", gotBody["query"])
	assert.Equal(t, float64(7), gotBody["within_days"])
	assert.Equal(t, "handles", gotBody["sources"])

	assert.Equal(t, "two hits", res.Summary)
	require.Len(t, res.Sources, 2)
	assert.Equal(t, "https://x.com/a/status/1", res.Sources[0].URL)
	assert.Equal(t, "2026-08-10", res.Sources[0].Date)
	assert.Equal(t, domain.StageIDSocial, res.Sources[0].StageID)
	assert.Equal(t, "https://x.com/b/status/2", res.Sources[1].URL)
}

func TestSocialRunClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	s := providers.NewSocial(providers.SocialConfig{BaseURL: srv.URL}, logger.NewNop())
	_, err := s.Run(context.Background(), providers.Query{Text: "q"})
	assert.Error(t, err)
}
