package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/retry"
)

// SocialConfig configures the synchronous native-handle search adapter.
type SocialConfig struct {
	BaseURL string        `yaml:"base_url" env:"SOCIAL_SEARCH_BASE_URL"`
	APIKey  string        `yaml:"api_key"  env:"SOCIAL_SEARCH_API_KEY"`
	Timeout time.Duration `yaml:"timeout"`
}

// Social runs a native search over social handles and posts. Its results
// are treated as handle-sourced downstream: Tier-2 URLs it returns are
// auto-corroborated by the validator.
type Social struct {
	cfg    SocialConfig
	client *http.Client
	retry  retry.Config
	log    logger.Logger
}

// NewSocial creates the social-search adapter.
func NewSocial(cfg SocialConfig, log logger.Logger) *Social {
	return &Social{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		retry:  retry.DefaultConfig(),
		log:    log,
	}
}

// ID returns the stage identifier for this provider.
func (s *Social) ID() string { return domain.StageIDSocial }

type socialRequest struct {
	Query      string `json:"query"`
	WithinDays int    `json:"within_days,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Sources    string `json:"sources"`
}

type socialResponse struct {
	Results []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
		Snippet     string `json:"snippet"`
	} `json:"results"`
	Summary string `json:"summary"`
}

// Run executes one synchronous search and normalizes the hits.
func (s *Social) Run(ctx context.Context, q Query) (StageResult, error) {
	body, err := json.Marshal(socialRequest{
		Query:      q.Text,
		WithinDays: q.WithinDays,
		Limit:      q.Limit,
		Sources:    "handles",
	})
	if err != nil {
		return StageResult{}, fmt.Errorf("encode search request: %w", err)
	}

	var parsed socialResponse
	err = retry.Do(ctx, s.retry, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v1/search", bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

		resp, doErr := s.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		if stErr := checkStatus(resp); stErr != nil {
			return stErr
		}
		parsed = socialResponse{}
		return json.NewDecoder(resp.Body).Decode(&parsed)
	})
	if err != nil {
		return StageResult{}, fmt.Errorf("social search: %w", err)
	}

	result := StageResult{Summary: parsed.Summary}
	for _, hit := range parsed.Results {
		if hit.URL == "" {
			continue
		}
		result.Sources = append(result.Sources, domain.SourceRecord{
			Title:   hit.Title,
			URL:     hit.URL,
			Date:    hit.PublishedAt,
			Snippet: hit.Snippet,
			StageID: s.ID(),
		})
	}

	s.log.Debug("social search completed",
		zap.Int("hits", len(result.Sources)),
	)
	return result, nil
}
