package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/retry"
)

// DeepResearchConfig configures the asynchronous research adapter.
type DeepResearchConfig struct {
	BaseURL string        `yaml:"base_url" env:"DEEP_RESEARCH_BASE_URL"`
	APIKey  string        `yaml:"api_key"  env:"DEEP_RESEARCH_API_KEY"`
	Timeout time.Duration `yaml:"timeout"`
}

// DeepResearch starts a long-running remote research job and discovers
// completion by polling. A single invocation is not expected to outlive
// the remote job; the engine persists the handle between calls.
type DeepResearch struct {
	cfg    DeepResearchConfig
	client *http.Client
	retry  retry.Config
	log    logger.Logger
}

// NewDeepResearch creates the deep-research adapter.
func NewDeepResearch(cfg DeepResearchConfig, log logger.Logger) *DeepResearch {
	return &DeepResearch{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		retry:  retry.DefaultConfig(),
		log:    log,
	}
}

// ID returns the stage identifier for this provider.
func (d *DeepResearch) ID() string { return domain.StageIDDeepResearch }

type researchStartRequest struct {
	Query      string `json:"query"`
	WithinDays int    `json:"within_days,omitempty"`
	MaxSources int    `json:"max_sources,omitempty"`
}

type researchStatusResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Summary string `json:"summary"`
	Error   string `json:"error"`
	Sources []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Date    string `json:"date"`
		Excerpt string `json:"excerpt"`
	} `json:"sources"`
}

// Start submits the remote research job and returns its handle.
func (d *DeepResearch) Start(ctx context.Context, q Query) (string, error) {
	body, err := json.Marshal(researchStartRequest{
		Query:      q.Text,
		WithinDays: q.WithinDays,
		MaxSources: q.Limit,
	})
	if err != nil {
		return "", fmt.Errorf("encode research request: %w", err)
	}

	var parsed researchStatusResponse
	err = retry.Do(ctx, d.retry, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BaseURL+"/v1/research", bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)

		resp, doErr := d.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		if stErr := checkStatus(resp); stErr != nil {
			return stErr
		}
		parsed = researchStatusResponse{}
		return json.NewDecoder(resp.Body).Decode(&parsed)
	})
	if err != nil {
		return "", fmt.Errorf("start deep research: %w", err)
	}
	if parsed.ID == "" {
		return "", errors.New("start deep research: response carries no job id")
	}

	d.log.Debug("deep research started", zap.String("handle", parsed.ID))
	return parsed.ID, nil
}

// Poll queries the remote job once. It returns (nil, nil) while the job is
// still running, the result when it completed, or an error when it failed.
func (d *DeepResearch) Poll(ctx context.Context, handle string) (*StageResult, error) {
	if handle == "" {
		return nil, errors.New("poll deep research: empty handle")
	}

	var parsed researchStatusResponse
	err := retry.Do(ctx, d.retry, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.BaseURL+"/v1/research/"+handle, nil)
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)

		resp, doErr := d.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		if stErr := checkStatus(resp); stErr != nil {
			return stErr
		}
		parsed = researchStatusResponse{}
		return json.NewDecoder(resp.Body).Decode(&parsed)
	})
	if err != nil {
		return nil, fmt.Errorf("poll deep research %s: %w", handle, err)
	}

	switch parsed.Status {
	case "completed":
		result := &StageResult{Summary: parsed.Summary}
		for _, src := range parsed.Sources {
			if src.URL == "" {
				continue
			}
			result.Sources = append(result.Sources, domain.SourceRecord{
				Title:   src.Title,
				URL:     src.URL,
				Date:    src.Date,
				Snippet: src.Excerpt,
				StageID: d.ID(),
			})
		}
		return result, nil
	case "failed":
		msg := parsed.Error
		if msg == "" {
			msg = "remote job failed without detail"
		}
		return nil, fmt.Errorf("deep research %s: %s", handle, msg)
	case "queued", "in_progress", "running":
		return nil, nil
	default:
		return nil, fmt.Errorf("deep research %s: unknown status %q", handle, parsed.Status)
	}
}
