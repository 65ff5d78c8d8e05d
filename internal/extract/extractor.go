package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/retry"
)

// Config configures the extraction model call.
type Config struct {
	APIKey    string        `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	Model     string        `yaml:"model" env:"EXTRACT_MODEL"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Model == "" {
		c.Model = string(anthropic.ModelClaudeSonnet4_0)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
}

// Extractor calls the model with the extraction prompt and parses the
// reply into candidates.
type Extractor struct {
	cfg   Config
	log   logger.Logger
	retry retry.Config

	// complete performs one model round trip. Swapped out in tests.
	complete func(ctx context.Context, prompt string) (string, error)
}

// New creates an extractor backed by the Anthropic messages API.
func New(cfg Config, log logger.Logger) *Extractor {
	cfg.SetDefaults()
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	e := &Extractor{cfg: cfg, log: log, retry: retry.DefaultConfig()}
	e.complete = func(ctx context.Context, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(cfg.Model),
			MaxTokens: int64(cfg.MaxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return "", fmt.Errorf("messages call: %w", err)
		}

		var b strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		return b.String(), nil
	}
	return e
}

// Extract runs one extraction round trip. An empty source list yields no
// candidates without a model call.
func (e *Extractor) Extract(ctx context.Context, req Request) ([]domain.Candidate, error) {
	if len(req.Sources) == 0 {
		return nil, nil
	}

	prompt := BuildPrompt(req)

	var reply string
	err := retry.Do(ctx, e.retry, func() error {
		var callErr error
		reply, callErr = e.complete(ctx, prompt)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("extract candidates: %w", err)
	}

	candidates, err := ParseCandidates(reply)
	if err != nil {
		return nil, fmt.Errorf("extract candidates: %w", err)
	}

	e.log.Info("candidates extracted",
		zap.Int("sources", len(req.Sources)),
		zap.Int("candidates", len(candidates)),
		zap.String("mode", string(req.Mode)),
	)
	return candidates, nil
}
