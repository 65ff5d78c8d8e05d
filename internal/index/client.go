// Package index mirrors published case studies into Elasticsearch for
// operator search. Indexing is best effort: the dataset store remains the
// source of truth and indexing failures never fail a publish.
package index

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/retry"
)

// Config holds Elasticsearch connection settings.
type Config struct {
	URL         string        `yaml:"url" env:"ELASTICSEARCH_URL"`
	APIKey      string        `yaml:"api_key" env:"ELASTICSEARCH_API_KEY"`
	Username    string        `yaml:"username" env:"ELASTICSEARCH_USERNAME"`
	Password    string        `yaml:"password" env:"ELASTICSEARCH_PASSWORD"`
	Index       string        `yaml:"index" env:"ELASTICSEARCH_INDEX"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Index == "" {
		c.Index = "case_studies"
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 5 * time.Second
	}
}

// Enabled reports whether Elasticsearch was configured at all.
func (c *Config) Enabled() bool {
	return c.URL != ""
}

// NewClient creates an Elasticsearch client and verifies the connection
// with retry.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()

	clientConfig := es.Config{
		Addresses: []string{normalizeURL(cfg.URL)},
	}
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	if err := retry.DoWithDefaults(ctx, func() error {
		return ping(ctx, client, cfg.PingTimeout)
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}

	log.Info("Elasticsearch connection established")
	return client, nil
}

func normalizeURL(url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

func ping(ctx context.Context, client *es.Client, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := client.Ping(client.Ping.WithContext(pingCtx))
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("ping returned error [%s]: %s", res.Status(), string(body))
	}
	return nil
}
