package config

import (
	"fmt"
	"time"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/coordination"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/extract"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/index"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research/providers"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/runlog"
)

// Storage backends.
const (
	StorageFS  = "fs"
	StorageGCS = "gcs"
)

// StorageConfig selects and configures the blob store backend.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND"`
	// Dir is the root directory for the fs backend.
	Dir string `yaml:"dir" env:"STORAGE_DIR"`
	// Bucket and Prefix configure the gcs backend.
	Bucket string `yaml:"bucket" env:"STORAGE_BUCKET"`
	Prefix string `yaml:"prefix" env:"STORAGE_PREFIX"`
}

// SetDefaults applies default values to the config if not set.
func (c *StorageConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = StorageFS
	}
	if c.Backend == StorageFS && c.Dir == "" {
		c.Dir = "data"
	}
}

// QueryConfig holds the default research query parameters.
type QueryConfig struct {
	Text        string `yaml:"text" env:"RESEARCH_QUERY"`
	WithinDays  int    `yaml:"within_days" env:"RESEARCH_WITHIN_DAYS"`
	TargetCount int    `yaml:"target_count" env:"RESEARCH_TARGET_COUNT"`
	SearchLimit int    `yaml:"search_limit" env:"RESEARCH_SEARCH_LIMIT"`
	Mode        string `yaml:"mode" env:"RESEARCH_MODE"`
}

// SetDefaults applies default values to the config if not set.
func (c *QueryConfig) SetDefaults() {
	if c.Text == "" {
		c.Text = "AI agents autonomously earning money case studies"
	}
	if c.WithinDays <= 0 {
		c.WithinDays = 7
	}
	if c.TargetCount <= 0 {
		c.TargetCount = 10
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 25
	}
	if c.Mode == "" {
		c.Mode = "strict"
	}
}

// ProvidersConfig groups the research stage adapters.
type ProvidersConfig struct {
	Social       providers.SocialConfig       `yaml:"social"`
	DeepResearch providers.DeepResearchConfig `yaml:"deep_research"`
	Transcripts  providers.TranscriptsConfig  `yaml:"transcripts"`
}

// ServerConfig holds the operator API settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SetDefaults applies default values to the config if not set.
func (c *ServerConfig) SetDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// SchedulerConfig holds the cron daemon settings.
type SchedulerConfig struct {
	// Cron is the schedule expression for discovery cycles.
	Cron string `yaml:"cron" env:"SCHEDULER_CRON"`
	// AttemptDelay is the wait between finalize attempts within one cycle.
	AttemptDelay time.Duration `yaml:"attempt_delay"`
}

// SetDefaults applies default values to the config if not set.
func (c *SchedulerConfig) SetDefaults() {
	if c.Cron == "" {
		c.Cron = "0 6 * * *"
	}
	if c.AttemptDelay <= 0 {
		c.AttemptDelay = 30 * time.Second
	}
}

// ValidationConfig points at the optional trust policy override file.
type ValidationConfig struct {
	PolicyPath string `yaml:"policy_path" env:"TRUST_POLICY_PATH"`
}

// Config is the full service configuration.
type Config struct {
	Logger        logger.Config       `yaml:"logger"`
	Storage       StorageConfig       `yaml:"storage"`
	Research      research.Config     `yaml:"research"`
	Query         QueryConfig         `yaml:"query"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Extract       extract.Config      `yaml:"extract"`
	Validation    ValidationConfig    `yaml:"validation"`
	Database      runlog.Config       `yaml:"database"`
	Elasticsearch index.Config        `yaml:"elasticsearch"`
	Redis         coordination.Config `yaml:"redis"`
	Server        ServerConfig        `yaml:"server"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
}

// SetDefaults applies default values to every section.
func (c *Config) SetDefaults() {
	c.Logger.SetDefaults()
	c.Storage.SetDefaults()
	c.Research.SetDefaults()
	c.Query.SetDefaults()
	c.Extract.SetDefaults()
	c.Database.SetDefaults()
	c.Elasticsearch.SetDefaults()
	c.Redis.SetDefaults()
	c.Server.SetDefaults()
	c.Scheduler.SetDefaults()
}

// Validate checks the config for required values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageFS:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the fs backend")
		}
	case StorageGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Query.Mode != "strict" && c.Query.Mode != "speculative" {
		return fmt.Errorf("query.mode must be strict or speculative, got %q", c.Query.Mode)
	}
	if c.Extract.APIKey == "" {
		return fmt.Errorf("extract.api_key (ANTHROPIC_API_KEY) is required")
	}
	return nil
}

// LoadService loads, defaults and validates the full service config.
func LoadService(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path, func(c *Config) { c.SetDefaults() })
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
