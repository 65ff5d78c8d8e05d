// Package providers contains the research-stage adapters. Each adapter
// speaks to one remote search or research service and normalizes its
// output into source records; the pipeline never sees provider wire
// formats.
package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
)

// Query is the research request every stage receives.
type Query struct {
	Text       string
	WithinDays int
	Limit      int
}

// StageResult is the normalized output of one completed stage.
type StageResult struct {
	Sources []domain.SourceRecord
	Summary string
}

// SyncProvider runs to completion within the calling invocation.
type SyncProvider interface {
	ID() string
	Run(ctx context.Context, q Query) (StageResult, error)
}

// AsyncProvider starts a remote job and reports completion via polling.
// Poll returns (nil, nil) while the remote job is still running.
type AsyncProvider interface {
	ID() string
	Start(ctx context.Context, q Query) (string, error)
	Poll(ctx context.Context, handle string) (*StageResult, error)
}

// Shared HTTP client defaults for provider adapters.
const (
	defaultTimeout             = 60 * time.Second
	defaultMaxIdleConnsPerHost = 10
	maxErrorBodyBytes          = 512
)

// newHTTPClient builds the provider HTTP client with standard pooling.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		},
	}
}

// checkStatus converts a non-2xx response into an error carrying the
// status and a bounded slice of the body for diagnostics.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
}
