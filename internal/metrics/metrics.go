// Package metrics provides in-process counters for pipeline activity.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds the pipeline run counters.
type Metrics struct {
	// RunsStarted is the number of research runs started.
	RunsStarted int64
	// RunsPublished is the number of runs that published a dataset version.
	RunsPublished int64
	// RunsPending is the number of finalize calls that left a run pending.
	RunsPending int64
	// RunsBlocked is the number of runs blocked on attempt budget.
	RunsBlocked int64
	// RunsFailed is the number of pipeline executions that errored.
	RunsFailed int64
	// CandidatesRejected is the total candidates dropped by validation.
	CandidatesRejected int64
	// CaseStudiesAdded is the total case studies merged into the dataset.
	CaseStudiesAdded int64
	// LastPublishedAt is the time of the last successful publish.
	LastPublishedAt time.Time
	// StartTime is when metrics collection began.
	StartTime time.Time
	// mu protects concurrent access to metrics.
	mu sync.Mutex
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// RecordStart counts a started run.
func (m *Metrics) RecordStart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsStarted++
}

// RecordPublish counts a successful publish with its yield.
func (m *Metrics) RecordPublish(added, rejected int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsPublished++
	m.CaseStudiesAdded += int64(added)
	m.CandidatesRejected += int64(rejected)
	m.LastPublishedAt = time.Now()
}

// RecordPending counts a finalize call that left the run pending.
func (m *Metrics) RecordPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsPending++
}

// RecordBlocked counts a run blocked on its attempt budget.
func (m *Metrics) RecordBlocked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsBlocked++
}

// RecordFailure counts a failed pipeline execution.
func (m *Metrics) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsFailed++
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metrics{
		RunsStarted:        m.RunsStarted,
		RunsPublished:      m.RunsPublished,
		RunsPending:        m.RunsPending,
		RunsBlocked:        m.RunsBlocked,
		RunsFailed:         m.RunsFailed,
		CandidatesRejected: m.CandidatesRejected,
		CaseStudiesAdded:   m.CaseStudiesAdded,
		LastPublishedAt:    m.LastPublishedAt,
		StartTime:          m.StartTime,
	}
}
