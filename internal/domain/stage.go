package domain

import "time"

// StageStatus represents the lifecycle state of a single research stage.
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
	StageFailed     StageStatus = "failed"
)

// Terminal reports whether no further transitions are possible for the status.
func (s StageStatus) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// Provider identifiers for the stages of one research run.
const (
	ProviderSocial       = "social"
	ProviderDeepResearch = "deepresearch"
	ProviderTranscripts  = "transcripts"
)

// Stage identifiers. These double as the aggregation priority labels.
const (
	StageIDSocial       = "social-search"
	StageIDDeepResearch = "deep-research"
	StageIDTranscripts  = "transcripts"
)

// Stage is one provider-specific research task within a Job.
// Invariant: Sources is non-nil iff Status == StageCompleted.
type Stage struct {
	ID            string         `json:"id"`
	Provider      string         `json:"provider"`
	Status        StageStatus    `json:"status"`
	RequestHandle string         `json:"request_handle,omitempty"`
	Query         string         `json:"query"`
	Sources       []SourceRecord `json:"sources,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	Error         string         `json:"error,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

// Complete marks the stage completed with its results.
func (s *Stage) Complete(sources []SourceRecord, summary string, at time.Time) {
	if sources == nil {
		sources = []SourceRecord{}
	}
	s.Status = StageCompleted
	s.Sources = sources
	s.Summary = summary
	s.Error = ""
	s.CompletedAt = &at
}

// Fail marks the stage failed with the captured error text.
func (s *Stage) Fail(msg string, at time.Time) {
	s.Status = StageFailed
	s.Sources = nil
	s.Error = msg
	s.CompletedAt = &at
}
