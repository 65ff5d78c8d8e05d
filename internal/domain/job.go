package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RunMode selects the acceptance policy for a discovery run.
type RunMode string

const (
	// ModeStrict accepts only candidates backed by a currency-bearing excerpt.
	ModeStrict RunMode = "strict"
	// ModeSpeculative also accepts candidates whose monetary evidence is
	// textual shorthand, subject to extra corroboration.
	ModeSpeculative RunMode = "speculative"
)

// CurrentJobSchema is the schema generation written by this code.
const CurrentJobSchema = 2

// Job is the full set of research stages for one scheduled discovery run.
// It is persisted between invocations so polling can resume after the
// process that started the run has exited.
type Job struct {
	SchemaVersion    int        `json:"schema_version"`
	RunID            string     `json:"run_id"`
	CreatedAt        time.Time  `json:"created_at"`
	FinalizeAttempts int        `json:"finalize_attempts"`
	LastFinalizeAt   *time.Time `json:"last_finalize_at,omitempty"`
	WithinDays       int        `json:"within_days"`
	TargetCount      int        `json:"target_count"`
	SearchLimit      int        `json:"search_limit"`
	Mode             RunMode    `json:"mode"`
	Stages           []Stage    `json:"stages"`
}

// AllTerminal reports whether every stage reached a terminal state.
func (j *Job) AllTerminal() bool {
	for i := range j.Stages {
		if !j.Stages[i].Status.Terminal() {
			return false
		}
	}
	return true
}

// StageByID returns the stage with the given id, or nil.
func (j *Job) StageByID(id string) *Stage {
	for i := range j.Stages {
		if j.Stages[i].ID == id {
			return &j.Stages[i]
		}
	}
	return nil
}

// jobV1 is the first persisted job generation: a single implicit
// deep-research stage flattened into the job record itself.
type jobV1 struct {
	RunID            string         `json:"run_id"`
	CreatedAt        time.Time      `json:"created_at"`
	FinalizeAttempts int            `json:"finalize_attempts"`
	LastFinalizeAt   *time.Time     `json:"last_finalize_at,omitempty"`
	WithinDays       int            `json:"within_days"`
	TargetCount      int            `json:"target_count"`
	SearchLimit      int            `json:"search_limit"`
	Mode             RunMode        `json:"mode"`
	RequestID        string         `json:"request_id"`
	Query            string         `json:"query"`
	Status           StageStatus    `json:"status"`
	Sources          []SourceRecord `json:"sources,omitempty"`
	Summary          string         `json:"summary,omitempty"`
	Error            string         `json:"error,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

// DecodeJob parses a persisted job of either schema generation and returns
// it in the current shape. The upgrade happens once here so every caller
// operates on the explicit stage list.
func DecodeJob(data []byte) (*Job, error) {
	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}

	if probe.SchemaVersion >= CurrentJobSchema {
		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			return nil, fmt.Errorf("decode job: %w", err)
		}
		return &job, nil
	}

	var old jobV1
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("decode legacy job: %w", err)
	}
	return upgradeJob(&old), nil
}

// upgradeJob folds the implicit V1 deep-research stage into an explicit
// stage list.
func upgradeJob(old *jobV1) *Job {
	status := old.Status
	if status == "" {
		status = StagePending
	}
	stage := Stage{
		ID:            StageIDDeepResearch,
		Provider:      ProviderDeepResearch,
		Status:        status,
		RequestHandle: old.RequestID,
		Query:         old.Query,
		Summary:       old.Summary,
		Error:         old.Error,
		CompletedAt:   old.CompletedAt,
	}
	if status == StageCompleted {
		stage.Sources = old.Sources
		if stage.Sources == nil {
			stage.Sources = []SourceRecord{}
		}
	}
	return &Job{
		SchemaVersion:    CurrentJobSchema,
		RunID:            old.RunID,
		CreatedAt:        old.CreatedAt,
		FinalizeAttempts: old.FinalizeAttempts,
		LastFinalizeAt:   old.LastFinalizeAt,
		WithinDays:       old.WithinDays,
		TargetCount:      old.TargetCount,
		SearchLimit:      old.SearchLimit,
		Mode:             old.Mode,
		Stages:           []Stage{stage},
	}
}
