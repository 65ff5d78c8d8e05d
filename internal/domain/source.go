// Package domain provides the data model shared across the discovery pipeline.
package domain

// SourceRecord is one normalized unit of evidence produced by a research stage.
// Identity is the URL: within one aggregation pass at most one record per URL
// survives, and the record is immutable once its stage completes.
type SourceRecord struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	StageID string `json:"stage_id"`
}

// Candidate is an unvalidated case-study record proposed by the extractor.
// It is untrusted input: only the validator turns it into a CaseStudy.
type Candidate struct {
	Title            string        `json:"title"`
	Date             string        `json:"date,omitempty"`
	Summary          string        `json:"summary"`
	Description      string        `json:"description"`
	ProfitMechanisms []string      `json:"profit_mechanisms,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
	ProofSources     []ProofSource `json:"proof_sources"`
}
