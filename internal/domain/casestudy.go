package domain

import (
	"sort"
	"time"
)

// ProofSource is one piece of evidence attached to a case study.
// Kind is an open tag (website, tweet, dashboard, video, other) used only
// for display and policy tiering.
type ProofSource struct {
	Label   string `json:"label"`
	URL     string `json:"url"`
	Kind    string `json:"kind,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}

// CaseStudyStatus is the evidence level assigned by the validator.
type CaseStudyStatus string

const (
	StatusVerified    CaseStudyStatus = "verified"
	StatusSpeculative CaseStudyStatus = "speculative"
)

// CaseStudy is a validated, immutable catalog entry. It is created once by
// the validator and never edited in place; corrections happen by adding a
// new entry or replacing the snapshot.
type CaseStudy struct {
	ID               string          `json:"id"`
	Date             string          `json:"date"`
	Title            string          `json:"title"`
	Summary          string          `json:"summary"`
	Description      string          `json:"description"`
	ProfitMechanisms []string        `json:"profit_mechanisms,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	ProofSources     []ProofSource   `json:"proof_sources"`
	Status           CaseStudyStatus `json:"status"`
}

// Dataset is the published set of case studies, ordered by date descending
// and unique by id, by proof-source URL, and by derived product name.
type Dataset []CaseStudy

// SortByDateDesc orders the dataset newest-first. Dates are ISO strings, so
// lexicographic comparison matches chronological order.
func (d Dataset) SortByDateDesc() {
	sort.SliceStable(d, func(i, j int) bool {
		return d[i].Date > d[j].Date
	})
}

// IDs returns the set of case-study ids in the dataset.
func (d Dataset) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(d))
	for i := range d {
		ids[d[i].ID] = struct{}{}
	}
	return ids
}

// ProofURLs returns the set of all proof-source URLs across the dataset,
// used for cross-run deduplication.
func (d Dataset) ProofURLs() map[string]struct{} {
	urls := make(map[string]struct{})
	for i := range d {
		for _, ps := range d[i].ProofSources {
			urls[ps.URL] = struct{}{}
		}
	}
	return urls
}

// Manifest is the single mutable pointer naming the current snapshot.
// Readers fetch the manifest first, then the snapshot it references, so
// they never observe a half-written dataset.
type Manifest struct {
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updated_at"`
	RunID       string    `json:"run_id"`
	Count       int       `json:"count"`
	SnapshotURL string    `json:"snapshot_url"`
	AddedIDs    []string  `json:"added_ids"`
}
