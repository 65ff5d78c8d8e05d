// Package dataset merges accepted case studies into the published dataset
// and publishes versioned snapshots behind a mutable manifest pointer.
package dataset

import (
	"strings"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
)

// productVerbs are the title verbs the product-name heuristic cuts before.
var productVerbs = []string{
	" earns", " makes", " hits", " reaches", " generates",
	" crosses", " surpasses", " passes", " nets", " brings",
}

const productTokenWords = 4

// ProductToken derives a coarse product-name token from a case-study
// title: text before a colon, else text before a known verb, else the
// first few words. It is a heuristic and can both over- and under-merge;
// the tests pin its behavior rather than trusting it as precise.
func ProductToken(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if i := strings.Index(t, ":"); i > 0 {
		t = t[:i]
	} else {
		cut := len(t)
		for _, verb := range productVerbs {
			if i := strings.Index(t, verb); i > 0 && i < cut {
				cut = i
			}
		}
		t = t[:cut]
	}

	words := strings.Fields(t)
	if len(words) > productTokenWords {
		words = words[:productTokenWords]
	}
	return strings.Join(words, " ")
}

// Merge folds accepted candidates into the existing dataset. Candidates
// whose proof URLs or derived product token already appear in the dataset
// are dropped (cross-run dedup and near-duplicate-product suppression).
// Returns the merged dataset, newest first, and the ids actually added.
func Merge(existing domain.Dataset, accepted []domain.CaseStudy) (domain.Dataset, []string) {
	seenURLs := existing.ProofURLs()
	seenProducts := make(map[string]struct{}, len(existing))
	for i := range existing {
		seenProducts[ProductToken(existing[i].Title)] = struct{}{}
	}

	merged := make(domain.Dataset, len(existing), len(existing)+len(accepted))
	copy(merged, existing)

	var addedIDs []string
	for _, cs := range accepted {
		if hasSeenURL(cs.ProofSources, seenURLs) {
			continue
		}
		if token := ProductToken(cs.Title); token != "" {
			if _, dup := seenProducts[token]; dup {
				continue
			}
			seenProducts[token] = struct{}{}
		}
		for _, ps := range cs.ProofSources {
			seenURLs[ps.URL] = struct{}{}
		}
		merged = append(merged, cs)
		addedIDs = append(addedIDs, cs.ID)
	}

	merged.SortByDateDesc()
	return merged, addedIDs
}

func hasSeenURL(sources []domain.ProofSource, seen map[string]struct{}) bool {
	for _, ps := range sources {
		if _, dup := seen[ps.URL]; dup {
			return true
		}
	}
	return false
}
