// Package extract turns aggregated research output into raw case-study
// candidates via an LLM call. The prompt encodes the acceptance policy the
// validator re-enforces server-side; nothing returned here is trusted.
package extract

import (
	"fmt"
	"strings"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
)

// Request carries everything the extractor needs for one run.
type Request struct {
	Sources      []domain.SourceRecord
	Summary      string
	MaxItems     int
	Mode         domain.RunMode
	FallbackDate string
}

const promptHeader = `You are a research analyst cataloging cases of AI agents autonomously earning money.
From the research sources and summary below, extract up to %d case studies as a JSON array.

Each item must be an object with exactly these fields:
  "title": short headline naming the agent/product and the dollar amount earned
  "date": ISO date (YYYY-MM-DD) of the report, or "" if unknown
  "summary": one-sentence summary
  "description": 2-4 sentence description of how the agent earns
  "profit_mechanisms": array of short strings (e.g. "subscriptions", "ad revenue")
  "tags": array of short lowercase tags
  "proof_sources": array of {"label", "url", "kind", "excerpt"} objects

Rules that apply in every mode:
- Only use URLs from the source list below, or a product's own website (kind "website").
- Every proof source excerpt must be a verbatim quote from the material.
- Money RAISED from investors (seed, Series A/B/C, valuations) does not count as earning.
- Do not invent dollar amounts; if no amount is evidenced, skip the case.
`

const strictRules = `Strict mode rules:
- Include a case only when at least one proof source excerpt contains a literal
  dollar amount (like "$2,300 MRR").
- Prefer two or more independent proof sources per case.
`

const speculativeRules = `Speculative mode rules:
- A case may rest on a dollar amount stated in the reporting text (like "100k ARR")
  even when no excerpt carries a literal "$" figure, but say so plainly in the summary.
- Still include every proof source you have; corroboration raises confidence.
`

const promptFooter = `Respond with ONLY the JSON array. No markdown fences, no commentary.`

// BuildPrompt renders the extraction prompt for one run. The rule text is
// mode-dependent because the validator applies the matching policy later.
func BuildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, promptHeader, req.MaxItems)
	b.WriteString("\n")
	if req.Mode == domain.ModeSpeculative {
		b.WriteString(speculativeRules)
	} else {
		b.WriteString(strictRules)
	}
	if req.FallbackDate != "" {
		fmt.Fprintf(&b, "\nWhen a source has no date, assume %s.\n", req.FallbackDate)
	}

	b.WriteString("\nSources:\n")
	for i, src := range req.Sources {
		fmt.Fprintf(&b, "%d. %s\n   url: %s\n", i+1, src.Title, src.URL)
		if src.Date != "" {
			fmt.Fprintf(&b, "   date: %s\n", src.Date)
		}
		if src.Snippet != "" {
			fmt.Fprintf(&b, "   snippet: %s\n", src.Snippet)
		}
	}

	if summary := strings.TrimSpace(req.Summary); summary != "" {
		b.WriteString("\nResearch summary (earlier sections are higher confidence):\n")
		b.WriteString(summary)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptFooter)
	return b.String()
}
