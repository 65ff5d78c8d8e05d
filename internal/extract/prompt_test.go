package extract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/extract"
)

func promptRequest(mode domain.RunMode) extract.Request {
	return extract.Request{
		Sources: []domain.SourceRecord{
			{Title: "First source", URL: "https://a.example.com", Date: "2026-08-10", Snippet: "earned $500"},
			{Title: "Second source", URL: "https://b.example.com"},
		},
		Summary:  "  social findings here  ",
		MaxItems: 10,
		Mode:     mode,
	}
}

func TestBuildPromptStrict(t *testing.T) {
	prompt := extract.BuildPrompt(promptRequest(domain.ModeStrict))

	assert.Contains(t, prompt, "extract up to 10 case studies")
	assert.Contains(t, prompt, "Strict mode rules:")
	assert.NotContains(t, prompt, "Speculative mode rules:")

	assert.Contains(t, prompt, "1. First source\n   url: https://a.example.com\n   date: 2026-08-10\n   snippet: earned $500\n")
	assert.Contains(t, prompt, "2. Second source\n   url: https://b.example.com\n")
	// Blank optional fields are omitted entirely.
	assert.NotContains(t, prompt, "date: \n")

	assert.Contains(t, prompt, "Research summary (earlier sections are higher confidence):\nsocial findings here")
	assert.True(t, strings.HasSuffix(prompt, "Respond with ONLY the JSON array. No markdown fences, no commentary."))
}

func TestBuildPromptSpeculative(t *testing.T) {
	prompt := extract.BuildPrompt(promptRequest(domain.ModeSpeculative))

	assert.Contains(t, prompt, "Speculative mode rules:")
	assert.NotContains(t, prompt, "Strict mode rules:")
}

func TestBuildPromptFallbackDate(t *testing.T) {
	req := promptRequest(domain.ModeStrict)
	req.FallbackDate = "2026-08-27"
	prompt := extract.BuildPrompt(req)

	assert.Contains(t, prompt, "When a source has no date, assume 2026-08-27.")
}

func TestBuildPromptOmitsEmptySummary(t *testing.T) {
	req := promptRequest(domain.ModeStrict)
	req.Summary = "   "
	prompt := extract.BuildPrompt(req)

	assert.NotContains(t, prompt, "Research summary")
}
