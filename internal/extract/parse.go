package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
)

// ParseCandidates decodes the model's reply into candidates. The reply is
// untrusted: markdown fences and surrounding prose are tolerated, and
// items that fail to decode are skipped rather than failing the batch.
func ParseCandidates(raw string) ([]domain.Candidate, error) {
	body := extractJSONArray(raw)
	if body == "" {
		return nil, errors.New("reply contains no JSON array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("decode candidate array: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		var c domain.Candidate
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// extractJSONArray strips code fences and returns the outermost bracketed
// array, or "" when none is present.
func extractJSONArray(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
