package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/validate"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AgentGPT Side Hustle", "agentgpt-side-hustle"},
		{"Bot earns $2,300 MRR!", "bot-earns-2-300-mrr"},
		{"  spaced   out  ", "spaced-out"},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validate.Slugify(tt.in))
	}
}

func TestAssignID(t *testing.T) {
	existing := map[string]struct{}{}

	id := validate.AssignID("2026-08-01", "Trading Bot ($500)", existing)
	assert.Equal(t, "2026-08-01-trading-bot-500", id)
	assert.Contains(t, existing, id)

	// Same title on the same date gets a numeric suffix.
	id2 := validate.AssignID("2026-08-01", "Trading Bot ($500)", existing)
	assert.Equal(t, "2026-08-01-trading-bot-500-2", id2)

	id3 := validate.AssignID("2026-08-01", "Trading Bot ($500)", existing)
	assert.Equal(t, "2026-08-01-trading-bot-500-3", id3)
}

func TestAssignIDNoDate(t *testing.T) {
	existing := map[string]struct{}{}
	assert.Equal(t, "some-agent", validate.AssignID("", "Some Agent", existing))
}

func TestAssignIDEmptyTitle(t *testing.T) {
	existing := map[string]struct{}{}
	assert.Equal(t, "2026-01-01-case", validate.AssignID("2026-01-01", "!!!", existing))
}
