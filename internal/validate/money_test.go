package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/validate"
)

func TestFirstCurrencyToken(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain amount", "the bot made $500 last week", "$500"},
		{"thousands separators", "revenue hit $2,300 MRR by June", "$2,300 MRR"},
		{"magnitude suffix", "now at $10k MRR", "$10k MRR"},
		{"spelled out magnitude", "crossed $5 million in sales", "$5 million"},
		{"range", "earning $1k-$2k per month", "$1k-$2k"},
		{"decimal", "$1.5M ARR", "$1.5M ARR"},
		{"no amount", "it makes money somehow", ""},
		{"bare number", "made 500 sales", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.FirstCurrencyToken(tt.in))
		})
	}
}

func TestShorthandToken(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"k suffix", "grew to 100k in revenue", "100k"},
		{"decimal with qualifier", "sitting at 2.3k MRR", "2.3k MRR"},
		{"uppercase", "1.2M ARR from subscriptions", "1.2M ARR"},
		{"unit lookalike", "ran 5km this morning", ""},
		{"no shorthand", "plenty of users", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.ShorthandToken(tt.in))
		})
	}
}

func TestMentionsFunding(t *testing.T) {
	assert.True(t, validate.MentionsFunding("raised $2M in a seed round"))
	assert.True(t, validate.MentionsFunding("Series B at a $100M valuation"))
	assert.True(t, validate.MentionsFunding("pre-seed backing from angels"))
	assert.True(t, validate.MentionsFunding("currently fundraising"))
	assert.False(t, validate.MentionsFunding("earns $2,000 MRR from subscriptions"))
	assert.False(t, validate.MentionsFunding("praised by users"))
}
