package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/validate"
)

func TestClassify(t *testing.T) {
	p := validate.DefaultPolicy()

	tests := []struct {
		url  string
		want validate.Tier
	}{
		{"https://www.youtube.com/watch?v=abc", validate.Tier1},
		{"https://github.com/someone/agent", validate.Tier1},
		{"https://x.com/someone/status/1", validate.Tier2},
		{"https://old.reddit.com/r/sideproject", validate.Tier2},
		{"https://www.tiktok.com/@someone", validate.Tier3},
		{"https://t.me/channel", validate.Tier3},
		{"https://example.com/blog/post", validate.TierNone},
		{"not a url", validate.TierNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Classify(tt.url), tt.url)
	}
}

func TestClassifyDoesNotMatchSubstringDomains(t *testing.T) {
	p := validate.DefaultPolicy()
	// A domain merely containing a listed name is not that domain.
	assert.Equal(t, validate.TierNone, p.Classify("https://notyoutube.com/v"))
	assert.Equal(t, validate.TierNone, p.Classify("https://x.community/post"))
}

func TestIsBlog(t *testing.T) {
	p := validate.DefaultPolicy()
	assert.True(t, p.IsBlog("https://someone.substack.com/p/my-agent"))
	assert.True(t, p.IsBlog("https://medium.com/@dev/post"))
	assert.False(t, p.IsBlog("https://example.com/post"))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, validate.IsHTTPURL("https://example.com/x"))
	assert.True(t, validate.IsHTTPURL("http://example.com"))
	assert.False(t, validate.IsHTTPURL("ftp://example.com"))
	assert.False(t, validate.IsHTTPURL("example.com/x"))
	assert.False(t, validate.IsHTTPURL(""))
}

func TestSecondLevelDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/a", "example"},
		{"https://blog.example.com/a", "example"},
		{"https://example.co.uk/a", "example"},
		{"https://www.shop.example.com.au", "example"},
		{"https://x.com/s", "x"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validate.SecondLevelDomain(tt.url), tt.url)
	}
}
