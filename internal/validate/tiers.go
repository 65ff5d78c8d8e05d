// Package validate implements the deterministic candidate-validation policy:
// tiered source trust, monetary-evidence extraction, corroboration rules,
// status assignment, and id generation. It is the only trust boundary
// between extractor output and the published dataset.
package validate

import (
	"net/url"
	"strings"
)

// Tier is the trust level of a proof-source domain.
type Tier int

const (
	// TierNone is any domain outside the fixed lists: provisionally trusted
	// as a product reference.
	TierNone Tier = iota
	// Tier1 domains are always allowed.
	Tier1
	// Tier2 domains are allowed only when corroborated.
	Tier2
	// Tier3 domains are always blocked.
	Tier3
)

// Policy holds the domain lists the trust filter runs against. The zero
// value is unusable; start from DefaultPolicy and override via YAML if a
// deployment needs different lists.
type Policy struct {
	Tier1 []string `yaml:"tier1"`
	Tier2 []string `yaml:"tier2"`
	Tier3 []string `yaml:"tier3"`
	// Blogs lists self-publishing platforms whose posts need independent
	// corroboration: a self-report alone is never sufficient.
	Blogs []string `yaml:"blogs"`
}

// DefaultPolicy returns the built-in trust lists.
func DefaultPolicy() Policy {
	return Policy{
		Tier1: []string{
			"youtube.com",
			"youtu.be",
			"github.com",
			"producthunt.com",
			"indiehackers.com",
			"devpost.com",
			"kaggle.com",
			"huggingface.co",
			"itch.io",
			"news.ycombinator.com",
		},
		Tier2: []string{
			"twitter.com",
			"x.com",
			"linkedin.com",
			"reddit.com",
			"facebook.com",
			"threads.net",
			"bsky.app",
		},
		Tier3: []string{
			"tiktok.com",
			"instagram.com",
			"snapchat.com",
			"t.me",
			"telegram.me",
			"discord.gg",
			"discord.com",
			"whatsapp.com",
		},
		Blogs: []string{
			"medium.com",
			"substack.com",
			"dev.to",
			"hashnode.dev",
			"blogspot.com",
			"wordpress.com",
			"ghost.io",
			"mirror.xyz",
			"notion.site",
			"bearblog.dev",
		},
	}
}

// Classify returns the trust tier for a URL. Unknown domains are TierNone.
func (p Policy) Classify(raw string) Tier {
	host := hostOf(raw)
	if host == "" {
		return TierNone
	}
	switch {
	case matchesDomain(host, p.Tier3):
		return Tier3
	case matchesDomain(host, p.Tier2):
		return Tier2
	case matchesDomain(host, p.Tier1):
		return Tier1
	default:
		return TierNone
	}
}

// IsBlog reports whether the URL points at a self-publishing platform.
func (p Policy) IsBlog(raw string) bool {
	return matchesDomain(hostOf(raw), p.Blogs)
}

// IsHTTPURL reports whether raw is syntactically an absolute HTTP(S) URL.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func matchesDomain(host string, domains []string) bool {
	if host == "" {
		return false
	}
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// SecondLevelDomain returns the registrable label used when counting
// "textually distinct domains" for corroboration (example.co.uk and
// blog.example.co.uk both count as example).
func SecondLevelDomain(raw string) string {
	host := hostOf(raw)
	if host == "" {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	// Skip common ccTLD second levels like co.uk or com.au.
	idx := len(parts) - 2
	if idx > 0 && len(parts[idx]) <= 3 && len(parts[len(parts)-1]) == 2 {
		idx--
	}
	return parts[idx]
}
