package validate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
)

// Input carries the per-run context Normalize evaluates a candidate
// against. ExistingIDs is mutated as ids are assigned so one batch never
// collides with itself.
type Input struct {
	// AllowedURLs is the set of source URLs the extractor was given.
	AllowedURLs map[string]struct{}
	// Mode selects the strict or speculative acceptance policy.
	Mode domain.RunMode
	// FallbackDate is used when the candidate carries no date.
	FallbackDate string
	// ExistingIDs are the ids already present in the dataset plus those
	// assigned earlier in this batch.
	ExistingIDs map[string]struct{}
	// URLSnippets indexes the original search snippets by URL, used to
	// backfill excerpts the extractor omitted.
	URLSnippets map[string]string
	// TrustedHandleURLs are URLs sourced from a native-handle search stage;
	// these are auto-corroborated when they fall on a Tier-2 platform.
	TrustedHandleURLs map[string]struct{}
}

// Validator applies the acceptance policy to raw candidates. It is a pure
// filter/transform: deterministic given its inputs, no external calls, and
// every rejection returns nil rather than an error.
type Validator struct {
	policy Policy
	log    logger.Logger
}

// New creates a Validator with the given trust policy.
func New(policy Policy, log logger.Logger) *Validator {
	return &Validator{policy: policy, log: log}
}

// Normalize turns an untrusted candidate into an accepted CaseStudy, or
// returns nil if any policy check fails. The caller is responsible for
// counting rejections; they are routine output, not failures.
func (v *Validator) Normalize(c domain.Candidate, in Input) *domain.CaseStudy {
	title := strings.TrimSpace(c.Title)
	summary := strings.TrimSpace(c.Summary)
	description := strings.TrimSpace(c.Description)
	if title == "" || summary == "" || description == "" {
		return v.reject(title, "missing required fields")
	}

	kept := v.hygieneFilter(c.ProofSources, in)
	survivors, anchored := v.tierFilter(kept, in)
	if len(survivors) == 0 {
		return v.reject(title, "no proof sources survived trust filter")
	}
	if !anchored {
		return v.reject(title, "only uncorroborated low-trust sources")
	}

	// Backfill excerpts from the original search snippets so the monetary
	// check does not fail just because the extractor omitted a quote.
	for i := range survivors {
		if survivors[i].Excerpt == "" {
			survivors[i].Excerpt = in.URLSnippets[survivors[i].URL]
		}
	}

	moneyToken, moneyExcerpt := firstMoneyExcerpt(survivors)
	if moneyExcerpt != "" && MentionsFunding(moneyExcerpt) {
		return v.reject(title, "monetary evidence is fundraising, not revenue")
	}

	freeText := title + " " + summary + " " + description
	if moneyExcerpt == "" {
		if in.Mode != domain.ModeSpeculative {
			return v.reject(title, "no currency-bearing excerpt in strict mode")
		}
		if FirstCurrencyToken(freeText) == "" && ShorthandToken(freeText) == "" {
			return v.reject(title, "no monetary evidence anywhere")
		}
		// Text-only money claims need more than a single domain behind them.
		if !hasTier1(v.policy, survivors) && distinctDomains(survivors) < 2 {
			return v.reject(title, "text-only money claim lacks corroboration")
		}
	}

	// Default speculative; promote to verified when the strict bar is met,
	// regardless of which mode produced the run, so the dataset's quality
	// bar stays uniform.
	status := domain.StatusSpeculative
	if len(survivors) >= 2 && moneyExcerpt != "" {
		status = domain.StatusVerified
	}

	if v.anyBlog(survivors) && distinctDomains(survivors) < 2 {
		return v.reject(title, "self-published source without independent domain")
	}

	if !ContainsCurrency(title) {
		token := moneyToken
		if token == "" {
			token = FirstCurrencyToken(freeText)
		}
		if token == "" {
			if short := ShorthandToken(freeText); short != "" {
				token = "$" + short
			}
		}
		if token == "" {
			return v.reject(title, "no currency token available for title")
		}
		title = fmt.Sprintf("%s (%s)", title, token)
	}

	date := strings.TrimSpace(c.Date)
	if date == "" {
		date = in.FallbackDate
	}

	return &domain.CaseStudy{
		ID:               AssignID(date, title, in.ExistingIDs),
		Date:             date,
		Title:            title,
		Summary:          summary,
		Description:      description,
		ProfitMechanisms: c.ProfitMechanisms,
		Tags:             c.Tags,
		ProofSources:     survivors,
		Status:           status,
	}
}

// hygieneFilter keeps sources that are syntactically HTTP(S) and either
// came from the source list the extractor was given, are tagged as a
// product website, or fall outside the social tiers entirely.
func (v *Validator) hygieneFilter(sources []domain.ProofSource, in Input) []domain.ProofSource {
	var kept []domain.ProofSource
	for _, ps := range sources {
		u := strings.TrimSpace(ps.URL)
		if !IsHTTPURL(u) {
			continue
		}
		_, allowed := in.AllowedURLs[u]
		tier := v.policy.Classify(u)
		if allowed || strings.EqualFold(ps.Kind, "website") || (tier != Tier2 && tier != Tier3) {
			ps.URL = u
			kept = append(kept, ps)
		}
	}
	return kept
}

// tierFilter drops Tier-3 sources unconditionally and Tier-2 sources that
// lack corroboration. It also reports whether at least one survivor anchors
// the candidate (Tier-1, non-social, or auto-corroborated Tier-2).
func (v *Validator) tierFilter(kept []domain.ProofSource, in Input) (survivors []domain.ProofSource, anchored bool) {
	for i, ps := range kept {
		switch v.policy.Classify(ps.URL) {
		case Tier3:
			continue
		case Tier2:
			if _, auto := in.TrustedHandleURLs[ps.URL]; auto {
				survivors = append(survivors, ps)
				anchored = true
				continue
			}
			if corroborated(v.policy, kept, i) {
				survivors = append(survivors, ps)
			}
		default:
			survivors = append(survivors, ps)
			anchored = true
		}
	}
	return survivors, anchored
}

// corroborated reports whether some other kept source is Tier-1 or
// non-social.
func corroborated(p Policy, kept []domain.ProofSource, self int) bool {
	for j, other := range kept {
		if j == self {
			continue
		}
		if t := p.Classify(other.URL); t == Tier1 || t == TierNone {
			return true
		}
	}
	return false
}

// firstMoneyExcerpt returns the first currency token found in any surviving
// excerpt, with the excerpt it came from.
func firstMoneyExcerpt(sources []domain.ProofSource) (token, excerpt string) {
	for _, ps := range sources {
		if tok := FirstCurrencyToken(ps.Excerpt); tok != "" {
			return tok, ps.Excerpt
		}
	}
	return "", ""
}

func hasTier1(p Policy, sources []domain.ProofSource) bool {
	for _, ps := range sources {
		if p.Classify(ps.URL) == Tier1 {
			return true
		}
	}
	return false
}

// distinctDomains counts textually distinct second-level domains.
func distinctDomains(sources []domain.ProofSource) int {
	seen := make(map[string]struct{})
	for _, ps := range sources {
		if d := SecondLevelDomain(ps.URL); d != "" {
			seen[d] = struct{}{}
		}
	}
	return len(seen)
}

func (v *Validator) anyBlog(sources []domain.ProofSource) bool {
	for _, ps := range sources {
		if v.policy.IsBlog(ps.URL) {
			return true
		}
	}
	return false
}

func (v *Validator) reject(title, reason string) *domain.CaseStudy {
	v.log.Debug("candidate rejected",
		zap.String("title", title),
		zap.String("reason", reason),
	)
	return nil
}
