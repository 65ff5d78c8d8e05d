package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/retry"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/validate"
)

// TranscriptsConfig configures the local transcript-mining stage.
type TranscriptsConfig struct {
	// Feeds are transcript/listing pages mined for money mentions.
	Feeds   []string      `yaml:"feeds" env:"TRANSCRIPT_FEEDS"`
	Timeout time.Duration `yaml:"timeout"`
}

const (
	maxSnippetLen      = 280
	minTranscriptBlock = 40
)

// Transcripts is the synchronous local-computation stage: it fetches
// configured transcript pages and extracts blocks that mention a dollar
// amount and match the query keywords. No remote research job is involved.
type Transcripts struct {
	cfg    TranscriptsConfig
	client *http.Client
	retry  retry.Config
	log    logger.Logger
}

// NewTranscripts creates the transcript-mining adapter.
func NewTranscripts(cfg TranscriptsConfig, log logger.Logger) *Transcripts {
	return &Transcripts{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		retry:  retry.DefaultConfig(),
		log:    log,
	}
}

// ID returns the stage identifier for this provider.
func (t *Transcripts) ID() string { return domain.StageIDTranscripts }

// Run mines every configured feed. Per-feed fetch failures are logged and
// skipped; the stage only fails when it cannot produce anything at all.
func (t *Transcripts) Run(ctx context.Context, q Query) (StageResult, error) {
	keywords := queryKeywords(q.Text)

	var result StageResult
	var fetchErrs int
	for _, feed := range t.cfg.Feeds {
		if q.Limit > 0 && len(result.Sources) >= q.Limit {
			break
		}
		records, err := t.mineFeed(ctx, feed, keywords, q.Limit-len(result.Sources))
		if err != nil {
			fetchErrs++
			t.log.Warn("transcript feed fetch failed",
				zap.String("feed", feed),
				zap.Error(err),
			)
			continue
		}
		result.Sources = append(result.Sources, records...)
	}

	if len(result.Sources) == 0 && fetchErrs > 0 && fetchErrs == len(t.cfg.Feeds) {
		return StageResult{}, fmt.Errorf("all %d transcript feeds failed", fetchErrs)
	}

	result.Summary = fmt.Sprintf(
		"Mined %d money-bearing transcript excerpts from %d feeds.",
		len(result.Sources), len(t.cfg.Feeds)-fetchErrs,
	)
	return result, nil
}

// mineFeed fetches one page and extracts money-bearing blocks.
func (t *Transcripts) mineFeed(ctx context.Context, feedURL string, keywords []string, limit int) ([]domain.SourceRecord, error) {
	var doc *goquery.Document
	err := retry.Do(ctx, t.retry, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
		if reqErr != nil {
			return reqErr
		}
		resp, doErr := t.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		if stErr := checkStatus(resp); stErr != nil {
			return stErr
		}
		parsed, parseErr := goquery.NewDocumentFromReader(resp.Body)
		if parseErr != nil {
			return parseErr
		}
		doc = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	pageTitle := strings.TrimSpace(doc.Find("title").First().Text())
	if pageTitle == "" {
		pageTitle = feedURL
	}

	var records []domain.SourceRecord
	doc.Find("p, li, blockquote").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if len(text) < minTranscriptBlock {
			return true
		}
		if !validate.ContainsCurrency(text) && validate.ShorthandToken(text) == "" {
			return true
		}
		if !matchesKeywords(text, keywords) {
			return true
		}
		text = truncateSnippet(text)
		records = append(records, domain.SourceRecord{
			Title:   pageTitle,
			URL:     fmt.Sprintf("%s#block-%d", feedURL, i),
			Snippet: text,
			StageID: t.ID(),
		})
		return limit <= 0 || len(records) < limit
	})

	return records, nil
}

// truncateSnippet caps the snippet at maxSnippetLen bytes without
// cutting through a multi-byte rune.
func truncateSnippet(text string) string {
	if len(text) <= maxSnippetLen {
		return text
	}
	cut := maxSnippetLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// queryKeywords lowercases and splits the query, dropping short filler
// words so matching stays loose.
func queryKeywords(query string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) >= 4 {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

// matchesKeywords requires at least one query keyword in the block, or
// accepts everything when the query had no usable keywords.
func matchesKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
