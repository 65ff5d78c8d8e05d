package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
)

const caseStudyMapping = `{
	"mappings": {
		"properties": {
			"id":                 {"type": "keyword"},
			"title":              {"type": "text"},
			"date":               {"type": "date", "format": "yyyy-MM-dd"},
			"status":             {"type": "keyword"},
			"summary":            {"type": "text"},
			"description":        {"type": "text"},
			"profit_mechanisms":  {"type": "keyword"},
			"tags":               {"type": "keyword"},
			"run_id":             {"type": "keyword"},
			"dataset_version":    {"type": "integer"}
		}
	}
}`

// Indexer writes published case studies into a single index, keyed by
// case-study id so re-publishing a run is idempotent.
type Indexer struct {
	client *es.Client
	index  string
	log    logger.Logger
}

// NewIndexer creates a case-study indexer.
func NewIndexer(client *es.Client, indexName string, log logger.Logger) *Indexer {
	return &Indexer{client: client, index: indexName, log: log}
}

type caseStudyDoc struct {
	domain.CaseStudy
	RunID          string `json:"run_id"`
	DatasetVersion int    `json:"dataset_version"`
}

// EnsureIndex creates the index with its mapping. An index that already
// exists is fine.
func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Create(
		ix.index,
		ix.client.Indices.Create.WithBody(strings.NewReader(caseStudyMapping)),
		ix.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", ix.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index %s: [%s] %s", ix.index, res.Status(), string(body))
	}
	return nil
}

// IndexCaseStudies upserts the given case studies. It keeps going past
// per-document failures and reports how many documents landed.
func (ix *Indexer) IndexCaseStudies(ctx context.Context, studies []domain.CaseStudy, runID string, datasetVersion int) (int, error) {
	var indexed int
	var lastErr error

	for i := range studies {
		doc := caseStudyDoc{
			CaseStudy:      studies[i],
			RunID:          runID,
			DatasetVersion: datasetVersion,
		}
		if err := ix.indexOne(ctx, doc); err != nil {
			lastErr = err
			ix.log.Warn("failed to index case study",
				zap.String("id", doc.ID),
				zap.Error(err),
			)
			continue
		}
		indexed++
	}

	if indexed == 0 && lastErr != nil {
		return 0, fmt.Errorf("indexed 0 of %d case studies: %w", len(studies), lastErr)
	}
	return indexed, nil
}

func (ix *Indexer) indexOne(ctx context.Context, doc caseStudyDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := ix.client.Index(
		ix.index,
		bytes.NewReader(body),
		ix.client.Index.WithDocumentID(doc.ID),
		ix.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index document: [%s] %s", res.Status(), string(msg))
	}
	return nil
}
