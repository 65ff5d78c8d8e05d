package index_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/index"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
)

func newIndexer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *index.Indexer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return index.NewIndexer(client, "case_studies", logger.NewNop())
}

func study(id string) domain.CaseStudy {
	return domain.CaseStudy{
		ID:     id,
		Title:  "Bot earns $100",
		Date:   "2026-08-01",
		Status: domain.StatusVerified,
	}
}

func TestEnsureIndexCreates(t *testing.T) {
	var created bool
	ix := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/case_studies" {
			created = true
		}
		w.Write([]byte(`{"acknowledged": true}`))
	})

	require.NoError(t, ix.EnsureIndex(context.Background()))
	assert.True(t, created)
}

func TestEnsureIndexAlreadyExists(t *testing.T) {
	ix := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "resource_already_exists_exception"}}`))
	})

	assert.NoError(t, ix.EnsureIndex(context.Background()))
}

func TestIndexCaseStudies(t *testing.T) {
	var paths []string
	ix := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result": "created"}`))
	})

	indexed, err := ix.IndexCaseStudies(context.Background(),
		[]domain.CaseStudy{study("cs-1"), study("cs-2")}, "run-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)
	assert.Equal(t, []string{"/case_studies/_doc/cs-1", "/case_studies/_doc/cs-2"}, paths)
}

func TestIndexCaseStudiesContinuesPastFailures(t *testing.T) {
	ix := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/cs-bad") {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "boom"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result": "created"}`))
	})

	indexed, err := ix.IndexCaseStudies(context.Background(),
		[]domain.CaseStudy{study("cs-bad"), study("cs-ok")}, "run-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, indexed)
}

func TestIndexCaseStudiesAllFailed(t *testing.T) {
	ix := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "boom"}`))
	})

	_, err := ix.IndexCaseStudies(context.Background(),
		[]domain.CaseStudy{study("cs-1")}, "run-1", 1)
	assert.ErrorContains(t, err, "indexed 0 of 1")
}
