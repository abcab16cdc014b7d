package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"business-directory/internal/common/config"
	"business-directory/internal/common/database"
	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type esRequest struct {
	method string
	path   string
	body   string
}

func newTestSearchIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*SearchIndex, *[]esRequest) {
	t.Helper()
	var mu sync.Mutex
	seen := []esRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, esRequest{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewSearchIndex(es, "companies"), &seen
}

func TestSearchIndex_Index(t *testing.T) {
	index, seen := newTestSearchIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	err := index.Index(context.Background(), models.BusinessEntity{
		ID:               12,
		Name:             "Acme",
		ModerationStatus: models.ModerationPending,
		Location:         &models.Location{City: "Almaty", Region: "Almaty region"},
	})

	require.NoError(t, err)
	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/companies/_doc/12", req.path)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.body), &doc))
	assert.Equal(t, "Almaty", doc["city"])
	assert.Equal(t, "Almaty region", doc["region"])
	assert.Equal(t, "pending", doc["moderationStatus"])
}

func TestSearchIndex_DeleteIgnoresMissing(t *testing.T) {
	index, _ := newTestSearchIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})

	assert.NoError(t, index.Delete(context.Background(), 12))
}

func TestSearchIndex_SearchIDs(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantIDs  []int64
		wantCode apperrors.ErrorCode
	}{
		{
			name:    "hits in relevance order",
			status:  http.StatusOK,
			body:    `{"hits":{"hits":[{"_id":"3"},{"_id":"1"},{"_id":"not-a-number"}]}}`,
			wantIDs: []int64{3, 1},
		},
		{
			name:     "missing index",
			status:   http.StatusNotFound,
			body:     `{"error":{"type":"index_not_found_exception"}}`,
			wantCode: apperrors.ErrCodeIndexNotFound,
		},
		{
			name:     "query rejected",
			status:   http.StatusBadRequest,
			body:     `{"error":{"type":"parsing_exception"}}`,
			wantCode: apperrors.ErrCodeSearchQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, seen := newTestSearchIndex(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			ids, err := index.SearchIDs(context.Background(), " acme ")

			if tt.wantCode != "" {
				var stdErr *apperrors.StandardError
				require.ErrorAs(t, err, &stdErr)
				assert.Equal(t, tt.wantCode, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids)
			require.Len(t, *seen, 1)
			assert.Equal(t, "/companies/_search", (*seen)[0].path)
			assert.Contains(t, (*seen)[0].body, `"query":"acme"`)
		})
	}
}
