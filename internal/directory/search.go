package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"business-directory/internal/common/database"
	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultSearchSize = 50

// IndexMapping is applied when the companies index is created.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "id":               {"type": "long"},
      "name":             {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "description":      {"type": "text"},
      "city":             {"type": "keyword"},
      "region":           {"type": "keyword"},
      "categoryId":       {"type": "long"},
      "moderationStatus": {"type": "keyword"}
    }
  }
}`

type searchDocument struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	City             string `json:"city,omitempty"`
	Region           string `json:"region,omitempty"`
	CategoryID       *int64 `json:"categoryId,omitempty"`
	ModerationStatus string `json:"moderationStatus"`
}

func toDocument(e models.BusinessEntity) searchDocument {
	doc := searchDocument{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		City:             e.City(),
		CategoryID:       e.CategoryID,
		ModerationStatus: string(e.ModerationStatus),
	}
	if e.Location != nil {
		doc.Region = e.Location.Region
	}
	return doc
}

// SearchIndex mirrors companies into Elasticsearch for free-text lookup.
type SearchIndex struct {
	es    *database.ElasticsearchClient
	index string
}

func NewSearchIndex(es *database.ElasticsearchClient, index string) *SearchIndex {
	return &SearchIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping when missing.
func (s *SearchIndex) EnsureIndex(ctx context.Context) error {
	return s.es.EnsureIndex(ctx, s.index, IndexMapping)
}

// Index upserts one company document.
func (s *SearchIndex) Index(ctx context.Context, e models.BusinessEntity) error {
	body, err := json.Marshal(toDocument(e))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: strconv.FormatInt(e.ID, 10),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index company %d: %s", e.ID, res.String())
	}
	return nil
}

// Delete removes a company document. A missing document is not an error.
func (s *SearchIndex) Delete(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      s.index,
		DocumentID: strconv.FormatInt(id, 10),
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete company %d: %s", id, res.String())
	}
	return nil
}

func buildSearchQuery(query string) map[string]interface{} {
	return map[string]interface{}{
		"_source": false,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "description", "city"},
				"fuzziness": "AUTO",
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchIDs returns matching company ids ordered by relevance.
func (s *SearchIndex) SearchIDs(ctx context.Context, query string) ([]int64, error) {
	body, err := json.Marshal(buildSearchQuery(strings.TrimSpace(query)))
	if err != nil {
		return nil, err
	}
	size := defaultSearchSize
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(query, fmt.Errorf("%s", res.String()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(query, err)
	}
	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
