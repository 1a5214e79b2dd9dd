// internal/repository/search_source.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"appetite-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultSearchSize = 500

// SearchAppetiteSource reads appetites from an Elasticsearch index.
type SearchAppetiteSource struct {
	client *elasticsearch.Client
	index  string
	size   int
}

func NewSearchAppetiteSource(client *elasticsearch.Client, index string, size int) *SearchAppetiteSource {
	if size <= 0 {
		size = defaultSearchSize
	}
	return &SearchAppetiteSource{client: client, index: index, size: size}
}

func (s *SearchAppetiteSource) ListByProduct(ctx context.Context, product string) ([]models.UnderwriterAppetite, error) {
	body, err := json.Marshal(buildAppetiteQuery(product))
	if err != nil {
		return nil, fmt.Errorf("%w: build query: %v", ErrAppetiteSearchFailed, err)
	}

	size := s.size
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppetiteSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrAppetiteSearchFailed, res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrAppetiteSearchFailed, err)
	}

	appetites := make([]models.UnderwriterAppetite, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		var a models.UnderwriterAppetite
		if err := json.Unmarshal(hit.Source, &a); err != nil {
			return nil, fmt.Errorf("%w: hit %s: %v", ErrAppetiteSearchFailed, hit.ID, err)
		}
		if a.UnderwriterID == "" {
			a.UnderwriterID = hit.ID
		}
		appetites = append(appetites, a)
	}
	return appetites, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildAppetiteQuery(product string) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"status": models.AppetiteStatusProcessed},
		},
	}
	if product != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{
				"insurance_product": map[string]interface{}{
					"value":            product,
					"case_insensitive": true,
				},
			},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort": []interface{}{
			map[string]interface{}{"last_updated": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
			map[string]interface{}{"underwriter_id": map[string]interface{}{"order": "asc", "unmapped_type": "keyword"}},
		},
	}
}
