// internal/corpus/elasticsearch.go
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"review-pipeline/internal/common/errors"
	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// exhaustiveSize caps an exhaustive fetch at the ES result-window default.
const exhaustiveSize = 10000

// ElasticsearchProvider reads corpus entries from a search index.
type ElasticsearchProvider struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchProvider(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchProvider {
	return &ElasticsearchProvider{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "corpus-provider"}),
	}
}

func (p *ElasticsearchProvider) FetchCorpus(ctx context.Context, opts FetchOptions) ([]models.CorpusEntry, error) {
	size := opts.Limit
	if opts.Exhaustive || size <= 0 {
		size = exhaustiveSize
	}

	query := map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	}
	if opts.Category != "" {
		query["query"] = map[string]interface{}{
			"term": map[string]interface{}{
				"industry": opts.Category,
			},
		}
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.NewCorpusFetchFailedError(err)
	}

	res, err := p.client.Search(
		p.client.Search.WithContext(ctx),
		p.client.Search.WithIndex(p.index),
		p.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.NewCorpusFetchFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewCorpusFetchFailedError(fmt.Errorf("search error: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.CorpusEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewCorpusFetchFailedError(err)
	}

	entries := make([]models.CorpusEntry, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		entries = append(entries, hit.Source)
	}

	p.logger.Debug("corpus fetched", map[string]interface{}{
		"index":   p.index,
		"entries": len(entries),
	})
	return entries, nil
}
